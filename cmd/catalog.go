package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs a free-text or field search against the catalog.
//
// A blank query with no field flags is rejected before any request is made.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	fields := services.FieldQuery{
		Track:  cmd.String("track"),
		Artist: cmd.String("artist"),
		Album:  cmd.String("album"),
	}

	if query == "" && fields.Empty() {
		return fmt.Errorf("%w: provide a query or one of --track, --artist, --album", shared.ErrMissingArgument)
	}

	if err := r.open(ctx); err != nil {
		return err
	}

	var (
		songs []models.Song
		err   error
	)
	if fields.Empty() {
		r.logger.Debug("searching catalog", "query", query)
		songs, err = r.catalog.Search(ctx, query)
	} else {
		r.logger.Debug("searching catalog by field", "track", fields.Track, "artist", fields.Artist, "album", fields.Album)
		songs, err = r.catalog.SearchFields(ctx, fields)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	if len(songs) == 0 {
		return r.writePlain("No songs found.\n")
	}

	r.writePlainHeader(fmt.Sprintf("%d results", len(songs)))
	showLyrics := cmd.Bool("lyrics")
	for _, song := range songs {
		r.writePlain("\n")
		if r.favorites.IsFavorite(song.ID) {
			r.writePlain("♥ ")
		}
		r.writePlain("%s", formatter.FormatSong(song, showLyrics))
	}
	return nil
}

// Details fetches one song by id and prints it, as JSON, or as an .lrc file.
func (r *Runner) Details(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if err := r.open(ctx); err != nil {
		return err
	}

	song, err := r.catalog.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch song %d: %w", id, err)
	}

	var data []byte
	switch {
	case cmd.Bool("lrc"):
		if data, err = formatter.ExportToLRC(song); err != nil {
			return err
		}
	case cmd.Bool("json"):
		if data, err = shared.MarshalJSON(song, cmd.Bool("pretty")); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		text := formatter.FormatSong(song, false)
		if r.favorites.IsFavorite(song.ID) {
			text = "♥ " + text
		}
		text += detailsLyrics(song)
		data = []byte(text)
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		r.logger.Info("wrote song", "id", id, "path", path)
		return nil
	}
	_, err = r.output.Write(data)
	return err
}

func detailsLyrics(song models.Song) string {
	var b strings.Builder
	if song.Instrumental {
		b.WriteString("\n(instrumental)\n")
	}
	if s := strings.TrimSpace(song.PlainLyrics); s != "" {
		fmt.Fprintf(&b, "\nLyrics\n\n%s\n", s)
	}
	if s := strings.TrimSpace(song.SyncedLyrics); s != "" {
		fmt.Fprintf(&b, "\nSynced lyrics\n\n%s\n", s)
	}
	if !song.Instrumental && !song.HasLyrics() {
		b.WriteString("\nNo lyrics available.\n")
	}
	return b.String()
}

// parseID accepts a positive integer song id.
func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid song id", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}
