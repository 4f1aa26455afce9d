package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints the favorites in the order they were added.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	songs := r.favorites.Favorites().Get()
	if cmd.Bool("json") {
		data, err := formatter.ExportToJSON(songs, cmd.Bool("pretty"))
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return r.writePlain("%s\n", data)
	}

	if len(songs) == 0 {
		return r.writePlain("You have no favorites yet.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(songs)))
	for i, song := range songs {
		r.writePlain("%3d. %s [#%d]\n", i+1, shared.Truncate(song.Label(), 60), song.ID)
	}
	return nil
}

// FavoritesAdd looks a song up and appends it to the favorites.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if r.favorites.IsFavorite(id) {
		return r.writePlain("Song %d is already a favorite.\n", id)
	}

	song, err := r.catalog.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch song %d: %w", id, err)
	}
	if err := r.favorites.Add(ctx, song); err != nil {
		return err
	}
	return r.writePlain("♥ Added %s\n", song.Label())
}

// FavoritesRemove removes a song by id. Removing a song that is not a favorite is not an error.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	song, ok := r.favorites.Get(id)
	if !ok {
		return r.writePlain("Song %d is not a favorite.\n", id)
	}
	if err := r.favorites.Remove(ctx, id); err != nil {
		return err
	}
	return r.writePlain("Removed %s\n", song.Label())
}

// FavoritesToggle removes the song when it is a favorite and adds it otherwise.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if r.favorites.IsFavorite(id) {
		return r.FavoritesRemove(ctx, cmd)
	}
	return r.FavoritesAdd(ctx, cmd)
}

// FavoritesClear removes every favorite.
func (r *Runner) FavoritesClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	n := r.favorites.Len()
	if err := r.favorites.Clear(ctx); err != nil {
		return err
	}
	return r.writePlain("Cleared %d favorites.\n", n)
}

// FavoritesExport writes the favorites in the requested format to stdout or --output.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	songs := r.favorites.Favorites().Get()
	path := cmd.String("output")
	if err := formatter.WriteExport(r.output, format, songs, path); err != nil {
		return err
	}

	if path != "" {
		r.logger.Info("exported favorites", "count", len(songs), "format", format, "path", path)
		return r.writePlain("✓ Exported %d favorites to %s\n", len(songs), path)
	}
	return nil
}

// FavoritesImport reads song ids from an export file, looks each one up and stores the songs found.
func (r *Runner) FavoritesImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	ids, err := formatter.ParseIDs(data)
	if err != nil {
		if errors.Is(err, formatter.ErrNoIDs) {
			return fmt.Errorf("%w: %s contains no song ids", shared.ErrInvalidInput, path)
		}
		return err
	}

	if err := r.open(ctx); err != nil {
		return err
	}

	mode := tasks.ImportMerge
	if cmd.Bool("replace") {
		mode = tasks.ImportReplace
	}
	opts := tasks.BulkLookupOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.printProgress(progress)
	}()

	result, err := r.engine.ImportFavorites(ctx, progress, r.favorites, ids, mode, opts)
	close(progress)
	wg.Wait()

	if err != nil {
		return err
	}

	r.writePlainln("✓ Import complete")
	r.writePlain("  Added:   %d\n", result.Added)
	r.writePlain("  Skipped: %d (already favorites)\n", result.Skipped)
	r.writePlain("  Failed:  %d\n", result.Lookup.Failed)
	for _, res := range result.Lookup.Results {
		if res.Err != nil {
			r.writePlain("    #%d: %v\n", res.ID, res.Err)
		}
	}
	return nil
}

func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate) {
	for update := range progress {
		if update.Total > 0 && update.Step > 0 {
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
			continue
		}
		r.writePlain("%s\n", update.Message)
	}
}
