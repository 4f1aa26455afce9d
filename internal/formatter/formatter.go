// package formatter renders songs and favorites lists as CSV, Markdown, plain text, JSON and LRC
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Format is an export format name.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// Formats lists the accepted export formats.
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat accepts a format name or its common alias ("md", "txt").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (want csv, markdown, text or json)", shared.ErrInvalidFlag, s)
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	}
	return string(f)
}

var csvHeaders = []string{"ID", "Track", "Artist", "Album", "Duration", "Instrumental"}

// ExportToCSV converts songs to CSV with columns: ID, Track, Artist, Album, Duration, Instrumental
func ExportToCSV(songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{
			strconv.FormatInt(song.ID, 10),
			song.TrackName,
			song.ArtistName,
			song.AlbumName,
			shared.FormatDuration(song.Duration),
			strconv.FormatBool(song.Instrumental),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders songs as a numbered Markdown list under title.
func ExportToMarkdown(title string, songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(songs))

	for i, song := range songs {
		albumPart := ""
		if song.AlbumName != "" {
			albumPart = fmt.Sprintf(" (%s)", song.AlbumName)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]", i+1, song.ArtistName, song.TrackName, albumPart, shared.FormatDuration(song.Duration))
		if song.Instrumental {
			buf.WriteString(" _instrumental_")
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders songs as plain numbered lines.
func ExportToText(songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Favorites: %d\n\n", len(songs))
	for i, song := range songs {
		fmt.Fprintf(&buf, "%d. %s - %s [#%d]\n", i+1, song.ArtistName, song.TrackName, song.ID)
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes songs as the same JSON array the favorites store persists.
func ExportToJSON(songs []models.Song, pretty bool) ([]byte, error) {
	if songs == nil {
		songs = []models.Song{}
	}
	return shared.MarshalJSON(songs, pretty)
}

// Export renders songs in format f.
func Export(f Format, songs []models.Song) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(songs)
	case FormatMarkdown:
		return ExportToMarkdown("Favorites", songs)
	case FormatText:
		return ExportToText(songs)
	case FormatJSON:
		return ExportToJSON(songs, true)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
}

// WriteExport renders songs in format f to path, or to w when path is empty.
func WriteExport(w io.Writer, f Format, songs []models.Song, path string) error {
	data, err := Export(f, songs)
	if err != nil {
		return err
	}

	if path == "" {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// ExportToLRC renders a song's synced lyrics as an .lrc file with ID tags.
//
// Returns an error when the song has no synced lyrics.
func ExportToLRC(song models.Song) ([]byte, error) {
	if strings.TrimSpace(song.SyncedLyrics) == "" {
		return nil, fmt.Errorf("%w: song %d has no synced lyrics", shared.ErrInvalidInput, song.ID)
	}

	var buf bytes.Buffer
	writeTag := func(tag, value string) {
		if value != "" {
			fmt.Fprintf(&buf, "[%s:%s]\n", tag, value)
		}
	}
	writeTag("ti", song.TrackName)
	writeTag("ar", song.ArtistName)
	writeTag("al", song.AlbumName)
	if song.Duration > 0 {
		writeTag("length", shared.FormatDuration(song.Duration))
	}

	buf.WriteString(strings.TrimRight(song.SyncedLyrics, "\n"))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// FormatSong renders one song for a terminal: header fields, then lyrics when showLyrics is set.
func FormatSong(song models.Song, showLyrics bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", song.TrackName)
	fmt.Fprintf(&b, "  Artist:       %s\n", song.ArtistName)
	if song.AlbumName != "" {
		fmt.Fprintf(&b, "  Album:        %s\n", song.AlbumName)
	}
	fmt.Fprintf(&b, "  Duration:     %s\n", shared.FormatDuration(song.Duration))
	fmt.Fprintf(&b, "  Instrumental: %s\n", yesNo(song.Instrumental))
	fmt.Fprintf(&b, "  ID:           %d\n", song.ID)

	if showLyrics {
		b.WriteString("\n")
		switch lyrics := song.Lyrics(); {
		case song.Instrumental:
			b.WriteString("(instrumental)\n")
		case lyrics == "":
			b.WriteString("(no lyrics)\n")
		default:
			b.WriteString(strings.TrimRight(lyrics, "\n"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ErrNoIDs is returned by the import parsers when the input names no songs.
var ErrNoIDs = errors.New("no song ids found")

// ParseIDs reads song ids from a favorites export.
//
// JSON input may be an array of songs (as written by [ExportToJSON]) or an array of ids.
// Anything else is read as CSV with an "ID" column, or one id per line without a header.
// Duplicate ids are dropped, keeping the first occurrence.
func ParseIDs(data []byte) ([]int64, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return parseJSONIDs(trimmed)
	}
	return parseCSVIDs(trimmed)
}

func parseJSONIDs(data []byte) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err == nil {
		return dedupe(ids)
	}

	var songs []models.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of songs or ids: %v", shared.ErrInvalidInput, err)
	}
	ids = make([]int64, 0, len(songs))
	for _, s := range songs {
		ids = append(ids, s.ID)
	}
	return dedupe(ids)
}

func parseCSVIDs(data []byte) ([]int64, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV: %v", shared.ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, ErrNoIDs
	}

	col := 0
	if header := records[0]; len(header) > 0 {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), "id") {
				col = i
				records = records[1:]
				break
			}
		}
	}

	ids := make([]int64, 0, len(records))
	for line, record := range records {
		if col >= len(record) || strings.TrimSpace(record[col]) == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(record[col]), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: row %d: invalid id %q", shared.ErrInvalidInput, line+1, record[col])
		}
		ids = append(ids, id)
	}
	return dedupe(ids)
}

func dedupe(ids []int64) ([]int64, error) {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoIDs
	}
	return out, nil
}
