package tasks

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/favorites"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

// LookupResult is the outcome for one id.
type LookupResult struct {
	index int
	ID    int64
	Song  models.Song
	Err   error
}

// BulkLookupResult summarizes a [LookupEngine.BulkLookup] run.
type BulkLookupResult struct {
	Total   int
	Found   int
	Failed  int
	Results []LookupResult
}

// ImportResult summarizes a [LookupEngine.ImportFavorites] run.
type ImportResult struct {
	Lookup  *BulkLookupResult
	Added   int // Songs that were not already favorites
	Skipped int // Songs that were already favorites
}

// ImportMode selects how imported songs combine with existing favorites.
type ImportMode int

const (
	ImportMerge   ImportMode = iota // Append new songs after the existing ones
	ImportReplace                   // Replace the list with the imported songs
)

// LookupEngine runs catalog operations that span many songs.
type LookupEngine struct {
	catalog services.Catalog
	logger  *log.Logger
}

// NewLookupEngine creates a [LookupEngine]. A nil logger writes to stderr.
func NewLookupEngine(catalog services.Catalog, logger *log.Logger) *LookupEngine {
	if logger == nil {
		logger = shared.NewLogger(os.Stderr)
	}
	return &LookupEngine{catalog: catalog, logger: logger}
}

// sendProgress sends a progress update if the channel is not nil.
// Uses non-blocking send to prevent deadlocks.
func (e *LookupEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}

	select {
	case progress <- update:
	default:
	}
}

// ImportFavorites looks ids up and stores the songs found in store.
//
// The whole import is a single favorites write, so either every found song lands or none
// does. Songs that could not be resolved are reported in the lookup result.
func (e *LookupEngine) ImportFavorites(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	store *favorites.Store,
	ids []int64,
	mode ImportMode,
	opts BulkLookupOpts,
) (*ImportResult, error) {
	lookup, err := e.BulkLookup(ctx, prog, ids, opts)
	if err != nil {
		return &ImportResult{Lookup: lookup}, err
	}

	found := uniqueSongs(lookup.Songs())
	result := &ImportResult{Lookup: lookup}

	var next []models.Song
	switch mode {
	case ImportReplace:
		next = found
		result.Added = len(found)
	default:
		next = store.Favorites().Get()
		for _, song := range found {
			if store.IsFavorite(song.ID) {
				result.Skipped++
				continue
			}
			next = append(next, song)
			result.Added++
		}
	}

	e.sendProgress(prog, savingFavoritesUpdate(len(next)))
	if err := store.Replace(ctx, next); err != nil {
		return result, fmt.Errorf("import lookup finished but saving failed: %w", err)
	}
	return result, nil
}

// uniqueSongs drops repeated ids, keeping the first occurrence.
func uniqueSongs(songs []models.Song) []models.Song {
	seen := make(map[int64]bool, len(songs))
	out := make([]models.Song, 0, len(songs))
	for _, song := range songs {
		if !seen[song.ID] {
			seen[song.ID] = true
			out = append(out, song)
		}
	}
	return out
}
