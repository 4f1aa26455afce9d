package tasks

import (
	"fmt"

	"github.com/desertthunder/lyrx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LookupSongs Phase = iota
	SaveFavorites
)

func (p Phase) String() string {
	switch p {
	case LookupSongs:
		return "lookup_songs"
	case SaveFavorites:
		return "save_favorites"
	default:
		return ""
	}
}

func lookupStartedUpdate(total, workers int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupSongs,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Looking up %d songs with %d workers...", total, workers),
	}
}

func lookupCompletedUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, song.Label()),
		Data:    song,
	}
}

func lookupFailedUpdate(step, total int, id int64, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ #%d: %v", step, total, id, err),
	}
}

func savingFavoritesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveFavorites,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving %d favorites...", count),
	}
}
