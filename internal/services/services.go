package services

import (
	"context"

	"github.com/desertthunder/lyrx/internal/models"
)

// Catalog is a remote lyrics catalog.
type Catalog interface {
	// Search returns songs matching a free-text query.
	Search(ctx context.Context, query string) ([]models.Song, error)

	// SearchFields returns songs matching any combination of track, artist and album.
	// Empty fields are ignored.
	SearchFields(ctx context.Context, q FieldQuery) ([]models.Song, error)

	// GetByID fetches a single song, returning [shared.ErrSongNotFound] for unknown ids.
	GetByID(ctx context.Context, id int64) (models.Song, error)
}

// FieldQuery is the structured search shape.
type FieldQuery struct {
	Track  string
	Artist string
	Album  string
}

// Empty reports whether every field is blank.
func (q FieldQuery) Empty() bool {
	return isBlank(q.Track) && isBlank(q.Artist) && isBlank(q.Album)
}
