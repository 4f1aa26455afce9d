// Package favorites owns the user's persisted list of favorite songs.
//
// The list is hydrated once from a [kv.Store] and written through on every mutation:
// the full list is encoded as a JSON array under one fixed key before the in-memory
// value is replaced. After any method returns, the observable list equals the decoded
// stored value.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/kv"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/signal"
)

// DefaultKey is the storage key holding the encoded list.
const DefaultKey = "favorites"

// Store is the favorites list with write-through persistence.
type Store struct {
	mu      sync.RWMutex
	songs   []models.Song
	version uint64

	pub       sync.Mutex
	published uint64

	kv     kv.Store
	key    string
	logger *log.Logger
	state  *signal.Signal[[]models.Song]
}

// Option configures a [Store].
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for hydration and write failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New hydrates a [Store] from store.
//
// An absent key, a read error or a value that is not a JSON array of songs all
// result in an empty list. New never fails; problems are logged as warnings and the
// stored value is left alone until the first mutation.
func New(ctx context.Context, store kv.Store, opts ...Option) *Store {
	s := &Store{kv: store, key: DefaultKey}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(os.Stderr)
	}

	s.songs = s.hydrate(ctx)
	s.state = signal.New(signal.CloneSlice(s.songs), signal.CloneSlice[models.Song])
	return s
}

func (s *Store) hydrate(ctx context.Context) []models.Song {
	raw, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return []models.Song{}
	case err != nil:
		s.logger.Warn("could not read favorites, starting empty", "key", s.key, "error", err)
		return []models.Song{}
	}

	var songs []models.Song
	if err := json.Unmarshal([]byte(raw), &songs); err != nil {
		s.logger.Warn("stored favorites are malformed, starting empty", "key", s.key, "error", err)
		return []models.Song{}
	}
	if songs == nil {
		songs = []models.Song{}
	}
	return songs
}

// Favorites returns the read-only observable list. Get returns a copy.
func (s *Store) Favorites() signal.ReadOnly[[]models.Song] {
	return s.state.ReadOnly()
}

// IsFavorite reports whether a song with id is in the list.
func (s *Store) IsFavorite(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.songs, id) >= 0
}

// Get returns the favorite with id.
func (s *Store) Get(id int64) (models.Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.songs, id); i >= 0 {
		return s.songs[i], true
	}
	return models.Song{}, false
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.songs)
}

// Add appends song unless its id is already present, in which case nothing is written.
func (s *Store) Add(ctx context.Context, song models.Song) error {
	s.mu.Lock()
	if indexOf(s.songs, song.ID) >= 0 {
		s.mu.Unlock()
		return nil
	}
	return s.commit(ctx, append(signal.CloneSlice(s.songs), song))
}

// Remove drops every song with id. The list is persisted even when nothing matched.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	return s.commit(ctx, without(s.songs, id))
}

// Toggle removes song if it is a favorite and adds it otherwise, with a single write.
func (s *Store) Toggle(ctx context.Context, song models.Song) error {
	s.mu.Lock()
	if indexOf(s.songs, song.ID) >= 0 {
		return s.commit(ctx, without(s.songs, song.ID))
	}
	return s.commit(ctx, append(signal.CloneSlice(s.songs), song))
}

// Clear empties the list.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	return s.commit(ctx, []models.Song{})
}

// Replace swaps the whole list for songs, keeping the first occurrence of each id.
func (s *Store) Replace(ctx context.Context, songs []models.Song) error {
	s.mu.Lock()
	next := make([]models.Song, 0, len(songs))
	for _, song := range songs {
		if indexOf(next, song.ID) < 0 {
			next = append(next, song)
		}
	}
	return s.commit(ctx, next)
}

// commit persists next and then publishes it. It must be called with s.mu held and
// releases it before subscribers run.
func (s *Store) commit(ctx context.Context, next []models.Song) error {
	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", shared.ErrPersist, err)
	}

	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		s.mu.Unlock()
		s.logger.Error("could not save favorites", "key", s.key, "error", err)
		return fmt.Errorf("%w: %w", shared.ErrPersist, err)
	}

	s.songs = next
	s.version++
	version := s.version
	s.mu.Unlock()

	s.publish(version, next)
	return nil
}

// publish notifies subscribers with the list written at version. It runs after mu is
// released, so subscribers may read the store. A snapshot older than the last one
// published is dropped, which keeps concurrent commits from publishing out of order.
// Subscribers must not mutate the store synchronously.
func (s *Store) publish(version uint64, next []models.Song) {
	s.pub.Lock()
	defer s.pub.Unlock()
	if version <= s.published {
		return
	}
	s.published = version
	s.state.Set(signal.CloneSlice(next))
}

func indexOf(songs []models.Song, id int64) int {
	for i, song := range songs {
		if song.ID == id {
			return i
		}
	}
	return -1
}

func without(songs []models.Song, id int64) []models.Song {
	out := make([]models.Song, 0, len(songs))
	for _, song := range songs {
		if song.ID != id {
			out = append(out, song)
		}
	}
	return out
}
