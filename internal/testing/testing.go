// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/lyrx/internal/kv"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

// ErrInjected is returned by doubles configured to fail.
var ErrInjected = errors.New("injected failure")

// MockCatalog is a test double for [services.Catalog] that records every call.
type MockCatalog struct {
	mu sync.Mutex

	Songs map[int64]models.Song
	// Results is returned by Search and SearchFields when set, else every song in Songs.
	Results []models.Song
	Err     error

	SearchCalls []string
	FieldCalls  []services.FieldQuery
	GetCalls    []int64
}

// NewMockCatalog returns a catalog that knows songs.
func NewMockCatalog(songs ...models.Song) *MockCatalog {
	m := &MockCatalog{Songs: make(map[int64]models.Song)}
	for _, s := range songs {
		m.Songs[s.ID] = s
	}
	return m
}

func (m *MockCatalog) Search(ctx context.Context, query string) ([]models.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchCalls = append(m.SearchCalls, query)
	return m.results()
}

func (m *MockCatalog) SearchFields(ctx context.Context, q services.FieldQuery) ([]models.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FieldCalls = append(m.FieldCalls, q)
	return m.results()
}

func (m *MockCatalog) GetByID(ctx context.Context, id int64) (models.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls = append(m.GetCalls, id)
	if m.Err != nil {
		return models.Song{}, m.Err
	}
	song, ok := m.Songs[id]
	if !ok {
		return models.Song{}, fmt.Errorf("%w: %d", shared.ErrSongNotFound, id)
	}
	return song, nil
}

// Calls returns the total number of catalog requests made.
func (m *MockCatalog) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SearchCalls) + len(m.FieldCalls) + len(m.GetCalls)
}

func (m *MockCatalog) results() ([]models.Song, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Results != nil {
		return m.Results, nil
	}
	out := make([]models.Song, 0, len(m.Songs))
	for _, s := range m.Songs {
		out = append(out, s)
	}
	return out, nil
}

// FailingStore wraps a [kv.MemoryStore] and fails writes while FailWrites is set.
type FailingStore struct {
	*kv.MemoryStore

	mu         sync.Mutex
	FailWrites bool
	FailReads  bool
	Writes     int
}

func NewFailingStore() *FailingStore {
	return &FailingStore{MemoryStore: kv.NewMemoryStore()}
}

func (f *FailingStore) SetFailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailWrites = fail
}

func (f *FailingStore) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Writes
}

func (f *FailingStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	fail := f.FailReads
	f.mu.Unlock()
	if fail {
		return "", ErrInjected
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *FailingStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := f.FailWrites
	if !fail {
		f.Writes++
	}
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.MemoryStore.Set(ctx, key, value)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	Requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

// NewJSONResponse builds a response with a JSON body and status.
func NewJSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
