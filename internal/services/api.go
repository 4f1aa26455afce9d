// LRCLIB implementation of [Catalog]
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://lrclib.net/api"
	DefaultUserAgent = "lyrx/0.1.0 (https://github.com/desertthunder/lyrx)"
)

// CatalogService talks to the LRCLIB API.
type CatalogService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// CatalogOption configures a [CatalogService].
type CatalogOption func(*CatalogService)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) CatalogOption {
	return func(s *CatalogService) { s.httpClient = c }
}

// WithRateLimit spaces requests to at most perSecond. Zero or less disables limiting.
func WithRateLimit(perSecond float64) CatalogOption {
	return func(s *CatalogService) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) CatalogOption {
	return func(s *CatalogService) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) CatalogOption {
	return func(s *CatalogService) {
		if d > 0 {
			c := *s.httpClient
			c.Timeout = d
			s.httpClient = &c
		}
	}
}

// NewCatalogService creates a catalog client. An empty baseURL uses [DefaultBaseURL].
func NewCatalogService(baseURL string, opts ...CatalogOption) *CatalogService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	s := &CatalogService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  DefaultUserAgent,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewCatalogFromConfig builds a [CatalogService] from the [catalog] config section.
func NewCatalogFromConfig(cfg shared.CatalogConfig) *CatalogService {
	return NewCatalogService(cfg.BaseURL,
		WithHTTPClient(&http.Client{}),
		WithTimeout(cfg.Timeout()),
		WithRateLimit(cfg.RateLimit),
		WithUserAgent(cfg.UserAgent),
	)
}

// BaseURL returns the API root without a trailing slash.
func (s *CatalogService) BaseURL() string {
	return s.baseURL
}

// Search runs a free-text search. A blank query is rejected without a request.
func (s *CatalogService) Search(ctx context.Context, query string) ([]models.Song, error) {
	if isBlank(query) {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))

	var songs []models.Song
	if err := s.doRequest(ctx, "/search?"+params.Encode(), &songs); err != nil {
		return nil, err
	}
	return nonNil(songs), nil
}

// SearchFields runs a structured search. At least one field must be non-blank.
func (s *CatalogService) SearchFields(ctx context.Context, q FieldQuery) ([]models.Song, error) {
	if q.Empty() {
		return nil, fmt.Errorf("%w: track, artist or album required", shared.ErrInvalidInput)
	}

	params := url.Values{}
	for name, value := range map[string]string{
		"track_name":  q.Track,
		"artist_name": q.Artist,
		"album_name":  q.Album,
	} {
		if !isBlank(value) {
			params.Set(name, strings.TrimSpace(value))
		}
	}

	var songs []models.Song
	if err := s.doRequest(ctx, "/search?"+params.Encode(), &songs); err != nil {
		return nil, err
	}
	return nonNil(songs), nil
}

// GetByID fetches one song.
func (s *CatalogService) GetByID(ctx context.Context, id int64) (models.Song, error) {
	if id <= 0 {
		return models.Song{}, fmt.Errorf("%w: id must be positive, got %d", shared.ErrInvalidInput, id)
	}

	var song models.Song
	if err := s.doRequest(ctx, "/get/"+strconv.FormatInt(id, 10), &song); err != nil {
		if errors.Is(err, errNotFound) {
			return models.Song{}, fmt.Errorf("%w: %d", shared.ErrSongNotFound, id)
		}
		return models.Song{}, err
	}
	return song, nil
}

var errNotFound = fmt.Errorf("%w: status 404", shared.ErrAPIRequest)

// doRequest performs a GET against endpoint and decodes the JSON body into result.
func (s *CatalogService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %w", shared.ErrAPIRequest, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("%w (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", shared.ErrAPIRequest, err)
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func nonNil(songs []models.Song) []models.Song {
	if songs == nil {
		return []models.Song{}
	}
	return songs
}
