package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/lyrx/internal/contact"
	"github.com/desertthunder/lyrx/internal/favorites"
	"github.com/desertthunder/lyrx/internal/kv"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	tu "github.com/desertthunder/lyrx/internal/testing"
)

var (
	yesterday = models.Song{ID: 1, TrackName: "Yesterday", ArtistName: "The Beatles", AlbumName: "Help!", Duration: 125, PlainLyrics: "Yesterday\nAll my troubles"}
	intro     = models.Song{ID: 2, TrackName: "Intro", ArtistName: "The xx", Duration: 128, Instrumental: true}
)

type stubNotifier struct {
	err  error
	sent []models.ContactMessage
}

func (n *stubNotifier) Notify(_ context.Context, msg models.ContactMessage) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type fixture struct {
	app      *App
	handler  http.Handler
	catalog  *tu.MockCatalog
	store    *favorites.Store
	kv       *tu.FailingStore
	notifier *stubNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	backing := tu.NewFailingStore()
	store := favorites.New(context.Background(), backing, favorites.WithLogger(logger))
	catalog := tu.NewMockCatalog(yesterday, intro)
	notifier := &stubNotifier{}

	app, err := NewApp(store, catalog, contact.NewService(notifier, nil, logger), logger)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	return &fixture{app: app, handler: app.Handler(), catalog: catalog, store: store, kv: backing, notifier: notifier}
}

func (f *fixture) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		path     string
		status   int
		contains string
	}{
		{"home", "/", http.StatusOK, "Your favorites</a> (0)"},
		{"search form", "/search", http.StatusOK, `name="q"`},
		{"favorites", "/favorites", http.StatusOK, "no favorites yet"},
		{"contact", "/contact", http.StatusOK, `action="/contact"`},
		{"details", "/details/1", http.StatusOK, "Yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, tt.path, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, rec.Body.String())
			}
		})
	}

	t.Run("unknown paths redirect home", func(t *testing.T) {
		for _, path := range []string{"/nope", "/details", "/favorites/1/extra/bits"} {
			rec := f.do(http.MethodGet, path, nil)
			if rec.Code != http.StatusFound {
				t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusFound)
			}
			if loc := rec.Header().Get("Location"); loc != "/" {
				t.Errorf("%s: Location = %q, want /", path, loc)
			}
		}
	})

	t.Run("active nav link", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/favorites", nil)
		if !strings.Contains(rec.Body.String(), `href="/favorites" class="active"`) {
			t.Errorf("favorites link not marked active:\n%s", rec.Body.String())
		}
	})
}

func TestSearch(t *testing.T) {
	t.Run("empty query makes no request", func(t *testing.T) {
		f := newFixture(t)
		for _, target := range []string{"/search?q=", "/search?q=+++", "/search?track_name=&artist_name=&album_name="} {
			rec := f.do(http.MethodGet, target, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: status = %d, want %d", target, rec.Code, http.StatusBadRequest)
			}
			if !strings.Contains(rec.Body.String(), MsgEmptyQuery) {
				t.Errorf("%s: body missing %q", target, MsgEmptyQuery)
			}
		}
		if n := f.catalog.Calls(); n != 0 {
			t.Errorf("catalog calls = %d, want 0", n)
		}
	})

	t.Run("free text", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.Results = []models.Song{yesterday}

		rec := f.do(http.MethodGet, "/search?q=yesterday", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "1 results") || !strings.Contains(body, `href="/details/1"`) {
			t.Errorf("results not rendered:\n%s", body)
		}
		if len(f.catalog.SearchCalls) != 1 || f.catalog.SearchCalls[0] != "yesterday" {
			t.Errorf("SearchCalls = %v", f.catalog.SearchCalls)
		}
	})

	t.Run("by field", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.Results = []models.Song{yesterday}

		rec := f.do(http.MethodGet, "/search?track_name=Yesterday&artist_name=Beatles", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(f.catalog.FieldCalls) != 1 {
			t.Fatalf("FieldCalls = %v", f.catalog.FieldCalls)
		}
		q := f.catalog.FieldCalls[0]
		if q.Track != "Yesterday" || q.Artist != "Beatles" || q.Album != "" {
			t.Errorf("field query = %+v", q)
		}
		if len(f.catalog.SearchCalls) != 0 {
			t.Errorf("free-text search should not run, got %v", f.catalog.SearchCalls)
		}
	})

	t.Run("failure", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.Err = tu.ErrInjected

		rec := f.do(http.MethodGet, "/search?q=yesterday", nil)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
		}
		if !strings.Contains(rec.Body.String(), MsgSearchFailed) {
			t.Errorf("body missing %q", MsgSearchFailed)
		}
	})

	t.Run("toggle redirects back to the query", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/search/favorite", url.Values{"id": {"1"}, "back": {"q=yesterday"}})
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
		}
		if loc := rec.Header().Get("Location"); loc != "/search?q=yesterday" {
			t.Errorf("Location = %q", loc)
		}
		if !f.store.IsFavorite(1) {
			t.Error("song 1 should be a favorite")
		}

		f.do(http.MethodPost, "/search/favorite", url.Values{"id": {"1"}})
		if f.store.IsFavorite(1) {
			t.Error("second toggle should remove the favorite")
		}
	})

	t.Run("toggle adds the posted result without a catalog request", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.Err = tu.ErrInjected
		raw, _ := json.Marshal(yesterday)

		rec := f.do(http.MethodPost, "/search/favorite", url.Values{"id": {"1"}, "song": {string(raw)}})
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
		}
		if song, ok := f.store.Get(1); !ok || song.TrackName != yesterday.TrackName {
			t.Errorf("favorite = %+v, %v", song, ok)
		}
		if n := f.catalog.Calls(); n != 0 {
			t.Errorf("catalog calls = %d, want 0", n)
		}
	})

	t.Run("toggle ignores a posted song with another id", func(t *testing.T) {
		f := newFixture(t)
		raw, _ := json.Marshal(intro)

		f.do(http.MethodPost, "/search/favorite", url.Values{"id": {"1"}, "song": {string(raw)}})
		if song, ok := f.store.Get(1); !ok || song.TrackName != yesterday.TrackName {
			t.Errorf("favorite = %+v, %v", song, ok)
		}
		if len(f.catalog.GetCalls) != 1 {
			t.Errorf("GetByID calls = %d, want 1", len(f.catalog.GetCalls))
		}
	})

	t.Run("results post the song with the add toggle", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.Results = []models.Song{yesterday}

		body := f.do(http.MethodGet, "/search?q=x", nil).Body.String()
		if !strings.Contains(body, `name="song"`) {
			t.Errorf("song field missing:\n%s", body)
		}
	})

	t.Run("toggle drops foreign redirect targets", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/search/favorite", url.Values{"id": {"1"}, "back": {"next=https://evil.example"}})
		if loc := rec.Header().Get("Location"); loc != "/search" {
			t.Errorf("Location = %q, want /search", loc)
		}
	})

	t.Run("results show favorite state", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.Results = []models.Song{yesterday, intro}
		if err := f.store.Add(context.Background(), yesterday); err != nil {
			t.Fatal(err)
		}

		body := f.do(http.MethodGet, "/search?q=x", nil).Body.String()
		if strings.Count(body, "Remove favorite") != 1 || strings.Count(body, "Add favorite") != 1 {
			t.Errorf("favorite markers wrong:\n%s", body)
		}
	})
}

func TestDetails(t *testing.T) {
	t.Run("invalid id makes no request", func(t *testing.T) {
		f := newFixture(t)
		for _, path := range []string{"/details/abc", "/details/0", "/details/-4"} {
			rec := f.do(http.MethodGet, path, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusBadRequest)
			}
			if !strings.Contains(rec.Body.String(), MsgInvalidID) {
				t.Errorf("%s: body missing %q", path, MsgInvalidID)
			}
		}
		if n := f.catalog.Calls(); n != 0 {
			t.Errorf("catalog calls = %d, want 0", n)
		}
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodGet, "/details/99", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		if !strings.Contains(rec.Body.String(), MsgLoadFailed) {
			t.Errorf("body missing %q", MsgLoadFailed)
		}
	})

	t.Run("renders lyrics", func(t *testing.T) {
		f := newFixture(t)
		body := f.do(http.MethodGet, "/details/1", nil).Body.String()
		if !strings.Contains(body, "All my troubles") {
			t.Errorf("lyrics missing:\n%s", body)
		}
	})

	t.Run("toggle", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/details/2/favorite", url.Values{})
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
		}
		if loc := rec.Header().Get("Location"); loc != "/details/2" {
			t.Errorf("Location = %q", loc)
		}
		if !f.store.IsFavorite(2) {
			t.Error("song 2 should be a favorite")
		}
		if !strings.Contains(f.do(http.MethodGet, "/details/2", nil).Body.String(), "Remove favorite") {
			t.Error("details should offer removal after toggle")
		}
	})

	t.Run("save failure", func(t *testing.T) {
		f := newFixture(t)
		f.kv.SetFailWrites(true)

		rec := f.do(http.MethodPost, "/details/1/favorite", url.Values{})
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
		}
		if !strings.Contains(rec.Body.String(), MsgSaveFailed) {
			t.Errorf("body missing %q", MsgSaveFailed)
		}
		if f.store.IsFavorite(1) {
			t.Error("failed write must not change favorites")
		}
	})
}

func TestFavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, s := range []models.Song{yesterday, intro} {
		if err := f.store.Add(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("lists in insertion order", func(t *testing.T) {
		body := f.do(http.MethodGet, "/favorites", nil).Body.String()
		first, second := strings.Index(body, "Yesterday"), strings.Index(body, "Intro")
		if first < 0 || second < 0 || first > second {
			t.Errorf("unexpected order:\n%s", body)
		}
	})

	t.Run("home shows count", func(t *testing.T) {
		if body := f.do(http.MethodGet, "/", nil).Body.String(); !strings.Contains(body, "Your favorites</a> (2)") {
			t.Errorf("count missing:\n%s", body)
		}
	})

	t.Run("remove", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/favorites/1/remove", url.Values{})
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
		}
		if f.store.IsFavorite(1) || !f.store.IsFavorite(2) {
			t.Errorf("favorites = %v", f.store.Favorites().Get())
		}
	})

	t.Run("remove needs post", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/favorites/2/remove", nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}

func TestContact(t *testing.T) {
	valid := url.Values{
		contact.FieldName:    {"Ada"},
		contact.FieldEmail:   {"ada@example.com"},
		contact.FieldMessage: {"Hello there, lovely app."},
	}

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/contact", valid)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "Sent by ada@example.com!") {
			t.Errorf("confirmation missing:\n%s", body)
		}
		if !strings.Contains(body, `content="3; url=/contact"`) {
			t.Errorf("refresh missing:\n%s", body)
		}
		if len(f.notifier.sent) != 1 {
			t.Errorf("sent = %d, want 1", len(f.notifier.sent))
		}
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)

		form := url.Values{contact.FieldName: {""}, contact.FieldEmail: {"nope"}, contact.FieldMessage: {"short"}}
		rec := f.do(http.MethodPost, "/contact", form)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
		}
		body := rec.Body.String()
		for _, want := range []string{"Name is required.", "Enter a valid email address.", "Message must be at least 10 characters.", `value="nope"`} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
		if len(f.notifier.sent) != 0 {
			t.Error("invalid form must not be delivered")
		}
	})

	t.Run("delivery failure keeps the form", func(t *testing.T) {
		f := newFixture(t)
		f.notifier.err = tu.ErrInjected

		rec := f.do(http.MethodPost, "/contact", valid)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
		}
		body := rec.Body.String()
		if !strings.Contains(body, MsgSendFailed) || !strings.Contains(body, `value="ada@example.com"`) {
			t.Errorf("form not kept:\n%s", body)
		}
	})
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(favorites.New(context.Background(), kv.NewMemoryStore()), tu.NewMockCatalog(), contact.NewService(nil, nil, nil), nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if len(app.pages) != 5 {
		t.Errorf("pages = %d, want 5", len(app.pages))
	}
}
