// Package web implements the server-rendered web interface.
//
// The web app mirrors the TUI: Home, Search, Details, Contact and Favorites pages behind a
// shared navbar. Pages are rendered with html/template from embedded files and every
// form posts back to the server, so no JavaScript is needed.
//
// Routes (first match wins):
//
//	GET  /                      → Home
//	GET  /search                → Search (q, or track_name/artist_name/album_name)
//	GET  /details/:id           → Details
//	POST /details/:id/favorite  → toggle favorite, redirect back
//	GET  /contact               → Contact form
//	POST /contact               → Contact submit
//	GET  /favorites             → Favorites
//	POST /favorites/:id/remove  → remove favorite, redirect to /favorites
//	POST /search/favorite       → toggle a search result, redirect back to the query
//	*    /**                    → 302 to /
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/contact"
	"github.com/desertthunder/lyrx/internal/favorites"
	"github.com/desertthunder/lyrx/internal/server"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

// User-facing messages.
const (
	MsgEmptyQuery   = shared.MsgEmptyQuery
	MsgSearchFailed = shared.MsgSearchFailed
	MsgInvalidID    = shared.MsgInvalidID
	MsgLoadFailed   = shared.MsgLoadFailed
	MsgSaveFailed   = shared.MsgSaveFailed
	MsgSendFailed   = shared.MsgSendFailed
)

// ContactRefreshSeconds is how long the contact confirmation stays before the form returns.
var ContactRefreshSeconds = int(contact.ConfirmationDelay / time.Second)

// App holds the dependencies shared by all handlers.
type App struct {
	favorites *favorites.Store
	catalog   services.Catalog
	contact   *contact.Service
	logger    *log.Logger
	pages     map[string]*template.Template
}

// NewApp parses the page templates.
func NewApp(store *favorites.Store, catalog services.Catalog, contactSvc *contact.Service, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = shared.NewLogger(os.Stderr)
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"home", "search", "details", "contact", "favorites"} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &App{
		favorites: store,
		catalog:   catalog,
		contact:   contactSvc,
		logger:    logger,
		pages:     pages,
	}, nil
}

var funcs = template.FuncMap{
	"duration": shared.FormatDuration,
	"json": func(v any) (string, error) {
		data, err := shared.MarshalJSON(v, false)
		return string(data), err
	},
}

// Handler returns the router with every route and the standard middleware.
func (a *App) Handler() http.Handler {
	r := server.NewBasicRouter()
	r.Use(server.RequestID(), server.Logging(a.logger), server.Recover(a.logger))
	a.Register(r)
	return r
}

// Register adds the route table to r. The catch-all redirect is registered last.
func (a *App) Register(r server.Router) {
	r.Handle(http.MethodGet, "/", http.HandlerFunc(a.home))
	r.Handle(http.MethodGet, "/search", http.HandlerFunc(a.search))
	r.Handle(http.MethodPost, "/search/favorite", http.HandlerFunc(a.toggleSearchFavorite))
	r.Handle(http.MethodGet, "/details/:id", http.HandlerFunc(a.details))
	r.Handle(http.MethodPost, "/details/:id/favorite", http.HandlerFunc(a.toggleDetailsFavorite))
	r.Handle(http.MethodGet, "/contact", http.HandlerFunc(a.contactForm))
	r.Handle(http.MethodPost, "/contact", http.HandlerFunc(a.contactSubmit))
	r.Handle(http.MethodGet, "/favorites", http.HandlerFunc(a.favoritesList))
	r.Handle(http.MethodPost, "/favorites/:id/remove", http.HandlerFunc(a.removeFavorite))
	r.Redirect("/**", "/")
}

type navLink struct {
	Path   string
	Label  string
	Active bool
}

var navLinks = []navLink{
	{Path: "/", Label: "Home"},
	{Path: "/search", Label: "Search"},
	{Path: "/favorites", Label: "Favorites"},
	{Path: "/contact", Label: "Contact"},
}

// page is the data every template receives.
type page struct {
	Title   string
	Nav     []navLink
	Error   string
	Refresh string
	Data    any
}

func newPage(title, active string, data any) *page {
	nav := make([]navLink, len(navLinks))
	for i, l := range navLinks {
		l.Active = l.Path == active
		nav[i] = l
	}
	return &page{Title: title, Nav: nav, Data: data}
}

func (a *App) render(w http.ResponseWriter, status int, name string, p *page) {
	tmpl, ok := a.pages[name]
	if !ok {
		http.Error(w, "Unknown page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		a.logger.Error("template render failed", "page", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
