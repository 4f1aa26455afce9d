package ui

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/contact"
	"github.com/desertthunder/lyrx/internal/favorites"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/router"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	SearchView
	DetailsView
	ContactView
	FavoritesView
)

func (v ViewState) String() string {
	switch v {
	case HomeView:
		return "Home"
	case SearchView:
		return "Search"
	case DetailsView:
		return "Details"
	case ContactView:
		return "Contact"
	case FavoritesView:
		return "Favorites"
	}
	return fmt.Sprintf("ViewState(%d)", int(v))
}

// tabs is the navbar, in display order. Keys 1-4 select them.
var tabs = []struct {
	view ViewState
	path string
}{
	{HomeView, "/"},
	{SearchView, "/search"},
	{FavoritesView, "/favorites"},
	{ContactView, "/contact"},
}

// NewRoutes returns the path table used by the ":" prompt.
func NewRoutes() *router.Table[ViewState] {
	return router.New[ViewState]().
		Add("/", HomeView).
		Add("/search", SearchView).
		Add("/details/:id", DetailsView).
		Add("/contact", ContactView).
		Add("/favorites", FavoritesView).
		Redirect("/**", "/")
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	prevView  ViewState
	favorites *favorites.Store
	catalog   services.Catalog
	contact   *contact.Service
	logger    *log.Logger
	routes    *router.Table[ViewState]
	width     int
	height    int
	seq       uint64
	status    string

	prompt    textinput.Model
	prompting bool

	search  searchState
	details detailsState
	form    contactState
	favList list.Model

	changes     chan []models.Song
	unsubscribe func()

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The model subscribes to store; call [Model.Close] when the program exits.
func NewModel(ctx context.Context, store *favorites.Store, catalog services.Catalog, contactSvc *contact.Service, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(os.Stderr)
	}

	prompt := textinput.New()
	prompt.Prompt = ":"
	prompt.Placeholder = "/details/123"

	m := &Model{
		ctx:       ctx,
		view:      HomeView,
		favorites: store,
		catalog:   catalog,
		contact:   contactSvc,
		logger:    logger,
		routes:    NewRoutes(),
		width:     80,
		height:    24,
		prompt:    prompt,
		search:    newSearchState(),
		details:   newDetailsState(),
		form:      newContactState(),
		changes:   make(chan []models.Song, 1),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.favList = newSongList("Favorites", nil, m.width-4, m.height-8)
	m.refreshFavorites()
	m.resize(m.width, m.height)

	m.unsubscribe = store.Favorites().Subscribe(func(songs []models.Song) {
		// keep only the newest snapshot when the UI is behind
		for {
			select {
			case m.changes <- songs:
				return
			default:
			}
			select {
			case <-m.changes:
			default:
			}
		}
	})
	return m
}

// Close stops listening for favorites changes.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// View returns the active view.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.view {
	case HomeView:
		b.WriteString(m.renderHome())
	case SearchView:
		b.WriteString(m.renderSearch())
	case DetailsView:
		b.WriteString(m.renderDetails())
	case ContactView:
		b.WriteString(m.renderContact())
	case FavoritesView:
		b.WriteString(m.renderFavorites())
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString("\n" + styles.err.Render(m.status))
	}
	if m.prompting {
		b.WriteString("\n" + m.prompt.View())
	}
	b.WriteString("\n" + m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

// Init starts listening for favorites changes.
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case Msg:
		return m, m.handleMsg(msg)
	}
	return m, m.updateFocused(msg)
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgSearchDone:
		return m.searchDone(msg)
	case MsgDetailsLoaded:
		return m.detailsLoaded(msg)
	case MsgFavoriteSaved:
		if err, _ := msg.data.(error); err != nil {
			m.logger.Error("could not save favorites", "error", err)
			m.status = shared.MsgSaveFailed
		}
		m.refreshFavorites()
		return nil
	case MsgContactSent:
		return m.contactSent(msg)
	case MsgContactReset:
		m.contactReset(msg)
		return nil
	case MsgFavoritesChanged:
		m.refreshFavorites()
		return m.waitForChange()
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.prompting {
		return m.handlePromptKeys(msg)
	}

	switch m.view {
	case SearchView:
		if m.search.editing {
			return m.handleSearchInputKeys(msg)
		}
	case ContactView:
		if m.form.editing {
			return m.handleContactInputKeys(msg)
		}
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.goTo):
		m.prompting = true
		m.prompt.Reset()
		return m.prompt.Focus()
	case key.Matches(msg, m.keys.tabs):
		n := int(msg.Runes[0] - '1')
		return m.navigate(tabs[n].view)
	}

	switch m.view {
	case SearchView:
		return m.handleSearchKeys(msg)
	case DetailsView:
		return m.handleDetailsKeys(msg)
	case ContactView:
		return m.handleContactKeys(msg)
	case FavoritesView:
		return m.handleFavoritesKeys(msg)
	}
	return nil
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		m.prompting = false
		m.prompt.Blur()
		return nil
	case key.Matches(msg, m.keys.enter):
		path := strings.TrimSpace(m.prompt.Value())
		m.prompting = false
		m.prompt.Blur()
		if path == "" {
			return nil
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return m.goTo(path)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

// goTo resolves path through the route table and opens the matching view.
//
// Query parameters on /search prefill the form and run the search.
func (m *Model) goTo(path string) tea.Cmd {
	match, err := m.routes.Resolve(path)
	if err == nil && match.IsRedirect() {
		match, err = m.routes.Resolve(match.RedirectTo)
	}
	if err != nil || match.IsRedirect() {
		return m.navigate(HomeView)
	}

	switch match.Target {
	case DetailsView:
		id, err := match.IntParam("id")
		if err != nil {
			m.showDetailsError(shared.MsgInvalidID)
			return nil
		}
		return m.openDetails(id)
	case SearchView:
		cmd := m.navigate(SearchView)
		if u, err := url.Parse(path); err == nil && len(u.Query()) > 0 {
			if m.search.prefill(u.Query()) {
				return m.submitSearch()
			}
		}
		return cmd
	}
	return m.navigate(match.Target)
}

// navigate switches to v. In-flight requests owned by the view being left are abandoned.
func (m *Model) navigate(v ViewState) tea.Cmd {
	if v == m.view {
		return nil
	}
	m.leave(m.view)
	if m.view != DetailsView {
		m.prevView = m.view
	}
	m.view = v
	m.status = ""

	switch v {
	case SearchView:
		return m.search.edit()
	case ContactView:
		return m.form.edit()
	case FavoritesView:
		m.refreshFavorites()
	}
	return nil
}

func (m *Model) leave(v ViewState) {
	switch v {
	case SearchView:
		m.search.seq = 0
		m.search.loading = false
		m.search.blur()
	case DetailsView:
		m.details.seq = 0
		m.details.loading = false
	case ContactView:
		m.form.seq = 0
		m.form.sending = false
		m.form.sent = ""
		m.form.blur()
	}
}

func (m *Model) nextSeq() uint64 {
	m.seq++
	return m.seq
}

// refreshFavorites rebuilds every list that shows favorite state from the store.
func (m *Model) refreshFavorites() {
	songs := m.favorites.Favorites().Get()
	items := songItems(songs, func(int64) bool { return true }, nil)
	m.favList.SetItems(items)
	m.search.refresh(m.favorites.IsFavorite)
}

func (m *Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		songs, ok := <-ch
		if !ok {
			return nil
		}
		return favoritesChangedMsg(songs)
	}
}

func (m *Model) toggleFavorite(song models.Song) tea.Cmd {
	store, ctx := m.favorites, m.ctx
	return func() tea.Msg {
		return favoriteSavedMsg(store.Toggle(ctx, song))
	}
}

func (m *Model) removeFavorite(id int64) tea.Cmd {
	store, ctx := m.favorites, m.ctx
	return func() tea.Msg {
		return favoriteSavedMsg(store.Remove(ctx, id))
	}
}

// updateFocused forwards non-key messages (cursor blink) to whatever input has focus.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.prompting:
		m.prompt, cmd = m.prompt.Update(msg)
	case m.view == SearchView && m.search.editing:
		cmd = m.search.update(msg)
	case m.view == ContactView && m.form.editing:
		cmd = m.form.update(msg)
	}
	return cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.favList.SetSize(width-4, height-8)
	m.search.resize(width, height)
	m.details.resize(width, height)
	m.form.resize(width)
}

func (m *Model) renderTabs() string {
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		label := fmt.Sprintf("%d %s", i+1, t.view)
		if t.view == m.view || (m.view == DetailsView && t.view == m.prevView) {
			rendered[i] = styles.activeTab.Render(label)
		} else {
			rendered[i] = styles.tab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderHome() string {
	title := styles.title.Render("lyrx")
	body := fmt.Sprintf(
		"Search the LRCLIB lyrics catalog and keep a list of the songs you love.\n\nFavorites saved: %d\n\n%s\n%s",
		m.favorites.Len(),
		styles.help.Render("Press 2 to search, 3 for your favorites."),
		styles.help.Render("Press : to jump to a path such as /details/3396226."),
	)
	return fmt.Sprintf("%s\n%s", title, body)
}

func (m *Model) helpKeys() []key.Binding {
	switch m.view {
	case SearchView:
		if m.search.editing {
			return []key.Binding{m.keys.enter, m.keys.next, m.keys.back}
		}
		return []key.Binding{m.keys.enter, m.keys.lyrics, m.keys.favorite, m.keys.edit, m.keys.tabs, m.keys.quit}
	case DetailsView:
		return []key.Binding{m.keys.favorite, m.keys.up, m.keys.down, m.keys.back, m.keys.quit}
	case ContactView:
		if m.form.editing {
			return []key.Binding{m.keys.next, m.keys.send, m.keys.back}
		}
		return []key.Binding{m.keys.edit, m.keys.send, m.keys.tabs, m.keys.quit}
	case FavoritesView:
		return []key.Binding{m.keys.enter, m.keys.remove, m.keys.tabs, m.keys.goTo, m.keys.quit}
	}
	return m.keys.ShortHelp()
}
