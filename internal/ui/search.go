package ui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Search inputs, in focus order. The first is the free-text query, the rest form a field search.
const (
	inputQuery = iota
	inputTrack
	inputArtist
	inputAlbum
)

var searchLabels = []string{"Query ", "Track ", "Artist", "Album "}

// searchParams maps search inputs to the URL parameters accepted by /search.
var searchParams = []string{"q", "track_name", "artist_name", "album_name"}

type searchState struct {
	inputs   []textinput.Model
	focus    int
	editing  bool
	seq      uint64
	loading  bool
	err      string
	searched bool
	songs    []models.Song
	results  list.Model
	// lyrics holds the per-result "show lyrics" flags. It is reset on every search.
	lyrics map[int64]bool
}

func newSearchState() searchState {
	inputs := make([]textinput.Model, len(searchLabels))
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = searchLabels[i] + " > "
		ti.CharLimit = 200
		inputs[i] = ti
	}
	inputs[inputQuery].Placeholder = "artist, title or a line of lyrics"

	return searchState{
		inputs:  inputs,
		results: newSongList("Results", nil, 76, 12),
		lyrics:  make(map[int64]bool),
	}
}

func (s *searchState) edit() tea.Cmd {
	s.editing = true
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
	return s.inputs[s.focus].Focus()
}

func (s *searchState) blur() {
	s.editing = false
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
}

func (s *searchState) cycle(delta int) tea.Cmd {
	s.focus = (s.focus + delta + len(s.inputs)) % len(s.inputs)
	return s.edit()
}

func (s *searchState) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return cmd
}

// advanced reports whether the next submit is a field search.
func (s *searchState) advanced() bool {
	return s.focus != inputQuery
}

func (s *searchState) fields() services.FieldQuery {
	return services.FieldQuery{
		Track:  s.inputs[inputTrack].Value(),
		Artist: s.inputs[inputArtist].Value(),
		Album:  s.inputs[inputAlbum].Value(),
	}
}

// prefill copies search parameters from q into the inputs and reports whether any was present.
// A field parameter moves focus to the field form.
func (s *searchState) prefill(q url.Values) bool {
	found := false
	for i, name := range searchParams {
		if !q.Has(name) {
			continue
		}
		s.inputs[i].SetValue(q.Get(name))
		if !found {
			s.focus = i
		}
		found = true
	}
	return found
}

func (s *searchState) selected() (songItem, bool) {
	item, ok := s.results.SelectedItem().(songItem)
	return item, ok
}

func (s *searchState) refresh(isFavorite func(int64) bool) {
	idx := s.results.Index()
	s.results.SetItems(songItems(s.songs, isFavorite, s.lyrics))
	if idx < len(s.songs) {
		s.results.Select(idx)
	}
}

func (s *searchState) resize(width, height int) {
	for i := range s.inputs {
		s.inputs[i].Width = max(width-14, 10)
	}
	s.results.SetSize(width-4, max(height-16, 6))
}

// submitSearch validates the inputs and starts a catalog request. An empty query sets an
// error and makes no request.
func (m *Model) submitSearch() tea.Cmd {
	s := &m.search
	s.err = ""

	var run func() ([]models.Song, error)
	catalog, ctx := m.catalog, m.ctx
	if s.advanced() {
		fields := s.fields()
		if fields.Empty() {
			s.err = shared.MsgEmptyQuery
			s.searched = false
			return nil
		}
		run = func() ([]models.Song, error) { return catalog.SearchFields(ctx, fields) }
	} else {
		query := strings.TrimSpace(s.inputs[inputQuery].Value())
		if query == "" {
			s.err = shared.MsgEmptyQuery
			s.searched = false
			return nil
		}
		run = func() ([]models.Song, error) { return catalog.Search(ctx, query) }
	}

	seq := m.nextSeq()
	s.seq = seq
	s.loading = true
	s.blur()
	return func() tea.Msg {
		songs, err := run()
		return searchDoneMsg(seq, songs, err)
	}
}

func (m *Model) searchDone(msg Msg) tea.Cmd {
	s := &m.search
	if s.seq == 0 || msg.seq != s.seq {
		m.logger.Debug("discarding stale search result", "seq", msg.seq, "want", s.seq)
		return nil
	}
	s.seq = 0
	s.loading = false

	p := msg.data.(searchPayload)
	if p.err != nil {
		m.logger.Error("search failed", "error", p.err)
		s.err = shared.MsgSearchFailed
		s.searched = false
		s.songs = nil
		s.results.SetItems(nil)
		return nil
	}

	s.searched = true
	s.songs = p.songs
	s.lyrics = make(map[int64]bool)
	s.results.Title = fmt.Sprintf("%d results", len(p.songs))
	s.results.ResetSelected()
	s.refresh(m.favorites.IsFavorite)
	return nil
}

func (m *Model) handleSearchInputKeys(msg tea.KeyMsg) tea.Cmd {
	s := &m.search
	switch {
	case key.Matches(msg, m.keys.back):
		s.blur()
		return nil
	case key.Matches(msg, m.keys.enter):
		return m.submitSearch()
	case key.Matches(msg, m.keys.next):
		return s.cycle(1)
	case key.Matches(msg, m.keys.prev):
		return s.cycle(-1)
	}
	return s.update(msg)
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	s := &m.search
	switch {
	case key.Matches(msg, m.keys.edit), key.Matches(msg, m.keys.next):
		return s.edit()
	case key.Matches(msg, m.keys.back):
		return m.navigate(HomeView)
	}

	item, ok := s.selected()
	switch {
	case !ok:
	case key.Matches(msg, m.keys.enter):
		return m.openDetails(item.song.ID)
	case key.Matches(msg, m.keys.lyrics):
		s.lyrics[item.song.ID] = !s.lyrics[item.song.ID]
		s.refresh(m.favorites.IsFavorite)
		return nil
	case key.Matches(msg, m.keys.favorite):
		m.status = ""
		return m.toggleFavorite(item.song)
	}

	var cmd tea.Cmd
	s.results, cmd = s.results.Update(msg)
	return cmd
}

func (m *Model) renderSearch() string {
	s := &m.search
	var b strings.Builder

	b.WriteString(styles.title.Render("Search"))
	b.WriteString("\n")
	for i, in := range s.inputs {
		if i == inputTrack {
			b.WriteString(styles.help.Render("or search by field:"))
			b.WriteString("\n")
		}
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case s.err != "":
		b.WriteString(styles.err.Render(s.err))
	case s.loading:
		b.WriteString(styles.warn.Render("Searching..."))
	case s.searched && len(s.songs) == 0:
		b.WriteString("No songs found.")
	case s.searched:
		b.WriteString(s.results.View())
		if item, ok := s.selected(); ok && item.lyrics {
			b.WriteString("\n")
			b.WriteString(styles.lyrics.Render(lyricsPreview(item.song, 12)))
		}
	}
	return b.String()
}

// lyricsPreview returns up to n lines of a song's lyrics for the inline panel.
func lyricsPreview(song models.Song, n int) string {
	if song.Instrumental {
		return "(instrumental)"
	}
	text := song.Lyrics()
	if strings.TrimSpace(text) == "" {
		return "(no lyrics)"
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = append(lines[:n], fmt.Sprintf("… %d more lines, press enter for details", len(lines)-n))
	}
	return strings.Join(lines, "\n")
}
