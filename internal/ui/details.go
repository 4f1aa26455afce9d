package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

type detailsState struct {
	id       int64
	seq      uint64
	loading  bool
	err      string
	song     *models.Song
	viewport viewport.Model
}

func newDetailsState() detailsState {
	return detailsState{viewport: viewport.New(76, 14)}
}

func (d *detailsState) resize(width, height int) {
	d.viewport.Width = width - 4
	d.viewport.Height = max(height-10, 4)
}

// openDetails switches to the details view and loads id from the catalog.
func (m *Model) openDetails(id int64) tea.Cmd {
	m.enterDetails()
	seq := m.nextSeq()
	m.details.id = id
	m.details.seq = seq
	m.details.loading = true

	catalog, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		song, err := catalog.GetByID(ctx, id)
		return detailsLoadedMsg(seq, song, err)
	}
}

// showDetailsError opens the details view with msg and makes no request.
func (m *Model) showDetailsError(msg string) {
	m.enterDetails()
	m.details.err = msg
}

func (m *Model) enterDetails() {
	m.navigate(DetailsView)
	vp := m.details.viewport
	m.details = detailsState{viewport: vp}
	m.details.viewport.SetContent("")
}

func (m *Model) detailsLoaded(msg Msg) tea.Cmd {
	d := &m.details
	if d.seq == 0 || msg.seq != d.seq {
		m.logger.Debug("discarding stale details result", "seq", msg.seq, "want", d.seq)
		return nil
	}
	d.seq = 0
	d.loading = false

	p := msg.data.(detailsPayload)
	if p.err != nil {
		if errors.Is(p.err, shared.ErrSongNotFound) {
			m.logger.Warn("song not found", "id", d.id)
		} else {
			m.logger.Error("could not load song", "id", d.id, "error", p.err)
		}
		d.err = shared.MsgLoadFailed
		return nil
	}

	song := p.song
	d.song = &song
	d.viewport.SetContent(detailsBody(song))
	d.viewport.GotoTop()
	return nil
}

func (m *Model) handleDetailsKeys(msg tea.KeyMsg) tea.Cmd {
	d := &m.details
	switch {
	case key.Matches(msg, m.keys.back):
		return m.navigate(m.prevView)
	case key.Matches(msg, m.keys.favorite) && d.song != nil:
		m.status = ""
		return m.toggleFavorite(*d.song)
	}

	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd
}

func (m *Model) renderDetails() string {
	d := &m.details
	switch {
	case d.err != "":
		return styles.err.Render(d.err)
	case d.loading:
		return styles.warn.Render("Loading...")
	case d.song == nil:
		return ""
	}

	heading := d.song.Label()
	if m.favorites.IsFavorite(d.song.ID) {
		heading = "♥ " + heading
	}
	return styles.title.Render(heading) + "\n" + d.viewport.View()
}

// detailsBody renders the header fields followed by both lyric variants.
func detailsBody(song models.Song) string {
	var b strings.Builder
	b.WriteString(formatter.FormatSong(song, false))

	switch {
	case song.Instrumental:
		b.WriteString("\n(instrumental)\n")
	case !song.HasLyrics():
		b.WriteString("\nNo lyrics available.\n")
	}
	if strings.TrimSpace(song.PlainLyrics) != "" {
		b.WriteString("\nLyrics\n\n")
		b.WriteString(strings.TrimRight(song.PlainLyrics, "\n"))
		b.WriteString("\n")
	}
	if strings.TrimSpace(song.SyncedLyrics) != "" {
		b.WriteString("\nSynced lyrics\n\n")
		b.WriteString(strings.TrimRight(song.SyncedLyrics, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
