package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

var (
	_ list.Item = songItem{}
)

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song     models.Song
	favorite bool
	lyrics   bool
}

func (i songItem) FilterValue() string { return i.song.Label() }
func (i songItem) Title() string {
	if i.favorite {
		return "♥ " + i.song.TrackName
	}
	return i.song.TrackName
}

func (i songItem) Description() string {
	desc := i.song.ArtistName
	if i.song.AlbumName != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.AlbumName)
	}
	desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.song.Duration))
	if i.song.Instrumental {
		desc += " • instrumental"
	}
	return desc
}

// newSongList builds a [list.Model] with the bindings that clash with the TUI's own keys turned off.
func newSongList(title string, items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("song", "songs")
	return l
}

func songItems(songs []models.Song, isFavorite func(int64) bool, lyrics map[int64]bool) []list.Item {
	items := make([]list.Item, len(songs))
	for i, s := range songs {
		items[i] = songItem{song: s, favorite: isFavorite(s.ID), lyrics: lyrics[s.ID]}
	}
	return items
}
