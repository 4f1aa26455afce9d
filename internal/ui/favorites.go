package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) selectedFavorite() (songItem, bool) {
	item, ok := m.favList.SelectedItem().(songItem)
	return item, ok
}

func (m *Model) handleFavoritesKeys(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.back) {
		return m.navigate(HomeView)
	}

	item, ok := m.selectedFavorite()
	switch {
	case !ok:
	case key.Matches(msg, m.keys.enter):
		return m.openDetails(item.song.ID)
	case key.Matches(msg, m.keys.remove), key.Matches(msg, m.keys.favorite):
		m.status = ""
		return m.removeFavorite(item.song.ID)
	}

	var cmd tea.Cmd
	m.favList, cmd = m.favList.Update(msg)
	return cmd
}

func (m *Model) renderFavorites() string {
	if len(m.favList.Items()) == 0 {
		return styles.title.Render("Favorites") + "\n" + "You have no favorites yet.\n\n" +
			styles.help.Render("Press 2 to search and f to save a song.")
	}
	return m.favList.View()
}
