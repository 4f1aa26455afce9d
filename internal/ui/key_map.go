package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Bindings other than quit and back only fire in normal mode, when no text input has focus.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	next     key.Binding
	prev     key.Binding
	lyrics   key.Binding
	favorite key.Binding
	remove   key.Binding
	edit     key.Binding
	send     key.Binding
	goTo     key.Binding
	tabs     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		lyrics:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lyrics")),
		favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		remove:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "remove")),
		edit:     key.NewBinding(key.WithKeys("/", "i"), key.WithHelp("/", "edit")),
		send:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "send")),
		goTo:     key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "go to path")),
		tabs:     key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "switch tab")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.tabs, k.goTo, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.lyrics, k.favorite, k.remove, k.edit},
		{k.next, k.prev, k.send},
		{k.tabs, k.goTo, k.quit},
	}
}
