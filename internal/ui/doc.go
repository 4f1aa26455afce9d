// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the web app with five views behind a tab bar:
//  1. [HomeView] : Welcome text and the favorites count
//  2. [SearchView] : Free-text or field search with per-result lyrics and favorite toggles
//  3. [FavoritesView] : Saved songs, in the order they were added
//  4. [ContactView] : Contact form with inline validation
//  5. [DetailsView] : One song with both lyric variants, opened from a list or the ":" prompt
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Catalog requests run as tea.Cmds and their results carry a sequence number, so a result for a view the user
// already left is dropped. Favorites changes arrive through a channel fed by the store's subscription.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) in normal mode; esc leaves a text input
// and returns to normal mode. Contextual help is displayed via charmbracelet/bubbles/help.
package ui
