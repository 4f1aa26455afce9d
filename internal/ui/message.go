package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyrx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
//
// Results of catalog calls carry the sequence number of the request that produced them so
// the model can drop results for a view the user already left.
type Msg struct {
	kind MsgKind
	seq  uint64
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchDone MsgKind = iota
	MsgDetailsLoaded
	MsgFavoriteSaved
	MsgContactSent
	MsgContactReset
	MsgFavoritesChanged
)

type searchPayload struct {
	songs []models.Song
	err   error
}

type detailsPayload struct {
	song models.Song
	err  error
}

type contactPayload struct {
	msg *models.ContactMessage
	err error
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(seq uint64, songs []models.Song, err error) Msg {
	return Msg{kind: MsgSearchDone, seq: seq, data: searchPayload{songs, err}}
}

// detailsLoadedMsg is the constructor for [MsgDetailsLoaded]
func detailsLoadedMsg(seq uint64, song models.Song, err error) Msg {
	return Msg{kind: MsgDetailsLoaded, seq: seq, data: detailsPayload{song, err}}
}

// favoriteSavedMsg is the constructor for [MsgFavoriteSaved]
func favoriteSavedMsg(err error) Msg {
	return Msg{kind: MsgFavoriteSaved, data: err}
}

// contactSentMsg is the constructor for [MsgContactSent]
func contactSentMsg(seq uint64, msg *models.ContactMessage, err error) Msg {
	return Msg{kind: MsgContactSent, seq: seq, data: contactPayload{msg, err}}
}

// contactResetMsg is the constructor for [MsgContactReset]
func contactResetMsg(seq uint64) Msg {
	return Msg{kind: MsgContactReset, seq: seq}
}

// favoritesChangedMsg is the constructor for [MsgFavoritesChanged]
func favoritesChangedMsg(songs []models.Song) Msg {
	return Msg{kind: MsgFavoritesChanged, data: songs}
}
