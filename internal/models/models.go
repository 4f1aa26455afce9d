// package models defines the data model for the lyrx lyrics client
package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Song is a catalog entry as returned by LRCLIB.
//
// LRCLIB sends null for missing lyrics; those decode to the empty string.
type Song struct {
	ID           int64   `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// SameAs reports whether s and other identify the same catalog song.
func (s Song) SameAs(other Song) bool {
	return s.ID == other.ID
}

// Label returns "Artist - Track", dropping whichever part is empty.
func (s Song) Label() string {
	switch {
	case s.ArtistName == "":
		return s.TrackName
	case s.TrackName == "":
		return s.ArtistName
	default:
		return fmt.Sprintf("%s - %s", s.ArtistName, s.TrackName)
	}
}

// HasLyrics reports whether any lyrics text is available.
func (s Song) HasLyrics() bool {
	return strings.TrimSpace(s.PlainLyrics) != "" || strings.TrimSpace(s.SyncedLyrics) != ""
}

// Lyrics returns the plain lyrics, falling back to the synced lyrics with timestamps removed.
func (s Song) Lyrics() string {
	if strings.TrimSpace(s.PlainLyrics) != "" {
		return s.PlainLyrics
	}
	if s.SyncedLyrics == "" {
		return ""
	}

	lines := ParseSyncedLyrics(s.SyncedLyrics)
	text := make([]string, len(lines))
	for i, l := range lines {
		text[i] = l.Text
	}
	return strings.Join(text, "\n")
}

// LyricLine is one line of synced lyrics.
type LyricLine struct {
	At   time.Duration
	Text string
}

var lrcTimestamp = regexp.MustCompile(`^\[(\d+):(\d{1,2})(?:[.:](\d{1,3}))?\]`)

// ParseSyncedLyrics splits LRC-style text ("[mm:ss.xx] line") into lines.
//
// Lines without a leading timestamp (metadata tags, blank lines) are skipped.
func ParseSyncedLyrics(text string) []LyricLine {
	var lines []LyricLine
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		m := lrcTimestamp.FindStringSubmatch(raw)
		if m == nil {
			continue
		}

		min, _ := strconv.Atoi(m[1])
		sec, _ := strconv.Atoi(m[2])
		at := time.Duration(min)*time.Minute + time.Duration(sec)*time.Second
		if frac := m[3]; frac != "" {
			n, _ := strconv.Atoi(frac)
			// "5" is 500ms, "05" is 50ms, "005" is 5ms
			for i := len(frac); i < 3; i++ {
				n *= 10
			}
			at += time.Duration(n) * time.Millisecond
		}

		lines = append(lines, LyricLine{At: at, Text: strings.TrimSpace(raw[len(m[0]):])})
	}
	return lines
}

// ContactMessage is a contact form submission.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}
