// Package models defines the domain values shared by every lyrx surface.
//
//   - [Song] : one LRCLIB catalog entry with plain and synced lyrics
//   - [LyricLine] : a single time-tagged line parsed from synced lyrics
//   - [ContactMessage] : a submitted contact form, kept in the outbox
//
// Songs are value objects. Two songs are the same logical song iff their IDs match ([Song.SameAs]);
// other fields are never re-validated against the catalog after being stored.
package models
