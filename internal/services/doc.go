// Package services implements the client for the remote lyrics catalog.
//
// # Catalog Interface
//
// [Catalog] is what the CLI, TUI and web handlers depend on. [CatalogService] implements
// it against the LRCLIB HTTP API:
//   - GET {base}/search?q=...
//   - GET {base}/search?track_name=...&artist_name=...&album_name=...
//   - GET {base}/get/{id}
//
// Each call is a single blocking request bounded by the caller's context. There are no
// retries. An optional token bucket (golang.org/x/time/rate) spaces requests out, and
// every request carries a User-Agent naming the client, as LRCLIB asks.
//
// # Error Handling
//
// Errors wrap sentinels from the shared package:
//   - [shared.ErrInvalidInput] : blank query, checked before any request is made
//   - [shared.ErrSongNotFound] : GET /get/{id} answered 404
//   - [shared.ErrAPIRequest] : transport failure, other non-2xx status, or undecodable body
package services
