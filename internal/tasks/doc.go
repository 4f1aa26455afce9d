// Package tasks runs catalog operations that span many songs, with real-time progress reporting.
//
// # Core Operations
//
//  1. [LookupEngine.BulkLookup] : resolve many song ids against the catalog
//     - A bounded worker pool (default 4, max 10) pulls ids from a channel
//     - Every worker waits on one shared rate limiter before each request
//     - Failures are reported per id and never abort the run
//
//  2. [LookupEngine.ImportFavorites] : bulk lookup followed by one favorites write
//     - [ImportMerge] appends songs that are not yet favorites
//     - [ImportReplace] swaps the whole list
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
