// Package repositories implements SQL persistence for contact form submissions.
//
// [ContactRepository] is an outbox: every valid message is inserted before delivery is
// attempted and flagged once a notifier accepts it. Pending rows can be listed and
// retried later by `lyrx contact --retry`.
//
// Queries are written with "?" placeholders and rebound per driver, so the same
// repository runs against sqlite3, libsql and postgres.
package repositories
