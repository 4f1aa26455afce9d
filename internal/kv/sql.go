package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/lyrx/internal/shared"
)

// SQLStore implements [Store] on the kv_entries table.
//
// The table is created by the embedded migrations (see [shared.RunMigrations]).
// Writes are upserts, so Set never needs a read first.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore wraps an open, migrated database.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// DB exposes the connection for repositories sharing the same database.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Driver returns the database/sql driver name.
func (s *SQLStore) Driver() string { return s.driver }

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	query := shared.Rebind(s.driver, `SELECT value FROM kv_entries WHERE key = ?`)

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	query := shared.Rebind(s.driver, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)

	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	query := shared.Rebind(s.driver, `DELETE FROM kv_entries WHERE key = ?`)

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
