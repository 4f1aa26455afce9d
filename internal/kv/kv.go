// Package kv provides the persistent key/value store behind the favorites list.
//
// A [Store] is a synchronous get/set/remove-by-key string store, durable across sessions.
// Implementations:
//   - [SQLStore] : database/sql over sqlite3 (default), libsql (Turso) or postgres
//   - [RedisStore] : a redis server via go-redis
//   - [MemoryStore] : process-local map, for tests and throwaway sessions
//
// [WithNamespace] scopes every key under a prefix, the way a browser scopes storage to an origin.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/lyrx/internal/shared"
)

// ErrNotFound is returned by [Store.Get] when the key is absent.
var ErrNotFound = errors.New("key not found")

// Store is a durable string key/value store.
type Store interface {
	// Get returns the value stored under key, or [ErrNotFound].
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases any resources held by the store.
	Close() error
}

// Open builds the backend selected by cfg.Driver.
//
// SQL backends have their migrations applied before the store is returned.
func Open(ctx context.Context, cfg shared.StorageConfig) (Store, error) {
	switch driver := strings.ToLower(cfg.Driver); {
	case driver == "" || shared.IsSQLDriver(driver):
		if driver == "" {
			driver = shared.DriverSQLite
		}
		db, err := shared.NewDatabase(driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

		if err := shared.RunMigrations(db, driver); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return NewSQLStore(db, driver), nil
	case driver == "redis":
		store, err := OpenRedis(ctx, cfg.DSN, cfg.Password)
		if err != nil {
			return nil, err
		}
		return store, nil
	case driver == "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownBackend, cfg.Driver)
	}
}

type namespaced struct {
	Store
	prefix string
}

// WithNamespace returns a [Store] that prefixes every key with "namespace:".
//
// An empty namespace returns s unchanged.
func WithNamespace(s Store, namespace string) Store {
	if namespace == "" {
		return s
	}
	return &namespaced{Store: s, prefix: namespace + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.Store.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.Store.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.Store.Remove(ctx, n.prefix+key)
}

// Unwrap returns the underlying store.
func (n *namespaced) Unwrap() Store {
	return n.Store
}
