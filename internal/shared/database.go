package shared

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// SQL driver names accepted by [NewDatabase].
const (
	DriverSQLite   = "sqlite3"
	DriverLibSQL   = "libsql"
	DriverPostgres = "postgres"
)

// NewDatabase opens a connection using the named database/sql driver.
//
// For sqlite3 the dsn can be ":memory:" for an in-memory database.
// Returns an open database connection or an error if connection fails.
func NewDatabase(driver, dsn string) (*sql.DB, error) {
	if !IsSQLDriver(driver) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
//
// Non-positive values leave the driver defaults in place.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
}

// IsSQLDriver reports whether driver is served by database/sql.
func IsSQLDriver(driver string) bool {
	switch driver {
	case DriverSQLite, DriverLibSQL, DriverPostgres:
		return true
	}
	return false
}

// Rebind rewrites '?' placeholders into the positional form the driver expects.
//
// Only postgres needs rewriting ($1, $2, ...). Question marks inside single-quoted literals are kept.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n, quoted := 0, false
	for _, r := range query {
		switch {
		case r == '\'':
			quoted = !quoted
			b.WriteRune(r)
		case r == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
