package shared

import (
	"database/sql"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDatabase(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	ConfigureDatabase(db, 1, 1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" {
				t.Errorf("migration version %d missing up SQL", m.Version)
			}
			if m.Down == "" {
				t.Errorf("migration version %d missing down SQL", m.Version)
			}
		}

		if migrations[0].Name != "create_kv_entries" {
			t.Errorf("expected first migration name create_kv_entries, got %s", migrations[0].Name)
		}
	})

	t.Run("RunMigrations and rollback", func(t *testing.T) {
		db := openTestDB(t)

		if err := RunMigrations(db, DriverSQLite); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected at least one migration to be applied")
		}

		if _, err := db.Exec("SELECT 1 FROM kv_entries LIMIT 1"); err != nil {
			t.Errorf("kv_entries table should exist after migrations: %v", err)
		}

		if err := RollbackMigration(db, DriverSQLite); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		var newCount int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&newCount); err != nil {
			t.Fatalf("failed to query schema_migrations after rollback: %v", err)
		}
		if newCount >= count {
			t.Errorf("expected migration count to decrease after rollback, got %d (was %d)", newCount, count)
		}

		if _, err := db.Exec("SELECT 1 FROM contact_messages LIMIT 1"); err == nil {
			t.Error("contact_messages should be dropped by rolling back the latest migration")
		}
	})

	t.Run("idempotent migrations", func(t *testing.T) {
		db := openTestDB(t)

		if err := RunMigrations(db, DriverSQLite); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(db, DriverSQLite); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}

		version, err := NewMigrator(db, DriverSQLite).CurrentVersion()
		if err != nil {
			t.Fatalf("CurrentVersion() error = %v", err)
		}
		if version != migrations[len(migrations)-1].Version {
			t.Errorf("expected current version %d, got %d", migrations[len(migrations)-1].Version, version)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		if _, err := NewDatabase("mysql", "x"); err == nil {
			t.Error("expected error for unsupported driver")
		}
	})
}
