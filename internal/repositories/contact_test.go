package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db, shared.DriverSQLite); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func newMessage(email string) *models.ContactMessage {
	return &models.ContactMessage{Name: "Ada", Email: email, Message: "Hello from the tests"}
}

func TestContactRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t), shared.DriverSQLite)
		msg := newMessage("ada@example.com")

		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("failed to create message: %v", err)
		}
		if msg.ID == "" {
			t.Error("message ID should be set after creation")
		}
		if msg.CreatedAt.IsZero() {
			t.Error("CreatedAt should be set after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t), shared.DriverSQLite)
		msg := newMessage("ada@example.com")
		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("failed to create message: %v", err)
		}

		got, err := repo.Get(ctx, msg.ID)
		if err != nil {
			t.Fatalf("failed to get message: %v", err)
		}
		if got.Email != msg.Email || got.Message != msg.Message || got.Delivered {
			t.Errorf("unexpected message %+v", got)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t), shared.DriverSQLite)
		if _, err := repo.Get(ctx, "nope"); !errors.Is(err, ErrMessageNotFound) {
			t.Errorf("expected ErrMessageNotFound, got %v", err)
		}
	})

	t.Run("MarkDelivered", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t), shared.DriverSQLite)
		msg := newMessage("ada@example.com")
		repo.Create(ctx, msg)

		if err := repo.MarkDelivered(ctx, msg.ID); err != nil {
			t.Fatalf("failed to mark delivered: %v", err)
		}
		got, _ := repo.Get(ctx, msg.ID)
		if !got.Delivered {
			t.Error("expected message to be delivered")
		}

		if err := repo.MarkDelivered(ctx, "missing"); !errors.Is(err, ErrMessageNotFound) {
			t.Errorf("expected ErrMessageNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t), shared.DriverSQLite)
		base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

		first := newMessage("first@example.com")
		first.CreatedAt = base
		second := newMessage("second@example.com")
		second.CreatedAt = base.Add(time.Minute)
		third := newMessage("third@example.com")
		third.CreatedAt = base.Add(2 * time.Minute)

		for _, m := range []*models.ContactMessage{third, first, second} {
			if err := repo.Create(ctx, m); err != nil {
				t.Fatalf("failed to create message: %v", err)
			}
		}
		repo.MarkDelivered(ctx, second.ID)

		all, err := repo.List(ctx, ListCriteria{})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 3 || all[0].Email != "first@example.com" || all[2].Email != "third@example.com" {
			t.Errorf("expected oldest first, got %d messages", len(all))
		}

		pending, err := repo.List(ctx, ListCriteria{Pending: true})
		if err != nil {
			t.Fatalf("failed to list pending: %v", err)
		}
		if len(pending) != 2 {
			t.Fatalf("expected 2 pending, got %d", len(pending))
		}
		for _, m := range pending {
			if m.Delivered {
				t.Errorf("pending list contains delivered message %s", m.ID)
			}
		}

		limited, _ := repo.List(ctx, ListCriteria{Limit: 1})
		if len(limited) != 1 {
			t.Errorf("expected 1 message with limit, got %d", len(limited))
		}
	})

	t.Run("closed database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewContactRepository(db, shared.DriverSQLite)
		db.Close()

		if err := repo.Create(ctx, newMessage("x@example.com")); err == nil {
			t.Error("expected error on closed database")
		}
		if _, err := repo.List(ctx, ListCriteria{}); err == nil {
			t.Error("expected error on closed database")
		}
	})
}
