package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// ErrMessageNotFound is returned when no contact message has the requested id.
var ErrMessageNotFound = errors.New("contact message not found")

// ContactRepository is the outbox of submitted contact messages.
//
// Every valid submission is recorded before delivery is attempted; delivered rows are
// flagged so a later run can retry the rest.
type ContactRepository struct {
	db     *sql.DB
	driver string
}

// NewContactRepository creates a new ContactRepository with the given database connection
func NewContactRepository(db *sql.DB, driver string) *ContactRepository {
	return &ContactRepository{db: db, driver: driver}
}

// Create inserts msg with a generated ID. A zero CreatedAt is set to now.
func (r *ContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	msg.ID = shared.GenerateID()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO contact_messages (id, name, email, message, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		msg.ID,
		msg.Name,
		msg.Email,
		msg.Message,
		msg.Delivered,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact message: %w", err)
	}

	return nil
}

// Get retrieves a message by ID
func (r *ContactRepository) Get(ctx context.Context, id string) (*models.ContactMessage, error) {
	query := `
		SELECT id, name, email, message, delivered, created_at
		FROM contact_messages
		WHERE id = ?
	`

	msg, err := scanMessage(r.db.QueryRowContext(ctx, r.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contact message: %w", err)
	}
	return msg, nil
}

// MarkDelivered flags a message as delivered
func (r *ContactRepository) MarkDelivered(ctx context.Context, id string) error {
	query := `
		UPDATE contact_messages
		SET delivered = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), true, id)
	if err != nil {
		return fmt.Errorf("failed to update contact message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}

	return nil
}

// ListCriteria filters [ContactRepository.List].
type ListCriteria struct {
	// Pending restricts the list to undelivered messages.
	Pending bool
	Limit   int
}

// List retrieves messages oldest first
func (r *ContactRepository) List(ctx context.Context, criteria ListCriteria) ([]*models.ContactMessage, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT id, name, email, message, delivered, created_at
		FROM contact_messages
	`)

	args := []any{}
	if criteria.Pending {
		b.WriteString(" WHERE delivered = ?")
		args = append(args, false)
	}

	b.WriteString(" ORDER BY created_at ASC, id ASC")

	if criteria.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, criteria.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ContactMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return messages, nil
}

func (r *ContactRepository) rebind(query string) string {
	return shared.Rebind(r.driver, query)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := row.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &msg.Delivered, &msg.CreatedAt); err != nil {
		return nil, err
	}
	return &msg, nil
}
