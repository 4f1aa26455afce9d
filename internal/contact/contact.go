// Package contact validates contact form submissions and delivers them to a [Notifier].
//
// Valid submissions are written to an [Outbox] first and flagged once delivered, so a
// failed delivery can be retried later with [Service.RetryPending].
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/shared"
)

// MinMessageLength is the minimum message length in characters.
const MinMessageLength = 10

// ConfirmationDelay is how long views show the "sent" confirmation before the empty form returns.
const ConfirmationDelay = 3 * time.Second

// Field names used as [FieldErrors] keys and form input names.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)

// Form is the raw user input.
type Form struct {
	Name    string
	Email   string
	Message string
}

// FieldErrors maps a field name to its first failing rule.
type FieldErrors map[string]string

// ValidationError is returned by [Service.Submit] for invalid input.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range []string{FieldName, FieldEmail, FieldMessage} {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, f+": "+msg)
		}
	}
	return "invalid contact form: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return shared.ErrInvalidInput
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Message: strings.TrimSpace(f.Message),
	}
}

// Validate checks the form and returns nil when it is valid.
//
// name is required, email is required and must be a bare address, and message is
// required with at least [MinMessageLength] characters.
func (f Form) Validate() FieldErrors {
	f = f.Normalize()
	errs := FieldErrors{}

	if f.Name == "" {
		errs[FieldName] = "Name is required."
	}

	switch {
	case f.Email == "":
		errs[FieldEmail] = "Email is required."
	case !validEmail(f.Email):
		errs[FieldEmail] = "Enter a valid email address."
	}

	switch {
	case f.Message == "":
		errs[FieldMessage] = "Message is required."
	case utf8.RuneCountInString(f.Message) < MinMessageLength:
		errs[FieldMessage] = fmt.Sprintf("Message must be at least %d characters.", MinMessageLength)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1
}

// Outbox records submissions. [repositories.ContactRepository] implements it.
type Outbox interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	MarkDelivered(ctx context.Context, id string) error
	List(ctx context.Context, criteria repositories.ListCriteria) ([]*models.ContactMessage, error)
}

// Service accepts contact submissions.
type Service struct {
	notifier Notifier
	outbox   Outbox
	logger   *log.Logger
}

// NewService creates a [Service]. outbox may be nil, in which case nothing is recorded.
func NewService(notifier Notifier, outbox Outbox, logger *log.Logger) *Service {
	if logger == nil {
		logger = shared.NewLogger(os.Stderr)
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Service{notifier: notifier, outbox: outbox, logger: logger}
}

// Submit validates form, records it and delivers it.
//
// Invalid input returns a [*ValidationError]. A delivery failure returns an error
// wrapping [shared.ErrDelivery]; the message stays pending in the outbox.
func (s *Service) Submit(ctx context.Context, form Form) (*models.ContactMessage, error) {
	if errs := form.Validate(); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}
	form = form.Normalize()

	msg := &models.ContactMessage{Name: form.Name, Email: form.Email, Message: form.Message}
	if s.outbox != nil {
		if err := s.outbox.Create(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to record contact message: %w", err)
		}
	}

	if err := s.deliver(ctx, msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// RetryPending redelivers every undelivered message in the outbox.
//
// It stops at the first delivery failure and reports how many were delivered before it.
func (s *Service) RetryPending(ctx context.Context) (int, error) {
	if s.outbox == nil {
		return 0, nil
	}

	pending, err := s.outbox.List(ctx, repositories.ListCriteria{Pending: true})
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, msg := range pending {
		if err := s.deliver(ctx, msg); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}

func (s *Service) deliver(ctx context.Context, msg *models.ContactMessage) error {
	if err := s.notifier.Notify(ctx, *msg); err != nil {
		s.logger.Error("contact delivery failed", "id", msg.ID, "email", msg.Email, "error", err)
		if errors.Is(err, shared.ErrDelivery) {
			return err
		}
		return fmt.Errorf("%w: %w", shared.ErrDelivery, err)
	}

	msg.Delivered = true
	if s.outbox != nil && msg.ID != "" {
		if err := s.outbox.MarkDelivered(ctx, msg.ID); err != nil {
			s.logger.Warn("delivered message could not be flagged", "id", msg.ID, "error", err)
		}
	}
	return nil
}
