package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers a contact message somewhere a human will read it.
type Notifier interface {
	Notify(ctx context.Context, msg models.ContactMessage) error
}

// LogNotifier writes messages to a logger.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg models.ContactMessage) error {
	n.logger.Info("contact message", "name", msg.Name, "email", msg.Email, "message", msg.Message)
	return nil
}

// Sender is the part of [tgbotapi.BotAPI] the Telegram notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier forwards messages to a Telegram chat through a bot.
type TelegramNotifier struct {
	sender Sender
	chatID int64
}

// NewTelegramNotifier creates a notifier posting to chatID.
func NewTelegramNotifier(sender Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID}
}

// NewTelegramBot authenticates a bot with token.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: telegram token not set (%s)", shared.ErrMissingConfig, shared.EnvTelegramToken)
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("%w: telegram: %w", shared.ErrServiceUnavailable, err)
	}
	return bot, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, msg models.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := tgbotapi.NewMessage(n.chatID, FormatTelegram(msg))
	out.DisableWebPagePreview = true
	if _, err := n.sender.Send(out); err != nil {
		return fmt.Errorf("%w: telegram: %w", shared.ErrDelivery, err)
	}
	return nil
}

// FormatTelegram renders msg as the plain text posted to Telegram.
func FormatTelegram(msg models.ContactMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✉️ New contact message\n")
	fmt.Fprintf(&b, "From: %s <%s>\n", msg.Name, msg.Email)
	if !msg.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "At: %s\n", msg.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	b.WriteString("\n")
	b.WriteString(msg.Message)
	return b.String()
}

// MultiNotifier delivers to every notifier in order and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, msg models.ContactMessage) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewNotifierFromConfig always logs, and also posts to Telegram when a token and chat id are configured.
//
// The bot is authenticated on the first delivery, not here, so commands that never send a
// message do not depend on Telegram being reachable.
func NewNotifierFromConfig(cfg shared.ContactConfig, logger *log.Logger) Notifier {
	logNotifier := NewLogNotifier(logger)
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return logNotifier
	}

	sender := newLazySender(cfg.TelegramToken, dialTelegram)
	return MultiNotifier{logNotifier, NewTelegramNotifier(sender, cfg.TelegramChatID)}
}

func dialTelegram(token string) (Sender, error) {
	bot, err := NewTelegramBot(token)
	if err != nil {
		return nil, err
	}
	return bot, nil
}

// lazySender connects on the first Send. A failed connect is retried on the next one.
type lazySender struct {
	mu     sync.Mutex
	token  string
	dial   func(token string) (Sender, error)
	sender Sender
}

func newLazySender(token string, dial func(string) (Sender, error)) *lazySender {
	return &lazySender{token: token, dial: dial}
}

func (l *lazySender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	l.mu.Lock()
	if l.sender == nil {
		sender, err := l.dial(l.token)
		if err != nil {
			l.mu.Unlock()
			return tgbotapi.Message{}, err
		}
		l.sender = sender
	}
	sender := l.sender
	l.mu.Unlock()

	return sender.Send(c)
}
