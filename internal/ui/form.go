package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyrx/internal/contact"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Contact form fields, in focus order.
const (
	fieldName = iota
	fieldEmail
	fieldMessage
	fieldCount
)

type contactState struct {
	name    textinput.Model
	email   textinput.Model
	message textarea.Model
	focus   int
	editing bool
	errors  contact.FieldErrors
	err     string
	sending bool
	sent    string
	seq     uint64
}

func newContactState() contactState {
	name := textinput.New()
	name.Prompt = "Name    > "
	name.CharLimit = 100

	email := textinput.New()
	email.Prompt = "Email   > "
	email.CharLimit = 254

	message := textarea.New()
	message.Placeholder = fmt.Sprintf("At least %d characters", contact.MinMessageLength)
	message.ShowLineNumbers = false
	message.SetHeight(5)

	return contactState{name: name, email: email, message: message}
}

func (c *contactState) values() contact.Form {
	return contact.Form{Name: c.name.Value(), Email: c.email.Value(), Message: c.message.Value()}
}

func (c *contactState) edit() tea.Cmd {
	if c.sent != "" {
		return nil
	}
	c.editing = true
	c.name.Blur()
	c.email.Blur()
	c.message.Blur()
	switch c.focus {
	case fieldEmail:
		return c.email.Focus()
	case fieldMessage:
		return c.message.Focus()
	}
	return c.name.Focus()
}

func (c *contactState) blur() {
	c.editing = false
	c.name.Blur()
	c.email.Blur()
	c.message.Blur()
}

func (c *contactState) cycle(delta int) tea.Cmd {
	c.focus = (c.focus + delta + fieldCount) % fieldCount
	return c.edit()
}

func (c *contactState) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch c.focus {
	case fieldName:
		c.name, cmd = c.name.Update(msg)
	case fieldEmail:
		c.email, cmd = c.email.Update(msg)
	case fieldMessage:
		c.message, cmd = c.message.Update(msg)
	}
	return cmd
}

func (c *contactState) reset() {
	c.name.Reset()
	c.email.Reset()
	c.message.Reset()
	c.focus = fieldName
	c.errors = nil
	c.err = ""
}

func (c *contactState) resize(width int) {
	c.name.Width = max(width-14, 10)
	c.email.Width = max(width-14, 10)
	c.message.SetWidth(max(width-4, 20))
}

// submitContact validates the form inline and, when valid, sends it through the contact service.
func (m *Model) submitContact() tea.Cmd {
	c := &m.form
	if c.sending || c.sent != "" {
		return nil
	}

	form := c.values()
	c.err = ""
	if errs := form.Validate(); errs != nil {
		c.errors = errs
		return nil
	}
	c.errors = nil

	seq := m.nextSeq()
	c.seq = seq
	c.sending = true
	svc, ctx := m.contact, m.ctx
	return func() tea.Msg {
		msg, err := svc.Submit(ctx, form)
		return contactSentMsg(seq, msg, err)
	}
}

// contactSent shows the confirmation and schedules the form to return after
// [contact.ConfirmationDelay].
func (m *Model) contactSent(msg Msg) tea.Cmd {
	c := &m.form
	if c.seq == 0 || msg.seq != c.seq {
		m.logger.Debug("discarding stale contact result", "seq", msg.seq, "want", c.seq)
		return nil
	}
	c.sending = false

	p := msg.data.(contactPayload)
	var verr *contact.ValidationError
	switch {
	case errors.As(p.err, &verr):
		c.errors = verr.Fields
		return nil
	case p.err != nil:
		c.err = shared.MsgSendFailed
		return nil
	}

	c.reset()
	c.blur()
	c.sent = p.msg.Email
	return tea.Tick(contact.ConfirmationDelay, func(time.Time) tea.Msg {
		return contactResetMsg(msg.seq)
	})
}

func (m *Model) contactReset(msg Msg) {
	c := &m.form
	if msg.seq != c.seq || c.sent == "" {
		return
	}
	c.seq = 0
	c.sent = ""
	if m.view == ContactView {
		c.edit()
	}
}

func (m *Model) handleContactInputKeys(msg tea.KeyMsg) tea.Cmd {
	c := &m.form
	switch {
	case key.Matches(msg, m.keys.back):
		c.blur()
		return nil
	case key.Matches(msg, m.keys.send):
		return m.submitContact()
	case key.Matches(msg, m.keys.next):
		return c.cycle(1)
	case key.Matches(msg, m.keys.prev):
		return c.cycle(-1)
	case key.Matches(msg, m.keys.enter) && c.focus != fieldMessage:
		return c.cycle(1)
	}
	return c.update(msg)
}

func (m *Model) handleContactKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.send):
		return m.submitContact()
	case key.Matches(msg, m.keys.edit), key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.next):
		return m.form.edit()
	case key.Matches(msg, m.keys.back):
		return m.navigate(HomeView)
	}
	return nil
}

func (m *Model) renderContact() string {
	c := &m.form
	var b strings.Builder
	b.WriteString(styles.title.Render("Contact"))
	b.WriteString("\n")

	if c.sent != "" {
		b.WriteString(styles.ok.Render(fmt.Sprintf("Sent by %s!", c.sent)))
		return b.String()
	}

	field := func(view, name string) {
		b.WriteString(view)
		b.WriteString("\n")
		if msg, ok := c.errors[name]; ok {
			b.WriteString(styles.err.Render("  " + msg))
			b.WriteString("\n")
		}
	}
	field(c.name.View(), contact.FieldName)
	field(c.email.View(), contact.FieldEmail)
	b.WriteString("Message\n")
	field(c.message.View(), contact.FieldMessage)

	switch {
	case c.sending:
		b.WriteString(styles.warn.Render("Sending..."))
	case c.err != "":
		b.WriteString(styles.err.Render(c.err))
	}
	return b.String()
}
