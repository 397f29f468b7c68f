package email

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/mail.v2"

	"github.com/aliskhannn/crm-notifier/internal/model"
)

const (
	timeLayout = "Monday, January 2, 2006 at 15:04 (MST)"

	// DefaultTimeout bounds each SMTP read and write.
	DefaultTimeout = 10 * time.Second
)

type Client struct {
	smtpHost string
	smtpPort int
	username string
	password string
	from     string
	timeout  time.Duration
	dial     func(m ...*mail.Message) error
}

func NewClient(smtpHost string, smtpPort int, username, password, from string) *Client {
	c := &Client{
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		username: username,
		password: password,
		from:     from,
		timeout:  DefaultTimeout,
	}

	c.dial = func(m ...*mail.Message) error {
		return c.dialer().DialAndSend(m...)
	}

	return c
}

// WithTimeout sets the SMTP read/write timeout. Values <= 0 keep the default.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

func (c *Client) dialer() *mail.Dialer {
	d := mail.NewDialer(c.smtpHost, c.smtpPort, c.username, c.password)
	d.Timeout = c.timeout
	return d
}

// Send sends a plain text email.
func (c *Client) Send(to, subject, msg string) error {
	message := mail.NewMessage()

	message.SetHeader("From", c.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)

	message.SetBody("text/plain", msg)

	return c.dial(message)
}

// SendReminderToClient notifies the client of an upcoming meeting or call.
func (c *Client) SendReminderToClient(r model.ClientReminder) error {
	if r.ClientEmail == "" {
		return fmt.Errorf("client of reminder %d has no email", r.ReminderID)
	}

	when, err := FormatTime(r.Time, r.UserTimezone)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", nameOr(r.ClientName, "there"))
	fmt.Fprintf(&b, "This is a reminder of your upcoming %s on %s.\n", kindNoun(r.Type), when)

	return c.Send(r.ClientEmail, subject(r.Type), b.String())
}

// SendReminderToUser notifies a staff member or admin of an upcoming meeting or call.
func (c *Client) SendReminderToUser(r model.UserReminder) error {
	if r.UserEmail == "" {
		return fmt.Errorf("user %d has no email", r.UserID)
	}

	when, err := FormatTime(r.Time, r.UserTimezone)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", nameOr(r.UserName, "there"))
	fmt.Fprintf(&b, "You have a %s on %s.\n", kindNoun(r.Type), when)
	if r.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", r.Reason)
	}
	if r.ClientLeadID != nil {
		fmt.Fprintf(&b, "Client lead: #%d\n", *r.ClientLeadID)
	}

	return c.Send(r.UserEmail, subject(r.Type), b.String())
}

// FormatTime renders t in the named IANA zone.
func FormatTime(t time.Time, timezone string) (string, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "", fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	return t.In(loc).Format(timeLayout), nil
}

func subject(kind model.ReminderKind) string {
	return fmt.Sprintf("Reminder: upcoming %s", kindNoun(kind))
}

func kindNoun(kind model.ReminderKind) string {
	if kind == model.ReminderCall {
		return "call"
	}
	return "meeting"
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
