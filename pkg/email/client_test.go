package email

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/mail.v2"

	"github.com/aliskhannn/crm-notifier/internal/model"
)

func newTestClient(sent *[]*mail.Message) *Client {
	c := NewClient("localhost", 25, "", "", "crm@example.com")
	c.dial = func(m ...*mail.Message) error {
		*sent = append(*sent, m...)
		return nil
	}
	return c
}

func body(t *testing.T, m *mail.Message) string {
	t.Helper()

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	return buf.String()
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

	s, err := FormatTime(at, "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Monday, June 10, 2024 at 17:00 (CEST)", s)

	_, err = FormatTime(at, "Mars/Olympus")
	assert.Error(t, err)
}

func TestClient_SendReminderToClient(t *testing.T) {
	var sent []*mail.Message
	c := newTestClient(&sent)

	err := c.SendReminderToClient(model.ClientReminder{
		ReminderID:   1,
		ClientEmail:  "client@example.com",
		ClientName:   "Ann",
		Time:         time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC),
		UserTimezone: "UTC",
		Type:         model.ReminderMeeting,
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)

	assert.Equal(t, []string{"client@example.com"}, sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Reminder: upcoming meeting"}, sent[0].GetHeader("Subject"))
	assert.Contains(t, body(t, sent[0]), "Hello Ann")
}

func TestClient_SendReminderToUser(t *testing.T) {
	var sent []*mail.Message
	c := newTestClient(&sent)
	lead := int64(77)

	err := c.SendReminderToUser(model.UserReminder{
		UserID:       3,
		UserEmail:    "staff@example.com",
		UserName:     "Bob",
		Time:         time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC),
		UserTimezone: "UTC",
		Type:         model.ReminderCall,
		ClientLeadID: &lead,
		Reason:       "contract",
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)

	b := body(t, sent[0])
	assert.Contains(t, b, "Client lead: #77")
	assert.Contains(t, b, "Reason: contract")
	assert.Equal(t, []string{"Reminder: upcoming call"}, sent[0].GetHeader("Subject"))
}

func TestClient_MissingEmail(t *testing.T) {
	var sent []*mail.Message
	c := newTestClient(&sent)

	assert.Error(t, c.SendReminderToClient(model.ClientReminder{UserTimezone: "UTC"}))
	assert.Error(t, c.SendReminderToUser(model.UserReminder{UserTimezone: "UTC"}))
	assert.Empty(t, sent)
}

func TestClient_DialError(t *testing.T) {
	c := NewClient("localhost", 25, "", "", "crm@example.com")
	dialErr := errors.New("connection refused")
	c.dial = func(...*mail.Message) error { return dialErr }

	err := c.Send("a@example.com", "s", "b")
	assert.ErrorIs(t, err, dialErr)
}

func TestClient_DialerTimeout(t *testing.T) {
	c := NewClient("localhost", 25, "", "", "crm@example.com")
	assert.Equal(t, DefaultTimeout, c.dialer().Timeout)

	c.WithTimeout(3 * time.Second)
	assert.Equal(t, 3*time.Second, c.dialer().Timeout)

	// ноль не отключает таймаут
	c.WithTimeout(0)
	assert.Equal(t, 3*time.Second, c.dialer().Timeout)
}
