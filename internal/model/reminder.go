package model

import "time"

// ReminderKind distinguishes meeting reminders from call reminders.
type ReminderKind string

const (
	ReminderMeeting ReminderKind = "MEETING"
	ReminderCall    ReminderKind = "CALL"
)

// ReminderKinds lists every kind the scanner claims on a tick.
var ReminderKinds = []ReminderKind{ReminderMeeting, ReminderCall}

// Contact is a resolved notification recipient.
type Contact struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	TelegramChatID string `json:"telegram_chat_id,omitempty"`
}

// Reminder represents a meeting or call reminder attached to a client lead.
type Reminder struct {
	ID           int64        `json:"id"`
	Kind         ReminderKind `json:"kind"`
	Time         time.Time    `json:"time"`          // instant the meeting or call happens
	Notified     bool         `json:"notified"`      // flipped once, after dispatch
	Reason       string       `json:"reason"`        // free text shown in the notification
	IsAdmin      bool         `json:"is_admin"`      // meeting owned by an admin, not the assigned staff member
	UserTimezone string       `json:"user_timezone"` // display timezone, may be empty
	ClientLeadID *int64       `json:"client_lead_id,omitempty"`

	Client     *Contact `json:"client,omitempty"`
	AssignedTo *Contact `json:"assigned_to,omitempty"`
	Admin      *Contact `json:"admin,omitempty"`
}

// ClientReminder is the notification sent to the client of a lead.
type ClientReminder struct {
	ReminderID   int64
	ClientEmail  string
	ClientName   string
	Time         time.Time
	UserTimezone string
	Type         ReminderKind
}

// UserReminder is the notification sent to a staff member or admin.
type UserReminder struct {
	ReminderID     int64
	UserID         int64
	UserEmail      string
	UserName       string
	TelegramChatID string
	Time           time.Time
	UserTimezone   string
	Type           ReminderKind
	ClientLeadID   *int64
	Reason         string
}

// ReminderEvent is pushed to connected staff clients when a reminder fires.
type ReminderEvent struct {
	Type         string       `json:"type"`
	ReminderID   int64        `json:"reminder_id"`
	Kind         ReminderKind `json:"kind"`
	Time         time.Time    `json:"time"`
	Timezone     string       `json:"timezone"`
	Reason       string       `json:"reason,omitempty"`
	ClientLeadID *int64       `json:"client_lead_id,omitempty"`
}
