package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job is a unit of outbound work travelling through a rate-limited channel.
type Job struct {
	ID         uuid.UUID       `json:"id"`
	Channel    string          `json:"channel"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Attempt    int             `json:"attempt"`
}

// Telegram job types.
const (
	JobSendMessage  = "send_message"
	JobInviteUser   = "invite_user"
	JobSendDocument = "send_document"
)

// MessagePayload is the payload of a send_message job.
type MessagePayload struct {
	ChatID string `json:"chat_id" validate:"required"`
	Text   string `json:"text" validate:"required,max=4096"`
}

// InvitePayload is the payload of an invite_user job: a one-use invite
// link to GroupChatID is sent to UserChatID.
type InvitePayload struct {
	GroupChatID string `json:"group_chat_id" validate:"required"`
	UserChatID  string `json:"user_chat_id" validate:"required"`
	Text        string `json:"text"`
}

// DocumentPayload is the payload of a send_document job. URL points to an
// already hosted file.
type DocumentPayload struct {
	ChatID  string `json:"chat_id" validate:"required"`
	URL     string `json:"url" validate:"required,url"`
	Caption string `json:"caption" validate:"max=1024"`
}
