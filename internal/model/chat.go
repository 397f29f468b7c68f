package model

import "time"

// ChatMessage is a message of a chat room. DayGroup and ShowDayDivider
// are nil unless the server already computed them.
type ChatMessage struct {
	ID             int64     `json:"id"`
	RoomID         int64     `json:"room_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	DayGroup       *string   `json:"day_group,omitempty"`
	ShowDayDivider *bool     `json:"show_day_divider,omitempty"`
}

// Room is a chat room as seen by one member.
type Room struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	UnreadCount int        `json:"unread_count"`
	LastReadAt  *time.Time `json:"last_read_at,omitempty"`
}
