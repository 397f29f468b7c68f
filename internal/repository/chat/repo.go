package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/crm-notifier/internal/model"
)

var ErrNotMember = errors.New("user is not a member of the room")

const listMessagesQuery = `
		SELECT id, room_id, sender_id, content, created_at
		FROM (
		    SELECT id, room_id, sender_id, content, created_at
		    FROM chat_messages
		    WHERE room_id = $1 AND ($2 = 0 OR id < $2)
		    ORDER BY created_at DESC, id DESC
		    LIMIT $3
		) page
		ORDER BY created_at, id;
    `

const markReadQuery = `
		UPDATE chat_room_members
		SET last_read_at = GREATEST(COALESCE(last_read_at, $3), $3)
		WHERE room_id = $1 AND user_id = $2;
    `

const isMemberQuery = `
		SELECT EXISTS (
		    SELECT 1 FROM chat_room_members WHERE room_id = $1 AND user_id = $2
		);
    `

const listRoomsQuery = `
		SELECT r.id, r.name, m.last_read_at,
		       (SELECT COUNT(*) FROM chat_messages msg
		        WHERE msg.room_id = r.id
		          AND msg.sender_id <> m.user_id
		          AND (m.last_read_at IS NULL OR msg.created_at > m.last_read_at)) AS unread
		FROM chat_rooms r
		JOIN chat_room_members m ON m.room_id = r.id
		WHERE m.user_id = $1
		ORDER BY r.name, r.id;
    `

// Repository provides methods to read chat rooms and track read state.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new chat repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// ListMessages returns up to limit messages of a room older than beforeID
// (0 for the latest page), ordered oldest to newest.
func (r *Repository) ListMessages(ctx context.Context, roomID, beforeID int64, limit int) ([]model.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, listMessagesQuery, roomID, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}

		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}

// IsMember reports whether userID belongs to roomID.
func (r *Repository) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var ok bool
	if err := r.db.Master.QueryRowContext(ctx, isMemberQuery, roomID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return ok, nil
}

// MarkRead moves the read marker of userID in roomID forward to at.
func (r *Repository) MarkRead(ctx context.Context, roomID, userID int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, markReadQuery, roomID, userID, at)
	if err != nil {
		return fmt.Errorf("failed to mark room read: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrNotMember
	}

	return nil
}

// ListRooms returns the rooms of userID with their unread counts.
func (r *Repository) ListRooms(ctx context.Context, userID int64) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, listRoomsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var (
			room     model.Room
			lastRead sql.NullTime
		)

		if err := rows.Scan(&room.ID, &room.Name, &lastRead, &room.UnreadCount); err != nil {
			return nil, err
		}

		if lastRead.Valid {
			room.LastReadAt = &lastRead.Time
		}

		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}
