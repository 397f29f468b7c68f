package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aliskhannn/crm-notifier/internal/chat/daygroup"
	"github.com/aliskhannn/crm-notifier/internal/model"
	chatrepo "github.com/aliskhannn/crm-notifier/internal/repository/chat"
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/chat/mock.go -package=mocks
type chatRepository interface {
	ListMessages(ctx context.Context, roomID, beforeID int64, limit int) ([]model.ChatMessage, error)
	IsMember(ctx context.Context, roomID, userID int64) (bool, error)
	MarkRead(ctx context.Context, roomID, userID int64, at time.Time) error
	ListRooms(ctx context.Context, userID int64) ([]model.Room, error)
}

var ErrForbidden = errors.New("access to room denied")

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type Service struct {
	repo  chatRepository
	loc   *time.Location
	clock func() time.Time
}

// NewService creates a chat service that renders day groups in loc.
func NewService(repo chatRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{repo: repo, loc: loc, clock: time.Now}
}

// Messages returns a page of room messages, oldest first, annotated with
// day groups and dividers.
func (s *Service) Messages(ctx context.Context, roomID, userID, beforeID int64, limit int) ([]model.ChatMessage, error) {
	if err := s.checkMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}

	msgs, err := s.repo.ListMessages(ctx, roomID, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return daygroup.Annotate(msgs, s.clock(), s.loc), nil
}

// MarkRead moves the read marker of userID in roomID to now.
func (s *Service) MarkRead(ctx context.Context, roomID, userID int64) error {
	err := s.repo.MarkRead(ctx, roomID, userID, s.clock().UTC())
	if errors.Is(err, chatrepo.ErrNotMember) {
		return ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}

	return nil
}

// Rooms lists the rooms of userID with unread counts.
func (s *Service) Rooms(ctx context.Context, userID int64) ([]model.Room, error) {
	rooms, err := s.repo.ListRooms(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	return rooms, nil
}

func (s *Service) checkMember(ctx context.Context, roomID, userID int64) error {
	ok, err := s.repo.IsMember(ctx, roomID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return ErrForbidden
	}

	return nil
}
