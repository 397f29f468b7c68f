package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/crm-notifier/internal/api/respond"
	"github.com/aliskhannn/crm-notifier/internal/model"
	chatsvc "github.com/aliskhannn/crm-notifier/internal/service/chat"
)

// chatService defines what the Handler needs from the chat service.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/chat/mock.go -package=mocks
type chatService interface {
	Messages(ctx context.Context, roomID, userID, beforeID int64, limit int) ([]model.ChatMessage, error)
	MarkRead(ctx context.Context, roomID, userID int64) error
	Rooms(ctx context.Context, userID int64) ([]model.Room, error)
}

// Handler handles HTTP requests for chat rooms and their history.
type Handler struct {
	service chatService
}

// NewHandler creates a new Handler instance.
func NewHandler(s chatService) *Handler {
	return &Handler{service: s}
}

// Rooms handles HTTP GET requests listing the rooms of a user.
//
// Each room carries the number of messages the user has not read yet.
func (h *Handler) Rooms(c *ginext.Context) {
	userID, err := queryInt(c, "user_id", true)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, err)
		return
	}

	rooms, err := h.service.Rooms(c.Request.Context(), userID)
	if err != nil {
		zlog.Logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list rooms")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, rooms)
}

// Messages handles HTTP GET requests for a page of room history.
//
// Messages are returned oldest first with day_group and show_day_divider
// already set. Older pages are fetched by passing the id of the first
// message of the current page as "before".
func (h *Handler) Messages(c *ginext.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid room id"))
		return
	}

	userID, err := queryInt(c, "user_id", true)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, err)
		return
	}

	beforeID, err := queryInt(c, "before", false)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, err)
		return
	}

	limit, err := queryInt(c, "limit", false)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, err)
		return
	}

	msgs, err := h.service.Messages(c.Request.Context(), roomID, userID, beforeID, int(limit))
	if err != nil {
		h.fail(c, err, roomID, userID)
		return
	}

	respond.OK(c.Writer, msgs)
}

// MarkRead handles HTTP POST requests marking a room read for a user.
func (h *Handler) MarkRead(c *ginext.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid room id"))
		return
	}

	userID, err := queryInt(c, "user_id", true)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), roomID, userID); err != nil {
		h.fail(c, err, roomID, userID)
		return
	}

	respond.OK(c.Writer, "read")
}

func (h *Handler) fail(c *ginext.Context, err error, roomID, userID int64) {
	if errors.Is(err, chatsvc.ErrForbidden) {
		respond.Fail(c.Writer, http.StatusForbidden, err)
		return
	}

	zlog.Logger.Error().Err(err).Int64("room_id", roomID).Int64("user_id", userID).Msg("chat request failed")
	respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
}

// queryInt parses an integer query parameter, 0 when it is absent and optional.
func queryInt(c *ginext.Context, name string, required bool) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		if required {
			return 0, fmt.Errorf("%s is required", name)
		}
		return 0, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return v, nil
}
