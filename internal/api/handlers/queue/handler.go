package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/crm-notifier/internal/api/respond"
	"github.com/aliskhannn/crm-notifier/internal/model"
	"github.com/aliskhannn/crm-notifier/internal/queue"
)

// queueManager defines what the Handler needs from the outbound queues.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/queue/mock.go -package=mocks
type queueManager interface {
	Enqueue(ctx context.Context, channel, jobType string, payload any) (uuid.UUID, error)
	Configs() []queue.Config
}

// Handler handles HTTP requests to the outbound Telegram queues.
type Handler struct {
	manager   queueManager
	validator *validator.Validate
}

// NewHandler creates a new Handler instance.
func NewHandler(m queueManager, v *validator.Validate) *Handler {
	return &Handler{manager: m, validator: v}
}

// EnqueueRequest represents the JSON body of an enqueue request.
type EnqueueRequest struct {
	Type    string          `json:"type" validate:"required,oneof=send_message invite_user send_document"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// EnqueueResponse is returned once the job is accepted by the broker.
type EnqueueResponse struct {
	ID      uuid.UUID `json:"id"`
	Channel string    `json:"channel"`
}

// Enqueue handles HTTP POST requests that submit a job to a channel.
//
// The payload is validated against the job type before it is published.
// The job runs later, at the pace of the channel limiter.
func (h *Handler) Enqueue(c *ginext.Context) {
	channel := c.Param("channel")

	var req EnqueueRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	payload, err := h.decodePayload(req)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("type", req.Type).Msg("invalid job payload")
		respond.Fail(c.Writer, http.StatusBadRequest, err)
		return
	}

	id, err := h.manager.Enqueue(c.Request.Context(), channel, req.Type, payload)
	if err != nil {
		switch {
		case errors.Is(err, queue.ErrUnknownChannel):
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("unknown channel %s", channel))
		case errors.Is(err, queue.ErrJobTypeRejected):
			respond.Fail(c.Writer, http.StatusUnprocessableEntity, fmt.Errorf("channel %s does not accept %s jobs", channel, req.Type))
		default:
			zlog.Logger.Error().Err(err).Str("channel", channel).Msg("failed to enqueue job")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		}
		return
	}

	respond.Accepted(c.Writer, EnqueueResponse{ID: id, Channel: channel})
}

// List handles HTTP GET requests that list channels and their limits.
func (h *Handler) List(c *ginext.Context) {
	respond.OK(c.Writer, h.manager.Configs())
}

func (h *Handler) decodePayload(req EnqueueRequest) (any, error) {
	var payload any

	switch req.Type {
	case model.JobSendMessage:
		payload = &model.MessagePayload{}
	case model.JobInviteUser:
		payload = &model.InvitePayload{}
	case model.JobSendDocument:
		payload = &model.DocumentPayload{}
	default:
		return nil, fmt.Errorf("unknown job type %s", req.Type)
	}

	if err := json.Unmarshal(req.Payload, payload); err != nil {
		return nil, fmt.Errorf("invalid payload")
	}

	if err := h.validator.Struct(payload); err != nil {
		return nil, fmt.Errorf("validation error: %s", err.Error())
	}

	return payload, nil
}
