package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/crm-notifier/internal/model"
)

var ErrUnknownJobType = errors.New("unknown job type")

//go:generate mockgen -source=handler.go -destination=../../../mocks/rabbitmq/handlers/telegram/mock.go -package=mocks
type telegramClient interface {
	SendMessage(ctx context.Context, chatID, text string) error
	CreateInviteLink(ctx context.Context, chatID string, memberLimit int) (string, error)
	SendDocument(ctx context.Context, chatID, url, caption string) error
}

// Handler executes Telegram jobs pulled from the outbound channels.
type Handler struct {
	client    telegramClient
	validator *validator.Validate
}

func NewHandler(c telegramClient, v *validator.Validate) *Handler {
	return &Handler{
		client:    c,
		validator: v,
	}
}

// HandleJob decodes the job payload and performs the matching Bot API call.
func (h *Handler) HandleJob(ctx context.Context, job model.Job) error {
	zlog.Logger.Info().
		Str("job_id", job.ID.String()).
		Str("type", job.Type).
		Int("attempt", job.Attempt).
		Msg("handle job")

	switch job.Type {
	case model.JobSendMessage:
		var p model.MessagePayload
		if err := h.decode(job, &p); err != nil {
			return err
		}

		return h.client.SendMessage(ctx, p.ChatID, p.Text)

	case model.JobInviteUser:
		var p model.InvitePayload
		if err := h.decode(job, &p); err != nil {
			return err
		}

		link, err := h.client.CreateInviteLink(ctx, p.GroupChatID, 1)
		if err != nil {
			return fmt.Errorf("create invite link: %w", err)
		}

		text := link
		if p.Text != "" {
			text = p.Text + "\n" + link
		}

		return h.client.SendMessage(ctx, p.UserChatID, text)

	case model.JobSendDocument:
		var p model.DocumentPayload
		if err := h.decode(job, &p); err != nil {
			return err
		}

		return h.client.SendDocument(ctx, p.ChatID, p.URL, p.Caption)

	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}
}

func (h *Handler) decode(job model.Job, dst any) error {
	if err := json.Unmarshal(job.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", job.Type, err)
	}

	if err := h.validator.Struct(dst); err != nil {
		return fmt.Errorf("invalid %s payload: %w", job.Type, err)
	}

	return nil
}
