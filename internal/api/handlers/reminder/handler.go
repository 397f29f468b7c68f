package reminder

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/crm-notifier/internal/api/respond"
	"github.com/aliskhannn/crm-notifier/internal/scanner"
)

// reminderScanner defines what the Handler needs from the reminder scanner.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/reminder/mock.go -package=mocks
type reminderScanner interface {
	Tick(ctx context.Context) (scanner.TickResult, error)
}

// Handler exposes the reminder scanner over HTTP.
type Handler struct {
	scanner reminderScanner
}

// NewHandler creates a new Handler instance.
func NewHandler(s reminderScanner) *Handler {
	return &Handler{scanner: s}
}

// Scan handles HTTP POST requests that run one scanner tick immediately.
//
// It responds with the tick summary. A tick already running on this
// instance yields 409 and a failed due-reminder query yields 503, so the
// caller can retry later in both cases.
func (h *Handler) Scan(c *ginext.Context) {
	res, err := h.scanner.Tick(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, scanner.ErrTickInProgress):
			respond.Fail(c.Writer, http.StatusConflict, err)
		case errors.Is(err, scanner.ErrQueryFailure):
			zlog.Logger.Error().Err(err).Msg("manual reminder scan failed")
			respond.Fail(c.Writer, http.StatusServiceUnavailable, fmt.Errorf("reminder store unavailable"))
		default:
			zlog.Logger.Error().Err(err).Msg("manual reminder scan failed")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		}
		return
	}

	respond.OK(c.Writer, res)
}
