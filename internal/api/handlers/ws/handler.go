package ws

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/crm-notifier/internal/api/respond"
)

// hub defines what the Handler needs from the websocket hub.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/ws/mock.go -package=mocks
type hub interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID int64) error
}

var errInvalidUser = errors.New("invalid user_id")

// Handler upgrades staff connections for in-app reminder pushes.
type Handler struct {
	hub hub
}

// NewHandler creates a new Handler instance.
func NewHandler(h hub) *Handler {
	return &Handler{hub: h}
}

// Connect handles HTTP GET requests that open a websocket for user_id.
//
// After the upgrade the connection receives every reminder event pushed to
// that user until either side closes it.
func (h *Handler) Connect(c *ginext.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		respond.Fail(c.Writer, http.StatusBadRequest, errInvalidUser)
		return
	}

	if err := h.hub.ServeWS(c.Writer, c.Request, userID); err != nil {
		// the upgrader already wrote the error response
		zlog.Logger.Warn().Err(err).Int64("user_id", userID).Msg("websocket upgrade failed")
	}
}
