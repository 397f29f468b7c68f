package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/aliskhannn/crm-notifier/internal/api/handlers/chat"
	"github.com/aliskhannn/crm-notifier/internal/api/handlers/queue"
	"github.com/aliskhannn/crm-notifier/internal/api/handlers/reminder"
	"github.com/aliskhannn/crm-notifier/internal/api/handlers/ws"
	"github.com/aliskhannn/crm-notifier/internal/metrics"
	chatmocks "github.com/aliskhannn/crm-notifier/internal/mocks/api/handlers/chat"
	queuemocks "github.com/aliskhannn/crm-notifier/internal/mocks/api/handlers/queue"
	remindermocks "github.com/aliskhannn/crm-notifier/internal/mocks/api/handlers/reminder"
	wsmocks "github.com/aliskhannn/crm-notifier/internal/mocks/api/handlers/ws"
	queuepkg "github.com/aliskhannn/crm-notifier/internal/queue"
	"github.com/aliskhannn/crm-notifier/internal/scanner"
)

func TestRouter_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	qm := queuemocks.NewMockqueueManager(ctrl)
	rs := remindermocks.NewMockreminderScanner(ctrl)
	cs := chatmocks.NewMockchatService(ctrl)
	hub := wsmocks.NewMockhub(ctrl)

	qm.EXPECT().Configs().Return(queuepkg.DefaultConfigs())
	rs.EXPECT().Tick(gomock.Any()).Return(scanner.TickResult{}, nil)
	cs.EXPECT().Rooms(gomock.Any(), int64(1)).Return(nil, nil)

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	r := New(Handlers{
		Queue:    queue.NewHandler(qm, nil),
		Reminder: reminder.NewHandler(rs),
		Chat:     chat.NewHandler(cs),
		WS:       ws.NewHandler(hub),
	}, reg)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{method: http.MethodGet, target: "/api/queues", want: http.StatusOK},
		{method: http.MethodPost, target: "/api/reminders/scan", want: http.StatusOK},
		{method: http.MethodGet, target: "/api/chat/rooms?user_id=1", want: http.StatusOK},
		{method: http.MethodGet, target: "/metrics", want: http.StatusOK},
		{method: http.MethodGet, target: "/api/unknown", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))
		assert.Equal(t, tt.want, w.Code, tt.target)
	}
}
