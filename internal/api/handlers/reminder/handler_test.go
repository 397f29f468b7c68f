package reminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocks "github.com/aliskhannn/crm-notifier/internal/mocks/api/handlers/reminder"
	"github.com/aliskhannn/crm-notifier/internal/scanner"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/reminders/scan", nil)
	return c, w
}

func TestHandler_Scan_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockScanner := mocks.NewMockreminderScanner(ctrl)
	handler := NewHandler(mockScanner)

	c, w := newContext()

	mockScanner.EXPECT().Tick(gomock.Any()).Return(scanner.TickResult{Owner: "host/1", Claimed: 3, Notified: 2, Released: 1}, nil)

	handler.Scan(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	var body struct {
		Result scanner.TickResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Result.Claimed)
	assert.Equal(t, 2, body.Result.Notified)
}

func TestHandler_Scan_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "in progress", err: scanner.ErrTickInProgress, want: http.StatusConflict},
		{name: "query failure", err: fmt.Errorf("%w: conn refused", scanner.ErrQueryFailure), want: http.StatusServiceUnavailable},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockScanner := mocks.NewMockreminderScanner(ctrl)
			handler := NewHandler(mockScanner)

			c, w := newContext()

			mockScanner.EXPECT().Tick(gomock.Any()).Return(scanner.TickResult{}, tt.err)

			handler.Scan(c)

			assert.Equal(t, tt.want, w.Result().StatusCode)
		})
	}
}
