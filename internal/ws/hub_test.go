package ws

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = hub.ServeWS(w, r, id)
	}))
}

func dial(t *testing.T, srv *httptest.Server, userID int) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user_id=" + strconv.Itoa(userID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return conn
}

func TestHub_SendToUser(t *testing.T) {
	hub := NewHub()
	srv := newServer(t, hub)
	defer srv.Close()

	conn := dial(t, srv, 7)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count(7) == 1 }, time.Second, 5*time.Millisecond)

	err := hub.SendToUser(7, map[string]any{"type": "reminder", "reminder_id": 1})
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"reminder","reminder_id":1}`, string(data))
}

func TestHub_SendToOfflineUser(t *testing.T) {
	hub := NewHub()

	err := hub.SendToUser(8, map[string]string{"type": "reminder"})
	assert.ErrorIs(t, err, ErrUserOffline)
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := NewHub()
	srv := newServer(t, hub)
	defer srv.Close()

	first := dial(t, srv, 7)
	second := dial(t, srv, 7)
	defer second.Close()

	require.Eventually(t, func() bool { return hub.Count(7) == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, first.Close())
	assert.Eventually(t, func() bool { return hub.Count(7) == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Count(7))
}
