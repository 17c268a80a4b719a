package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bierdeckel/bierdeckel-api/events"
)

func newHubServer(t *testing.T, h *Hub, restaurantID string) *httptest.Server {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Register(conn, restaurantID, "staff")
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.Unregister(conn)
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNotifyReachesOnlyTheEventsRestaurant(t *testing.T) {
	h := New()
	conn := dial(t, newHubServer(t, h, "r-1"))

	require.Eventually(t, func() bool { return h.ClientCount("r-1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, h.Notify(context.Background(), events.New(events.ServiceRequested, "r-2", "other")))
	require.NoError(t, h.Notify(context.Background(), events.New(events.ServiceRequested, "r-1", "mine")))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got events.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, events.ServiceRequested, got.Type)
	assert.Equal(t, "r-1", got.RestaurantID)
	assert.Equal(t, "mine", got.Data)
}

func TestUnregisterOnDisconnect(t *testing.T) {
	h := New()
	conn := dial(t, newHubServer(t, h, "r-1"))
	require.Eventually(t, func() bool { return h.ClientCount("r-1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return h.ClientCount("r-1") == 0 }, time.Second, 10*time.Millisecond)
}
