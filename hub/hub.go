package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

const writeWait = 5 * time.Second

type client struct {
	restaurantID string
	role         string
}

// Hub keeps the staff websocket connections of every restaurant and pushes
// events to the connections of the event's restaurant.
type Hub struct {
	clients map[*websocket.Conn]client
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]client)}
}

func (h *Hub) Register(conn *websocket.Conn, restaurantID, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = client{restaurantID: restaurantID, role: role}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.unregisterLocked(conn)
}

func (h *Hub) unregisterLocked(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

// ClientCount returns the number of connections listening to a restaurant.
func (h *Hub) ClientCount(restaurantID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	n := 0
	for _, cl := range h.clients {
		if cl.restaurantID == restaurantID {
			n++
		}
	}
	return n
}

// Notify implements events.Notifier. Connections that fail to accept the
// message are dropped.
func (h *Hub) Notify(_ context.Context, ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, cl := range h.clients {
		if cl.restaurantID != ev.RestaurantID {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"event":         ev.Type,
				"restaurant_id": cl.restaurantID,
				"role":          cl.role,
			}).Errorf("dropping staff socket: %v", err)
			h.unregisterLocked(conn)
		}
	}
	return nil
}
