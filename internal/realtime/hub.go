// Package realtime pushes library events to the websocket connections of
// the user they belong to.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Hub owns the connected clients, grouped by user id.
type Hub struct {
	clients map[string]map[*Client]struct{}

	// Raw events from redis.
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	log logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					h.drop(c)
				}
			}
			return

		case c := <-h.register:
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}

		case c := <-h.unregister:
			h.drop(c)

		case message := <-h.broadcast:
			userID, ok := recipient(message)
			if !ok {
				h.log.Warn("library-service: realtime dropped event without userId")
				continue
			}
			for c := range h.clients[userID] {
				select {
				case c.send <- message:
				default:
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Broadcast queues a raw event for delivery.
func (h *Hub) Broadcast(ctx context.Context, message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	case <-ctx.Done():
	}
}

func (h *Hub) drop(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	_ = c.conn.Close()
}

func recipient(message []byte) (string, bool) {
	var ev struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(message, &ev); err != nil || ev.UserID == "" {
		return "", false
	}
	return ev.UserID, true
}
