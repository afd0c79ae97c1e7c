package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"library-service/internal/events"
	"library-service/internal/middleware"
	"library-service/internal/result"
)

// Server upgrades authenticated requests to websocket connections.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewServer accepts any origin when allowedOrigin is "*" or empty.
func NewServer(hub *Hub, allowedOrigin string, log logrus.FieldLogger) *Server {
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		log: log,
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		result.WriteError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("library-service: ws upgrade")
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
	}

	// The welcome is queued before join: once the hub owns the client it may
	// close send at any time.
	welcome := map[string]any{
		"type":   "welcome",
		"userId": userID,
		"now":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.Marshal(welcome); err == nil {
		client.send <- b
	}

	if !s.hub.join(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// RunSubscriber relays the redis broadcast channel into the hub until ctx
// is cancelled.
func RunSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	sub := rdb.Subscribe(ctx, events.Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			hub.Broadcast(ctx, []byte(msg.Payload))
		}
	}
}
