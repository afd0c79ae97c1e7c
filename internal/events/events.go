// Package events publishes library changes on the redis broadcast channel
// consumed by the realtime hub.
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Channel is the redis pub/sub channel shared with the realtime hub.
const Channel = "broadcast"

const (
	PlaylistCreated      = "playlist.created"
	PlaylistUpdated      = "playlist.updated"
	PlaylistDeleted      = "playlist.deleted"
	PlaylistVideoAdded   = "playlist.video_added"
	PlaylistVideoRemoved = "playlist.video_removed"
	VideoCreated         = "video.created"
	VideoDeleted         = "video.deleted"
	HistoryAdded         = "history.added"
	HistoryRemoved       = "history.removed"
	HistoryCleared       = "history.cleared"
	LikeAdded            = "like.added"
	LikeRemoved          = "like.removed"
)

// Event is the wire format. UserID decides which websocket clients see it.
type Event struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	Payload any    `json:"payload"`
}

// Publisher is best effort: failures are logged, never returned.
type Publisher interface {
	Publish(ctx context.Context, userID, eventType string, payload any)
}

type RedisPublisher struct {
	rdb *redis.Client
	log logrus.FieldLogger
}

// NewRedisPublisher returns a publisher; a nil client makes it a no-op.
func NewRedisPublisher(rdb *redis.Client, log logrus.FieldLogger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, userID, eventType string, payload any) {
	if p == nil || p.rdb == nil {
		return
	}
	data, err := json.Marshal(Event{Type: eventType, UserID: userID, Payload: payload})
	if err != nil {
		p.log.WithError(err).WithField("event.type", eventType).Error("library-service: marshal event")
		return
	}
	if err := p.rdb.Publish(ctx, Channel, string(data)).Err(); err != nil {
		p.log.WithError(err).WithField("event.type", eventType).Warn("library-service: publish event")
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) {}
