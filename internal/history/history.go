// Package history records which videos a user watched, most recent first.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"library-service/internal/storage"
	"library-service/internal/video"
)

var ErrNotFound = errors.New("video not in history")

const MsgNotPresent = "Video not present in history"

// Item is one stored history row.
type Item struct {
	VideoID   string
	WatchedAt time.Time
}

// Entry is the public shape: the video plus when it was last watched.
type Entry struct {
	video.Video
	WatchedAt time.Time `json:"watchedAt"`
}

type Store interface {
	List(ctx context.Context, userID string) ([]Item, error)
	// Upsert moves an already watched video back to the top.
	Upsert(ctx context.Context, userID, videoID string) error
	Remove(ctx context.Context, userID, videoID string) error
	Clear(ctx context.Context, userID string) (int64, error)
}

type PostgresStore struct {
	db storage.DB
}

func NewPostgresStore(db storage.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func AutoMigrate(ctx context.Context, db storage.DB) error {
	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS watch_history (
			user_id    TEXT NOT NULL,
			video_id   uuid NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			watched_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, video_id)
		)
	`); err != nil {
		return fmt.Errorf("migrate watch_history: %w", err)
	}
	if _, err := db.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_watch_history_recent ON watch_history(user_id, watched_at DESC)
	`); err != nil {
		return fmt.Errorf("migrate watch_history index: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, userID string) ([]Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT video_id, watched_at
		FROM watch_history
		WHERE user_id = $1
		ORDER BY watched_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("history.List: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.VideoID, &it.WatchedAt); err != nil {
			return nil, fmt.Errorf("history.List: scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history.List: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, userID, videoID string) error {
	if _, err := s.db.Exec(ctx, `
		INSERT INTO watch_history (user_id, video_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = now()
	`, userID, videoID); err != nil {
		return fmt.Errorf("history.Upsert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, userID, videoID string) error {
	var removed string
	err := s.db.QueryRow(ctx, `
		DELETE FROM watch_history
		WHERE user_id = $1 AND video_id = $2
		RETURNING video_id
	`, userID, videoID).Scan(&removed)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("history.Remove: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, userID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM watch_history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("history.Clear: %w", err)
	}
	return tag.RowsAffected(), nil
}
