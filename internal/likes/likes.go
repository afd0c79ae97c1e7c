// Package likes keeps the set of videos each user liked.
package likes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-service/internal/storage"
	"library-service/internal/video"
)

var (
	ErrAlreadyLiked = errors.New("video already liked")
	ErrNotFound     = errors.New("video not liked")
)

const (
	MsgAlreadyLiked = "Video already liked"
	MsgNotLiked     = "Video not liked"
)

type Like struct {
	VideoID string
	LikedAt time.Time
}

// Entry is the public shape of a like.
type Entry struct {
	video.Video
	LikedAt time.Time `json:"likedAt"`
}

type Store interface {
	// List returns the newest likes first.
	List(ctx context.Context, userID string) ([]Like, error)
	Add(ctx context.Context, userID, videoID string) error
	Remove(ctx context.Context, userID, videoID string) error
}

type PostgresStore struct {
	db storage.DB
}

func NewPostgresStore(db storage.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func AutoMigrate(ctx context.Context, db storage.DB) error {
	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS likes (
			user_id    TEXT NOT NULL,
			video_id   uuid NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, video_id)
		)
	`); err != nil {
		return fmt.Errorf("migrate likes: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, userID string) ([]Like, error) {
	rows, err := s.db.Query(ctx, `
		SELECT video_id, created_at
		FROM likes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("likes.List: %w", err)
	}
	defer rows.Close()

	out := []Like{}
	for rows.Next() {
		var l Like
		if err := rows.Scan(&l.VideoID, &l.LikedAt); err != nil {
			return nil, fmt.Errorf("likes.List: scan: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("likes.List: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Add(ctx context.Context, userID, videoID string) error {
	_, err := s.db.Exec(ctx, `INSERT INTO likes (user_id, video_id) VALUES ($1, $2)`, userID, videoID)
	if storage.IsUniqueViolation(err) {
		return ErrAlreadyLiked
	}
	if err != nil {
		return fmt.Errorf("likes.Add: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, userID, videoID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND video_id = $2`, userID, videoID)
	if err != nil {
		return fmt.Errorf("likes.Remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
