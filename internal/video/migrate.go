package video

import (
	"context"
	"fmt"

	"library-service/internal/storage"
)

// AutoMigrate creates the videos table. It must run before the playlist,
// history and likes migrations, which reference it.
func AutoMigrate(ctx context.Context, db storage.DB) error {
	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS videos (
			id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id      TEXT NOT NULL,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			url           TEXT NOT NULL,
			thumbnail_url TEXT NOT NULL DEFAULT '',
			duration_ms   INT NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("migrate videos: %w", err)
	}

	if _, err := db.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_videos_owner ON videos(owner_id, created_at)
	`); err != nil {
		return fmt.Errorf("migrate videos index: %w", err)
	}
	return nil
}
