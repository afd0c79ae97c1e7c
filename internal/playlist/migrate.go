package playlist

import (
	"context"
	"fmt"

	"library-service/internal/storage"
)

// AutoMigrate creates the playlist tables. The videos table must exist.
func AutoMigrate(ctx context.Context, db storage.DB) error {
	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS playlists (
			id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id    TEXT NOT NULL,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (owner_id, title)
		)
	`); err != nil {
		return fmt.Errorf("migrate playlists: %w", err)
	}

	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS playlist_entries (
			id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			playlist_id uuid NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			video_id    uuid NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			position    INT NOT NULL,
			added_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (playlist_id, video_id)
		)
	`); err != nil {
		return fmt.Errorf("migrate playlist_entries: %w", err)
	}

	if _, err := db.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_playlist_entries_position
		ON playlist_entries(playlist_id, position)
	`); err != nil {
		return fmt.Errorf("migrate playlist_entries index: %w", err)
	}
	return nil
}
