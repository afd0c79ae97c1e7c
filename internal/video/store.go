package video

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"library-service/internal/storage"
)

type Store interface {
	ListByOwner(ctx context.Context, ownerID string) ([]Video, error)
	// Create fills in ID and CreatedAt.
	Create(ctx context.Context, v *Video) error
	// FindOwned returns ErrNotFound when the video is missing or belongs to
	// someone else.
	FindOwned(ctx context.Context, id, ownerID string) (*Video, error)
	FindByIDs(ctx context.Context, ids []string) ([]Video, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type PostgresStore struct {
	db storage.DB
}

func NewPostgresStore(db storage.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const videoColumns = `id, owner_id, title, description, url, thumbnail_url, duration_ms, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(row scanner) (Video, error) {
	var v Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.URL, &v.ThumbnailURL, &v.DurationMs, &v.CreatedAt)
	return v, err
}

func (s *PostgresStore) collect(rows pgx.Rows) ([]Video, error) {
	defer rows.Close()
	out := []Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]Video, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("video.ListByOwner: %w", err)
	}
	videos, err := s.collect(rows)
	if err != nil {
		return nil, fmt.Errorf("video.ListByOwner: %w", err)
	}
	return videos, nil
}

func (s *PostgresStore) Create(ctx context.Context, v *Video) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO videos (owner_id, title, description, url, thumbnail_url, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, v.OwnerID, v.Title, v.Description, v.URL, v.ThumbnailURL, v.DurationMs).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("video.Create: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindOwned(ctx context.Context, id, ownerID string) (*Video, error) {
	v, err := scanVideo(s.db.QueryRow(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("video.FindOwned: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []string) ([]Video, error) {
	if len(ids) == 0 {
		return []Video{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("video.FindByIDs: %w", err)
	}
	videos, err := s.collect(rows)
	if err != nil {
		return nil, fmt.Errorf("video.FindByIDs: %w", err)
	}
	return videos, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM videos WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("video.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
