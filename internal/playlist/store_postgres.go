package playlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"library-service/internal/storage"
)

type PostgresStore struct {
	db storage.DB
}

func NewPostgresStore(db storage.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]Playlist, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, title, description, created_at
		FROM playlists
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("playlist.ListByOwner: %w", err)
	}

	playlists := []Playlist{}
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("playlist.ListByOwner: scan: %w", err)
		}
		p.Entries = []Entry{}
		playlists = append(playlists, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("playlist.ListByOwner: %w", err)
	}
	if len(playlists) == 0 {
		return playlists, nil
	}

	index := make(map[string]int, len(playlists))
	ids := make([]string, len(playlists))
	for i, p := range playlists {
		index[p.ID] = i
		ids[i] = p.ID
	}

	entries, err := s.db.Query(ctx, `
		SELECT playlist_id, id, video_id, position, added_at
		FROM playlist_entries
		WHERE playlist_id = ANY($1::uuid[])
		ORDER BY playlist_id, position ASC, added_at ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("playlist.ListByOwner: entries: %w", err)
	}
	defer entries.Close()

	for entries.Next() {
		var playlistID string
		var e Entry
		if err := entries.Scan(&playlistID, &e.EntryID, &e.VideoID, &e.Position, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("playlist.ListByOwner: scan entry: %w", err)
		}
		if i, ok := index[playlistID]; ok {
			playlists[i].Entries = append(playlists[i].Entries, e)
		}
	}
	if err := entries.Err(); err != nil {
		return nil, fmt.Errorf("playlist.ListByOwner: entries: %w", err)
	}
	return playlists, nil
}

func (s *PostgresStore) FindOwned(ctx context.Context, id, ownerID string) (*Playlist, error) {
	var p Playlist
	err := s.db.QueryRow(ctx, `
		SELECT id, owner_id, title, description, created_at
		FROM playlists
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID).Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("playlist.FindOwned: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, video_id, position, added_at
		FROM playlist_entries
		WHERE playlist_id = $1
		ORDER BY position ASC, added_at ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("playlist.FindOwned: entries: %w", err)
	}
	defer rows.Close()

	p.Entries = []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EntryID, &e.VideoID, &e.Position, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("playlist.FindOwned: scan entry: %w", err)
		}
		p.Entries = append(p.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("playlist.FindOwned: entries: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) TitleTaken(ctx context.Context, ownerID, title, exceptID string) (bool, error) {
	var taken bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM playlists
			WHERE owner_id = $1 AND title = $2 AND id::text <> $3
		)
	`, ownerID, title, exceptID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("playlist.TitleTaken: %w", err)
	}
	return taken, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *Playlist) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO playlists (owner_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.OwnerID, p.Title, p.Description).Scan(&p.ID, &p.CreatedAt)
	if storage.IsUniqueViolation(err) {
		return ErrTitleTaken
	}
	if err != nil {
		return fmt.Errorf("playlist.Create: %w", err)
	}
	p.Entries = []Entry{}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *Playlist) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE playlists
		SET title = $3, description = $4
		WHERE id = $1 AND owner_id = $2
	`, p.ID, p.OwnerID, p.Title, p.Description)
	if storage.IsUniqueViolation(err) {
		return ErrTitleTaken
	}
	if err != nil {
		return fmt.Errorf("playlist.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM playlists WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("playlist.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// lockPlaylist serialises entry changes on one playlist for the rest of tx.
func lockPlaylist(ctx context.Context, tx pgx.Tx, playlistID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM playlists WHERE id = $1 FOR UPDATE`, playlistID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStore) AddEntry(ctx context.Context, playlistID, videoID string) (*Entry, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("playlist.AddEntry: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockPlaylist(ctx, tx, playlistID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("playlist.AddEntry: lock: %w", err)
	}

	e := Entry{VideoID: videoID}
	err = tx.QueryRow(ctx, `
		INSERT INTO playlist_entries (playlist_id, video_id, position)
		SELECT $1::uuid, $2::uuid, COALESCE(MAX(position) + 1, 0)
		FROM playlist_entries
		WHERE playlist_id = $1
		RETURNING id, position, added_at
	`, playlistID, videoID).Scan(&e.EntryID, &e.Position, &e.AddedAt)
	if storage.IsUniqueViolation(err) {
		return nil, ErrDuplicateEntry
	}
	if err != nil {
		return nil, fmt.Errorf("playlist.AddEntry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("playlist.AddEntry: commit: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) RemoveEntry(ctx context.Context, playlistID, videoID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("playlist.RemoveEntry: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockPlaylist(ctx, tx, playlistID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("playlist.RemoveEntry: lock: %w", err)
	}

	var position int
	err = tx.QueryRow(ctx, `
		DELETE FROM playlist_entries
		WHERE playlist_id = $1 AND video_id = $2
		RETURNING position
	`, playlistID, videoID).Scan(&position)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("playlist.RemoveEntry: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE playlist_entries
		SET position = position - 1
		WHERE playlist_id = $1 AND position > $2
	`, playlistID, position); err != nil {
		return fmt.Errorf("playlist.RemoveEntry: compact: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("playlist.RemoveEntry: commit: %w", err)
	}
	return nil
}
