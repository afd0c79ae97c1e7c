package playlist

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("playlist not found")
	ErrTitleTaken     = errors.New("playlist title taken")
	ErrDuplicateEntry = errors.New("video already in playlist")
	ErrEntryNotFound  = errors.New("video not in playlist")
)

// Store persists playlists. Every lookup is scoped by owner; callers never
// see another user's playlist.
type Store interface {
	// ListByOwner returns the owner's playlists oldest first, entries loaded.
	ListByOwner(ctx context.Context, ownerID string) ([]Playlist, error)
	FindOwned(ctx context.Context, id, ownerID string) (*Playlist, error)
	// TitleTaken ignores the playlist exceptID, so a rename to the same
	// title is not a conflict. Pass "" on create.
	TitleTaken(ctx context.Context, ownerID, title, exceptID string) (bool, error)
	// Create fills in ID and CreatedAt.
	Create(ctx context.Context, p *Playlist) error
	// Update writes Title and Description.
	Update(ctx context.Context, p *Playlist) error
	Delete(ctx context.Context, id, ownerID string) error
	// AddEntry appends videoID after the last entry.
	AddEntry(ctx context.Context, playlistID, videoID string) (*Entry, error)
	// RemoveEntry deletes the entry and closes the gap in positions.
	RemoveEntry(ctx context.Context, playlistID, videoID string) error
}
