// Package playlist keeps per-user playlists: ordered, de-duplicated lists of
// the user's own videos.
package playlist

import (
	"time"

	"library-service/internal/video"
)

// Playlist is the stored form. Entries are ordered by Position.
type Playlist struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	CreatedAt   time.Time
	Entries     []Entry
}

// Entry links a playlist to a video. EntryID never leaves the service.
type Entry struct {
	EntryID  string
	VideoID  string
	Position int
	AddedAt  time.Time
}

// HasVideo reports whether videoID is already in the playlist.
func (p *Playlist) HasVideo(videoID string) bool {
	for _, e := range p.Entries {
		if e.VideoID == videoID {
			return true
		}
	}
	return false
}

// View is what clients see: the playlist with its videos resolved in order.
type View struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Videos      []video.Video `json:"videos"`
}

// Input is the body of POST /playlists and PATCH /playlists/{id}.
type Input struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

const (
	MsgPlaylistNotFound = "Playlist not found"
	MsgTitleTaken       = "A playlist already exists, with the given title"
	MsgVideoExists      = "Video already exists in the playlist"
	MsgVideoNotPresent  = "Video not present in the playlist"

	maxTitleLen       = 200
	maxDescriptionLen = 1000
)
