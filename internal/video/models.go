// Package video stores the videos a user registered and resolves video
// references for the playlist, history and likes packages.
package video

import (
	"errors"
	"time"
)

// Video is owned by exactly one user. Only the owner can attach it to a
// playlist.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"-"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	DurationMs   int       `json:"durationMs"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateInput is the body of POST /videos.
type CreateInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DurationMs   int    `json:"durationMs"`
}

var ErrNotFound = errors.New("video not found")

const (
	MsgNotFound = "Video not found"

	maxTitleLen       = 300
	maxDescriptionLen = 2000
)
