package video

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"library-service/internal/events"
	"library-service/internal/ids"
	"library-service/internal/result"
)

type Service struct {
	store  Store
	events events.Publisher
	log    logrus.FieldLogger
}

func NewService(store Store, pub events.Publisher, log logrus.FieldLogger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{store: store, events: pub, log: log}
}

func (s *Service) ListVideos(ctx context.Context, userID string) result.Result {
	videos, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return s.unexpected("list videos", err)
	}
	return result.OK(result.Data{"videos": videos})
}

func (s *Service) CreateVideo(ctx context.Context, userID string, in CreateInput) result.Result {
	v, verr := validateCreate(in)
	if verr != nil {
		return result.Fail(verr)
	}
	v.OwnerID = userID

	if err := s.store.Create(ctx, &v); err != nil {
		return s.unexpected("create video", err)
	}

	s.events.Publish(ctx, userID, events.VideoCreated, map[string]any{"videoId": v.ID})
	return result.OK(result.Data{"video": v})
}

func (s *Service) GetVideo(ctx context.Context, userID, videoID string) result.Result {
	if !ids.Valid(videoID) {
		return result.Fail(result.MalformedID())
	}
	v, err := s.store.FindOwned(ctx, videoID, userID)
	if errors.Is(err, ErrNotFound) {
		return result.Fail(result.NotFound(MsgNotFound))
	}
	if err != nil {
		return s.unexpected("get video", err)
	}
	return result.OK(result.Data{"video": *v})
}

// DeleteVideo removes the video and, through foreign keys, every playlist
// entry, history row and like that referenced it.
func (s *Service) DeleteVideo(ctx context.Context, userID, videoID string) result.Result {
	if !ids.Valid(videoID) {
		return result.Fail(result.MalformedID())
	}
	err := s.store.Delete(ctx, videoID, userID)
	if errors.Is(err, ErrNotFound) {
		return result.Fail(result.NotFound(MsgNotFound))
	}
	if err != nil {
		return s.unexpected("delete video", err)
	}

	s.events.Publish(ctx, userID, events.VideoDeleted, map[string]any{"videoId": videoID})
	return s.ListVideos(ctx, userID)
}

func (s *Service) unexpected(op string, err error) result.Result {
	s.log.WithError(err).WithField("op", op).Error("library-service: video store failure")
	return result.Fail(err)
}

func validateCreate(in CreateInput) (Video, *result.Error) {
	v := Video{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		URL:          strings.TrimSpace(in.URL),
		ThumbnailURL: strings.TrimSpace(in.ThumbnailURL),
		DurationMs:   in.DurationMs,
	}

	switch {
	case v.Title == "":
		return v, result.Malformed("Title is required")
	case utf8.RuneCountInString(v.Title) > maxTitleLen:
		return v, result.Malformed("Title must be at most 300 characters")
	case v.URL == "":
		return v, result.Malformed("URL is required")
	case !isHTTPURL(v.URL):
		return v, result.Malformed("URL must be an absolute http(s) URL")
	case v.ThumbnailURL != "" && !isHTTPURL(v.ThumbnailURL):
		return v, result.Malformed("Thumbnail URL must be an absolute http(s) URL")
	case utf8.RuneCountInString(v.Description) > maxDescriptionLen:
		return v, result.Malformed("Description must be at most 2000 characters")
	case v.DurationMs < 0:
		return v, result.Malformed("Duration must not be negative")
	}
	return v, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
