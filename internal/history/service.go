package history

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"library-service/internal/events"
	"library-service/internal/ids"
	"library-service/internal/result"
	"library-service/internal/video"
)

type VideoResolver interface {
	FindOwnedVideo(ctx context.Context, videoID, userID string) (*video.Video, error)
	ResolveVideos(ctx context.Context, refs []string) (map[string]video.Video, error)
}

type Service struct {
	store  Store
	videos VideoResolver
	events events.Publisher
	log    logrus.FieldLogger
}

func NewService(store Store, videos VideoResolver, pub events.Publisher, log logrus.FieldLogger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{store: store, videos: videos, events: pub, log: log}
}

func (s *Service) ListHistory(ctx context.Context, userID string) result.Result {
	items, err := s.store.List(ctx, userID)
	if err != nil {
		return s.unexpected("list history", err)
	}
	refs := make([]string, len(items))
	for i, it := range items {
		refs[i] = it.VideoID
	}
	videos, err := s.videos.ResolveVideos(ctx, refs)
	if err != nil {
		return s.unexpected("resolve videos", err)
	}

	out := make([]Entry, 0, len(items))
	for _, it := range items {
		if v, ok := videos[it.VideoID]; ok {
			out = append(out, Entry{Video: v, WatchedAt: it.WatchedAt})
		}
	}
	return result.OK(result.Data{"videos": out})
}

func (s *Service) AddHistory(ctx context.Context, userID, videoID string) result.Result {
	if !ids.Valid(videoID) {
		return result.Fail(result.MalformedID())
	}
	_, err := s.videos.FindOwnedVideo(ctx, videoID, userID)
	if errors.Is(err, video.ErrNotFound) {
		return result.Fail(result.NotFound(video.MsgNotFound))
	}
	if err != nil {
		return s.unexpected("find video", err)
	}

	if err := s.store.Upsert(ctx, userID, videoID); err != nil {
		return s.unexpected("add history", err)
	}

	s.events.Publish(ctx, userID, events.HistoryAdded, map[string]any{"videoId": videoID})
	return s.ListHistory(ctx, userID)
}

func (s *Service) RemoveHistory(ctx context.Context, userID, videoID string) result.Result {
	if !ids.Valid(videoID) {
		return result.Fail(result.MalformedID())
	}
	err := s.store.Remove(ctx, userID, videoID)
	if errors.Is(err, ErrNotFound) {
		return result.Fail(result.NotFound(MsgNotPresent))
	}
	if err != nil {
		return s.unexpected("remove history", err)
	}

	s.events.Publish(ctx, userID, events.HistoryRemoved, map[string]any{"videoId": videoID})
	return s.ListHistory(ctx, userID)
}

func (s *Service) ClearHistory(ctx context.Context, userID string) result.Result {
	n, err := s.store.Clear(ctx, userID)
	if err != nil {
		return s.unexpected("clear history", err)
	}

	if n > 0 {
		s.events.Publish(ctx, userID, events.HistoryCleared, map[string]any{"removed": n})
	}
	return s.ListHistory(ctx, userID)
}

func (s *Service) unexpected(op string, err error) result.Result {
	s.log.WithError(err).WithField("op", op).Error("library-service: history store failure")
	return result.Fail(err)
}
