package likes

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

func (s *Service) ListLikes(ctx context.Context, userID string) result.Result {
	liked, err := s.store.List(ctx, userID)
	if err != nil {
		return s.unexpected("list likes", err)
	}
	refs := make([]string, len(liked))
	for i, l := range liked {
		refs[i] = l.VideoID
	}
	videos, err := s.videos.ResolveVideos(ctx, refs)
	if err != nil {
		return s.unexpected("resolve videos", err)
	}

	out := make([]Entry, 0, len(liked))
	for _, l := range liked {
		if v, ok := videos[l.VideoID]; ok {
			out = append(out, Entry{Video: v, LikedAt: l.LikedAt})
		}
	}
	return result.OK(result.Data{"videos": out})
}

func (s *Service) Like(ctx context.Context, userID, videoID string) result.Result {
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

	err = s.store.Add(ctx, userID, videoID)
	if errors.Is(err, ErrAlreadyLiked) {
		return result.Fail(result.Conflict(MsgAlreadyLiked))
	}
	if err != nil {
		return s.unexpected("add like", err)
	}

	s.events.Publish(ctx, userID, events.LikeAdded, map[string]any{"videoId": videoID})
	return s.ListLikes(ctx, userID)
}

func (s *Service) Unlike(ctx context.Context, userID, videoID string) result.Result {
	if !ids.Valid(videoID) {
		return result.Fail(result.MalformedID())
	}
	err := s.store.Remove(ctx, userID, videoID)
	if errors.Is(err, ErrNotFound) {
		return result.Fail(result.NotFound(MsgNotLiked))
	}
	if err != nil {
		return s.unexpected("remove like", err)
	}

	s.events.Publish(ctx, userID, events.LikeRemoved, map[string]any{"videoId": videoID})
	return s.ListLikes(ctx, userID)
}

func (s *Service) unexpected(op string, err error) result.Result {
	s.log.WithError(err).WithField("op", op).Error("library-service: likes store failure")
	return result.Fail(err)
}
