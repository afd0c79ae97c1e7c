package playlist

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"library-service/internal/events"
	"library-service/internal/ids"
	"library-service/internal/result"
	"library-service/internal/video"
)

// VideoResolver is satisfied by *video.Resolver.
type VideoResolver interface {
	FindOwnedVideo(ctx context.Context, videoID, userID string) (*video.Video, error)
	ResolveVideos(ctx context.Context, refs []string) (map[string]video.Video, error)
}

// Service implements the playlist operations. Each mutation answers with a
// fresh read, so the response always reflects committed state.
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

func (s *Service) ListPlaylists(ctx context.Context, userID string) result.Result {
	playlists, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return s.unexpected("list playlists", err)
	}
	videos, err := s.videos.ResolveVideos(ctx, videoIDs(playlists...))
	if err != nil {
		return s.unexpected("resolve videos", err)
	}
	return result.OK(result.Data{"playlists": projectAll(playlists, videos)})
}

func (s *Service) CreatePlaylist(ctx context.Context, userID string, in Input) result.Result {
	in, verr := validateInput(in)
	if verr != nil {
		return result.Fail(verr)
	}

	taken, err := s.store.TitleTaken(ctx, userID, in.Title, "")
	if err != nil {
		return s.unexpected("check title", err)
	}
	if taken {
		return result.Fail(result.Conflict(MsgTitleTaken))
	}

	p := Playlist{OwnerID: userID, Title: in.Title, Description: in.Description}
	err = s.store.Create(ctx, &p)
	if errors.Is(err, ErrTitleTaken) {
		return result.Fail(result.Conflict(MsgTitleTaken))
	}
	if err != nil {
		return s.unexpected("create playlist", err)
	}

	s.events.Publish(ctx, userID, events.PlaylistCreated, map[string]any{"playlistId": p.ID, "title": p.Title})
	return s.ListPlaylists(ctx, userID)
}

func (s *Service) DeletePlaylist(ctx context.Context, userID, playlistID string) result.Result {
	if !ids.Valid(playlistID) {
		return result.Fail(result.MalformedID())
	}
	if _, res, ok := s.ownedPlaylist(ctx, userID, playlistID); !ok {
		return res
	}

	err := s.store.Delete(ctx, playlistID, userID)
	if errors.Is(err, ErrNotFound) {
		return result.Fail(result.NotFound(MsgPlaylistNotFound))
	}
	if err != nil {
		return s.unexpected("delete playlist", err)
	}

	s.events.Publish(ctx, userID, events.PlaylistDeleted, map[string]any{"playlistId": playlistID})
	return s.ListPlaylists(ctx, userID)
}

func (s *Service) GetPlaylist(ctx context.Context, userID, playlistID string) result.Result {
	if !ids.Valid(playlistID) {
		return result.Fail(result.MalformedID())
	}
	p, res, ok := s.ownedPlaylist(ctx, userID, playlistID)
	if !ok {
		return res
	}
	videos, err := s.videos.ResolveVideos(ctx, videoIDs(*p))
	if err != nil {
		return s.unexpected("resolve videos", err)
	}
	return result.OK(result.Data{"playlist": project(*p, videos)})
}

// RenamePlaylist replaces title and description.
func (s *Service) RenamePlaylist(ctx context.Context, userID, playlistID string, in Input) result.Result {
	if !ids.Valid(playlistID) {
		return result.Fail(result.MalformedID())
	}
	in, verr := validateInput(in)
	if verr != nil {
		return result.Fail(verr)
	}
	p, res, ok := s.ownedPlaylist(ctx, userID, playlistID)
	if !ok {
		return res
	}

	taken, err := s.store.TitleTaken(ctx, userID, in.Title, playlistID)
	if err != nil {
		return s.unexpected("check title", err)
	}
	if taken {
		return result.Fail(result.Conflict(MsgTitleTaken))
	}

	p.Title, p.Description = in.Title, in.Description
	err = s.store.Update(ctx, p)
	switch {
	case errors.Is(err, ErrTitleTaken):
		return result.Fail(result.Conflict(MsgTitleTaken))
	case errors.Is(err, ErrNotFound):
		return result.Fail(result.NotFound(MsgPlaylistNotFound))
	case err != nil:
		return s.unexpected("update playlist", err)
	}

	s.events.Publish(ctx, userID, events.PlaylistUpdated, map[string]any{"playlistId": playlistID, "title": p.Title})
	return s.GetPlaylist(ctx, userID, playlistID)
}

func (s *Service) AddVideoToPlaylist(ctx context.Context, userID, playlistID, videoID string) result.Result {
	if !ids.Valid(playlistID) || !ids.Valid(videoID) {
		return result.Fail(result.MalformedID())
	}
	p, res, ok := s.ownedPlaylist(ctx, userID, playlistID)
	if !ok {
		return res
	}
	if res, ok := s.ownedVideo(ctx, userID, videoID); !ok {
		return res
	}
	if p.HasVideo(videoID) {
		return result.Fail(result.Conflict(MsgVideoExists))
	}

	_, err := s.store.AddEntry(ctx, playlistID, videoID)
	switch {
	case errors.Is(err, ErrDuplicateEntry):
		return result.Fail(result.Conflict(MsgVideoExists))
	case errors.Is(err, ErrNotFound):
		return result.Fail(result.NotFound(MsgPlaylistNotFound))
	case err != nil:
		return s.unexpected("add entry", err)
	}

	s.events.Publish(ctx, userID, events.PlaylistVideoAdded, map[string]any{"playlistId": playlistID, "videoId": videoID})
	return s.GetPlaylist(ctx, userID, playlistID)
}

func (s *Service) DeleteVideoFromPlaylist(ctx context.Context, userID, playlistID, videoID string) result.Result {
	if !ids.Valid(playlistID) || !ids.Valid(videoID) {
		return result.Fail(result.MalformedID())
	}
	p, res, ok := s.ownedPlaylist(ctx, userID, playlistID)
	if !ok {
		return res
	}
	if res, ok := s.ownedVideo(ctx, userID, videoID); !ok {
		return res
	}
	if !p.HasVideo(videoID) {
		return result.Fail(result.NotFound(MsgVideoNotPresent))
	}

	err := s.store.RemoveEntry(ctx, playlistID, videoID)
	switch {
	case errors.Is(err, ErrEntryNotFound):
		return result.Fail(result.NotFound(MsgVideoNotPresent))
	case errors.Is(err, ErrNotFound):
		return result.Fail(result.NotFound(MsgPlaylistNotFound))
	case err != nil:
		return s.unexpected("remove entry", err)
	}

	s.events.Publish(ctx, userID, events.PlaylistVideoRemoved, map[string]any{"playlistId": playlistID, "videoId": videoID})
	return s.GetPlaylist(ctx, userID, playlistID)
}

func (s *Service) ownedPlaylist(ctx context.Context, userID, playlistID string) (*Playlist, result.Result, bool) {
	p, err := s.store.FindOwned(ctx, playlistID, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, result.Fail(result.NotFound(MsgPlaylistNotFound)), false
	}
	if err != nil {
		return nil, s.unexpected("find playlist", err), false
	}
	return p, result.Result{}, true
}

func (s *Service) ownedVideo(ctx context.Context, userID, videoID string) (result.Result, bool) {
	_, err := s.videos.FindOwnedVideo(ctx, videoID, userID)
	if errors.Is(err, video.ErrNotFound) {
		return result.Fail(result.NotFound(video.MsgNotFound)), false
	}
	if err != nil {
		return s.unexpected("find video", err), false
	}
	return result.Result{}, true
}

func (s *Service) unexpected(op string, err error) result.Result {
	s.log.WithError(err).WithField("op", op).Error("library-service: playlist store failure")
	return result.Fail(err)
}

// validateInput keeps the title exactly as given; uniqueness compares the
// raw string.
func validateInput(in Input) (Input, *result.Error) {
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case strings.TrimSpace(in.Title) == "":
		return in, result.Malformed("Title is required")
	case utf8.RuneCountInString(in.Title) > maxTitleLen:
		return in, result.Malformed("Title must be at most 200 characters")
	case utf8.RuneCountInString(in.Description) > maxDescriptionLen:
		return in, result.Malformed("Description must be at most 1000 characters")
	}
	return in, nil
}
