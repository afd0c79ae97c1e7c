package playlist

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"library-service/internal/video"
)

func testID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012x", n)
}

// memStore is an in-memory Store with the same uniqueness rules as the
// Postgres schema.
type memStore struct {
	mu        sync.Mutex
	seq       int
	playlists map[string]*Playlist
}

func newMemStore() *memStore {
	return &memStore{playlists: map[string]*Playlist{}}
}

func (m *memStore) nextID() string {
	m.seq++
	return testID(1000 + m.seq)
}

func clonePlaylist(p *Playlist) Playlist {
	c := *p
	c.Entries = append([]Entry{}, p.Entries...)
	return c
}

func (m *memStore) ListByOwner(ctx context.Context, ownerID string) ([]Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Playlist{}
	for _, p := range m.playlists {
		if p.OwnerID == ownerID {
			out = append(out, clonePlaylist(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) FindOwned(ctx context.Context, id, ownerID string) (*Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[id]
	if !ok || p.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	c := clonePlaylist(p)
	return &c, nil
}

func (m *memStore) TitleTaken(ctx context.Context, ownerID, title, exceptID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.titleTakenLocked(ownerID, title, exceptID), nil
}

func (m *memStore) titleTakenLocked(ownerID, title, exceptID string) bool {
	for _, p := range m.playlists {
		if p.OwnerID == ownerID && p.Title == title && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *memStore) Create(ctx context.Context, p *Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.titleTakenLocked(p.OwnerID, p.Title, "") {
		return ErrTitleTaken
	}
	p.ID = m.nextID()
	p.CreatedAt = time.Now()
	p.Entries = []Entry{}
	c := clonePlaylist(p)
	m.playlists[p.ID] = &c
	return nil
}

func (m *memStore) Update(ctx context.Context, p *Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.playlists[p.ID]
	if !ok || stored.OwnerID != p.OwnerID {
		return ErrNotFound
	}
	if m.titleTakenLocked(p.OwnerID, p.Title, p.ID) {
		return ErrTitleTaken
	}
	stored.Title, stored.Description = p.Title, p.Description
	return nil
}

func (m *memStore) Delete(ctx context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[id]
	if !ok || p.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.playlists, id)
	return nil
}

func (m *memStore) AddEntry(ctx context.Context, playlistID, videoID string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[playlistID]
	if !ok {
		return nil, ErrNotFound
	}
	if p.HasVideo(videoID) {
		return nil, ErrDuplicateEntry
	}
	e := Entry{EntryID: m.nextID(), VideoID: videoID, Position: len(p.Entries), AddedAt: time.Now()}
	p.Entries = append(p.Entries, e)
	return &e, nil
}

func (m *memStore) RemoveEntry(ctx context.Context, playlistID, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[playlistID]
	if !ok {
		return ErrNotFound
	}
	for i, e := range p.Entries {
		if e.VideoID == videoID {
			p.Entries = append(p.Entries[:i], p.Entries[i+1:]...)
			for j := i; j < len(p.Entries); j++ {
				p.Entries[j].Position = j
			}
			return nil
		}
	}
	return ErrEntryNotFound
}

// entries returns the stored entries of a playlist, bypassing the service.
func (m *memStore) entries(playlistID string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry{}, m.playlists[playlistID].Entries...)
}

// memVideos is an in-memory VideoResolver.
type memVideos struct {
	mu      sync.Mutex
	videos  map[string]video.Video
	batches int
}

func newMemVideos(videos ...video.Video) *memVideos {
	m := &memVideos{videos: map[string]video.Video{}}
	for _, v := range videos {
		m.videos[v.ID] = v
	}
	return m
}

func (m *memVideos) FindOwnedVideo(ctx context.Context, videoID, userID string) (*video.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[videoID]
	if !ok || v.OwnerID != userID {
		return nil, video.ErrNotFound
	}
	return &v, nil
}

func (m *memVideos) ResolveVideos(ctx context.Context, refs []string) (map[string]video.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	out := map[string]video.Video{}
	for _, id := range refs {
		if v, ok := m.videos[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m *memVideos) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.videos, id)
}

// mockStore is used where a test needs a store call to fail.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListByOwner(ctx context.Context, ownerID string) ([]Playlist, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Playlist), args.Error(1)
}

func (m *mockStore) FindOwned(ctx context.Context, id, ownerID string) (*Playlist, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Playlist), args.Error(1)
}

func (m *mockStore) TitleTaken(ctx context.Context, ownerID, title, exceptID string) (bool, error) {
	args := m.Called(ctx, ownerID, title, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, p *Playlist) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockStore) Update(ctx context.Context, p *Playlist) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *mockStore) AddEntry(ctx context.Context, playlistID, videoID string) (*Entry, error) {
	args := m.Called(ctx, playlistID, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Entry), args.Error(1)
}

func (m *mockStore) RemoveEntry(ctx context.Context, playlistID, videoID string) error {
	return m.Called(ctx, playlistID, videoID).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, userID, eventType string, payload any) {
	m.Called(ctx, userID, eventType, payload)
}
