package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-service/internal/events"
	"library-service/internal/logging"
	"library-service/internal/middleware"
	"library-service/internal/result"
	"library-service/internal/video"
)

func testID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012x", n)
}

var (
	v1 = video.Video{ID: testID(1), OwnerID: "alice", Title: "v1"}
	v2 = video.Video{ID: testID(2), OwnerID: "alice", Title: "v2"}
	vb = video.Video{ID: testID(3), OwnerID: "bob", Title: "vb"}
)

type memStore struct {
	clock time.Time
	rows  map[string]map[string]time.Time
	err   error
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), rows: map[string]map[string]time.Time{}}
}

func (m *memStore) List(ctx context.Context, userID string) ([]Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []Item{}
	for id, at := range m.rows[userID] {
		out = append(out, Item{VideoID: id, WatchedAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WatchedAt.After(out[j].WatchedAt) })
	return out, nil
}

func (m *memStore) Upsert(ctx context.Context, userID, videoID string) error {
	if m.err != nil {
		return m.err
	}
	if m.rows[userID] == nil {
		m.rows[userID] = map[string]time.Time{}
	}
	m.clock = m.clock.Add(time.Minute)
	m.rows[userID][videoID] = m.clock
	return nil
}

func (m *memStore) Remove(ctx context.Context, userID, videoID string) error {
	if _, ok := m.rows[userID][videoID]; !ok {
		return ErrNotFound
	}
	delete(m.rows[userID], videoID)
	return nil
}

func (m *memStore) Clear(ctx context.Context, userID string) (int64, error) {
	n := int64(len(m.rows[userID]))
	delete(m.rows, userID)
	return n, nil
}

type memVideos map[string]video.Video

func (m memVideos) FindOwnedVideo(ctx context.Context, videoID, userID string) (*video.Video, error) {
	v, ok := m[videoID]
	if !ok || v.OwnerID != userID {
		return nil, video.ErrNotFound
	}
	return &v, nil
}

func (m memVideos) ResolveVideos(ctx context.Context, refs []string) (map[string]video.Video, error) {
	out := map[string]video.Video{}
	for _, id := range refs {
		if v, ok := m[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func newTestService(store Store) (*Service, memVideos) {
	videos := memVideos{v1.ID: v1, v2.ID: v2, vb.ID: vb}
	return NewService(store, videos, events.Nop{}, logging.Discard()), videos
}

func titles(t *testing.T, res result.Result) []string {
	t.Helper()
	require.True(t, res.Success, res.Message())
	out := []string{}
	for _, e := range res.Data["videos"].([]Entry) {
		out = append(out, e.Title)
	}
	return out
}

func TestService_HistoryFlow(t *testing.T) {
	svc, videos := newTestService(newMemStore())
	ctx := context.Background()

	assert.Equal(t, []string{}, titles(t, svc.ListHistory(ctx, "alice")))
	assert.Equal(t, []string{"v1"}, titles(t, svc.AddHistory(ctx, "alice", v1.ID)))
	assert.Equal(t, []string{"v2", "v1"}, titles(t, svc.AddHistory(ctx, "alice", v2.ID)))

	// re-watching moves to the top
	assert.Equal(t, []string{"v1", "v2"}, titles(t, svc.AddHistory(ctx, "alice", v1.ID)))

	// a deleted video disappears from the projection
	delete(videos, v2.ID)
	assert.Equal(t, []string{"v1"}, titles(t, svc.ListHistory(ctx, "alice")))

	assert.Equal(t, []string{}, titles(t, svc.RemoveHistory(ctx, "alice", v1.ID)))

	res := svc.RemoveHistory(ctx, "alice", v1.ID)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, MsgNotPresent, res.Message())
}

func TestService_AddHistoryErrors(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	ctx := context.Background()

	res := svc.AddHistory(ctx, "alice", vb.ID)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, video.MsgNotFound, res.Message())

	res = svc.AddHistory(ctx, "alice", "nope")
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, result.MsgSomethingWentWrong, res.Message())
}

func TestService_ClearHistory(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	ctx := context.Background()

	titles(t, svc.AddHistory(ctx, "alice", v1.ID))
	titles(t, svc.AddHistory(ctx, "bob", vb.ID))

	assert.Equal(t, []string{}, titles(t, svc.ClearHistory(ctx, "alice")))
	assert.Equal(t, []string{"vb"}, titles(t, svc.ListHistory(ctx, "bob")))
}

func TestService_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("timeout")
	svc, _ := newTestService(store)

	res := svc.ListHistory(context.Background(), "alice")
	assert.True(t, res.IsUnexpected())
}

func TestHandlers(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(nil, true))
	r.Mount("/api/history", NewServer(svc).Router())

	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("X-User-Id", "alice")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/history/"+v1.ID)
	assert.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data struct {
			Videos []map[string]any `json:"videos"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Videos, 1)
	assert.Equal(t, v1.ID, body.Data.Videos[0]["id"])
	assert.Contains(t, body.Data.Videos[0], "watchedAt")

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/history").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodDelete, "/api/history/"+v1.ID).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/api/history/"+v1.ID).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodDelete, "/api/history").Code)
}

func TestPostgresStore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	s := NewPostgresStore(mock)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO watch_history .* ON CONFLICT \\(user_id, video_id\\) DO UPDATE").
		WithArgs("alice", v1.ID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, s.Upsert(ctx, "alice", v1.ID))

	now := time.Now()
	mock.ExpectQuery("SELECT video_id, watched_at FROM watch_history WHERE user_id = .* ORDER BY watched_at DESC").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"video_id", "watched_at"}).AddRow(v1.ID, now))
	items, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, v1.ID, items[0].VideoID)

	mock.ExpectQuery("DELETE FROM watch_history").
		WithArgs("alice", v2.ID).
		WillReturnError(pgx.ErrNoRows)
	assert.ErrorIs(t, s.Remove(ctx, "alice", v2.ID), ErrNotFound)

	mock.ExpectExec("DELETE FROM watch_history WHERE user_id").
		WithArgs("alice").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	n, err := s.Clear(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS watch_history").WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_watch_history_recent").WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
	require.NoError(t, AutoMigrate(ctx, mock))

	assert.NoError(t, mock.ExpectationsWereMet())
}
