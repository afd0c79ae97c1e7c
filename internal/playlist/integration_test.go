//go:build integration

package playlist

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"library-service/internal/events"
	"library-service/internal/logging"
	"library-service/internal/storage"
	"library-service/internal/video"
)

// setupPostgres starts a throwaway Postgres and migrates it.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("library"),
		postgres.WithUsername("library"),
		postgres.WithPassword("library"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("Skipping integration test: cannot start postgres: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := storage.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, storage.Migrate(ctx, pool, video.AutoMigrate, AutoMigrate))
	return pool
}

func TestIntegration_FavoritesScenario(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	videos := video.NewPostgresStore(pool)
	own := &video.Video{OwnerID: alice, Title: "v1", URL: "https://example.com/1"}
	foreign := &video.Video{OwnerID: bob, Title: "vb", URL: "https://example.com/b"}
	require.NoError(t, videos.Create(ctx, own))
	require.NoError(t, videos.Create(ctx, foreign))

	store := NewPostgresStore(pool)
	svc := NewService(store, video.NewResolver(videos), events.Nop{}, logging.Discard())

	lists := playlistsOf(t, svc.CreatePlaylist(ctx, alice, Input{Title: "Favorites"}))
	require.Len(t, lists, 1)
	id := lists[0].ID
	assert.Empty(t, lists[0].Videos)

	assertFailure(t, svc.CreatePlaylist(ctx, alice, Input{Title: "Favorites"}), http.StatusBadRequest, MsgTitleTaken)
	playlistsOf(t, svc.CreatePlaylist(ctx, bob, Input{Title: "Favorites"}))

	p := playlistOf(t, svc.AddVideoToPlaylist(ctx, alice, id, own.ID))
	require.Len(t, p.Videos, 1)
	assert.Equal(t, own.ID, p.Videos[0].ID)

	assertFailure(t, svc.AddVideoToPlaylist(ctx, alice, id, own.ID), http.StatusBadRequest, MsgVideoExists)
	assertFailure(t, svc.AddVideoToPlaylist(ctx, alice, id, foreign.ID), http.StatusNotFound, video.MsgNotFound)

	p = playlistOf(t, svc.DeleteVideoFromPlaylist(ctx, alice, id, own.ID))
	assert.Empty(t, p.Videos)
	assertFailure(t, svc.DeleteVideoFromPlaylist(ctx, alice, id, own.ID), http.StatusNotFound, MsgVideoNotPresent)

	assert.Empty(t, playlistsOf(t, svc.DeletePlaylist(ctx, alice, id)))
}

func TestIntegration_ConcurrentAddsKeepOneEntry(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	videos := video.NewPostgresStore(pool)
	v := &video.Video{OwnerID: alice, Title: "v1", URL: "https://example.com/1"}
	require.NoError(t, videos.Create(ctx, v))

	store := NewPostgresStore(pool)
	p := &Playlist{OwnerID: alice, Title: "Race"}
	require.NoError(t, store.Create(ctx, p))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AddEntry(ctx, p.ID, v.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateEntry)
	}
	assert.Equal(t, 1, ok)

	got, err := store.FindOwned(ctx, p.ID, alice)
	require.NoError(t, err)
	assert.Len(t, got.Entries, 1)
}

func TestIntegration_DeletingVideoCascades(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	videos := video.NewPostgresStore(pool)
	a := &video.Video{OwnerID: alice, Title: "a", URL: "https://example.com/a"}
	b := &video.Video{OwnerID: alice, Title: "b", URL: "https://example.com/b"}
	require.NoError(t, videos.Create(ctx, a))
	require.NoError(t, videos.Create(ctx, b))

	store := NewPostgresStore(pool)
	p := &Playlist{OwnerID: alice, Title: "Mix"}
	require.NoError(t, store.Create(ctx, p))
	_, err := store.AddEntry(ctx, p.ID, a.ID)
	require.NoError(t, err)
	_, err = store.AddEntry(ctx, p.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, videos.Delete(ctx, a.ID, alice))

	got, err := store.FindOwned(ctx, p.ID, alice)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, b.ID, got.Entries[0].VideoID)
}
