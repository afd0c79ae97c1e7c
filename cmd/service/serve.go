package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"library-service/internal/config"
	"library-service/internal/events"
	"library-service/internal/history"
	"library-service/internal/likes"
	"library-service/internal/middleware"
	"library-service/internal/playlist"
	"library-service/internal/realtime"
	"library-service/internal/storage"
	"library-service/internal/video"
)

func serve(parent context.Context, cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := storage.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("library-service: postgres: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(ctx, pool, migrations...); err != nil {
			return err
		}
	}

	var (
		pub events.Publisher = events.Nop{}
		rt  *realtime.Server
	)
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("library-service: redis: %w", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		pub = events.NewRedisPublisher(rdb, log)

		hub := realtime.NewHub(log)
		go hub.Run(ctx)
		go realtime.RunSubscriber(ctx, rdb, hub)
		rt = realtime.NewServer(hub, cfg.Server.CORSAllowedOrigin, log)
	} else {
		log.Warn("library-service: REDIS_URL is empty, events and /ws are disabled")
	}

	videoStore := video.NewPostgresStore(pool)
	resolver := video.NewResolver(videoStore)

	limiter := middleware.NewRateLimiter(cfg.Limits.RateLimitRPS, cfg.Limits.RateLimitBurst)
	startSweeper(ctx, limiter, time.Minute)

	handler := newRouter(cfg, log, limiter, routes{
		videos:    video.NewServer(video.NewService(videoStore, pub, log)),
		playlists: playlist.NewServer(playlist.NewService(playlist.NewPostgresStore(pool), resolver, pub, log)),
		history:   history.NewServer(history.NewService(history.NewPostgresStore(pool), resolver, pub, log)),
		likes:     likes.NewServer(likes.NewService(likes.NewPostgresStore(pool), resolver, pub, log)),
		realtime:  rt,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("library-service: listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("library-service: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("library-service: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("library-service: shutdown: %w", err)
	}
	return nil
}

// startSweeper drops idle rate limiter buckets every interval until ctx ends.
func startSweeper(ctx context.Context, limiter *middleware.RateLimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	}()
}
