package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"library-service/internal/config"
	"library-service/internal/history"
	"library-service/internal/likes"
	"library-service/internal/middleware"
	"library-service/internal/playlist"
	"library-service/internal/realtime"
	"library-service/internal/result"
	"library-service/internal/video"
)

type routes struct {
	videos    *video.Server
	playlists *playlist.Server
	history   *history.Server
	likes     *likes.Server
	// realtime is nil when redis is not configured.
	realtime *realtime.Server
}

func newRouter(cfg config.Config, log logrus.FieldLogger, limiter *middleware.RateLimiter, rt routes) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if cfg.Auth.TrustGatewayHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.Server.CORSAllowedOrigin))
	r.Use(middleware.BodySizeLimit(cfg.Limits.MaxBodyBytes))

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(cfg.Auth.JWTSecret), cfg.Auth.TrustGatewayHeaders))
		r.Use(limiter.Middleware)

		r.Mount("/playlists", rt.playlists.Router())
		r.Mount("/videos", rt.videos.Router())
		r.Mount("/history", rt.history.Router())
		r.Mount("/likes", rt.likes.Router())
		if rt.realtime != nil {
			r.Get("/ws", rt.realtime.HandleWS)
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	result.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "library-service",
	})
}
