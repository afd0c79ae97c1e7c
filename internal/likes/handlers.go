package likes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-service/internal/middleware"
	"library-service/internal/result"
)

type Server struct {
	svc *Service
}

func NewServer(svc *Service) *Server {
	return &Server{svc: svc}
}

// Router is mounted at /api/likes behind authentication.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleList)
	r.Post("/{videoId}", s.handleLike)
	r.Delete("/{videoId}", s.handleUnlike)
	return r
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if userID, ok := middleware.CurrentUser(w, r); ok {
		result.Render(w, http.StatusOK, s.svc.ListLikes(r.Context(), userID))
	}
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	if userID, ok := middleware.CurrentUser(w, r); ok {
		result.Render(w, http.StatusCreated, s.svc.Like(r.Context(), userID, chi.URLParam(r, "videoId")))
	}
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	if userID, ok := middleware.CurrentUser(w, r); ok {
		result.Render(w, http.StatusOK, s.svc.Unlike(r.Context(), userID, chi.URLParam(r, "videoId")))
	}
}
