package history

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

// Router is mounted at /api/history behind authentication.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleList)
	r.Delete("/", s.handleClear)
	r.Post("/{videoId}", s.handleAdd)
	r.Delete("/{videoId}", s.handleRemove)
	return r
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if userID, ok := middleware.CurrentUser(w, r); ok {
		result.Render(w, http.StatusOK, s.svc.ListHistory(r.Context(), userID))
	}
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if userID, ok := middleware.CurrentUser(w, r); ok {
		result.Render(w, http.StatusCreated, s.svc.AddHistory(r.Context(), userID, chi.URLParam(r, "videoId")))
	}
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if userID, ok := middleware.CurrentUser(w, r); ok {
		result.Render(w, http.StatusOK, s.svc.RemoveHistory(r.Context(), userID, chi.URLParam(r, "videoId")))
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if userID, ok := middleware.CurrentUser(w, r); ok {
		result.Render(w, http.StatusOK, s.svc.ClearHistory(r.Context(), userID))
	}
}
