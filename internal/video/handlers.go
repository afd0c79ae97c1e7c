package video

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

// Router is mounted at /api/videos behind authentication.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleList)
	r.Post("/", s.handleCreate)
	r.Get("/{videoId}", s.handleGet)
	r.Delete("/{videoId}", s.handleDelete)
	return r
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	result.Render(w, http.StatusOK, s.svc.ListVideos(r.Context(), userID))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	var in CreateInput
	if !result.DecodeJSON(w, r, &in) {
		return
	}
	result.Render(w, http.StatusCreated, s.svc.CreateVideo(r.Context(), userID, in))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	result.Render(w, http.StatusOK, s.svc.GetVideo(r.Context(), userID, chi.URLParam(r, "videoId")))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	result.Render(w, http.StatusOK, s.svc.DeleteVideo(r.Context(), userID, chi.URLParam(r, "videoId")))
}
