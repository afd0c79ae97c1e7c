package playlist

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

// Router is mounted at /api/playlists behind authentication.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.handleList)
	r.Post("/", s.handleCreate)

	r.Get("/{playlistId}", s.handleGet)
	r.Patch("/{playlistId}", s.handleRename)
	r.Delete("/{playlistId}", s.handleDelete)

	r.Post("/{playlistId}/{videoId}", s.handleAddVideo)
	r.Delete("/{playlistId}/{videoId}", s.handleDeleteVideo)

	return r
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	result.Render(w, http.StatusOK, s.svc.ListPlaylists(r.Context(), userID))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	var in Input
	if !result.DecodeJSON(w, r, &in) {
		return
	}
	result.Render(w, http.StatusCreated, s.svc.CreatePlaylist(r.Context(), userID, in))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	result.Render(w, http.StatusOK, s.svc.GetPlaylist(r.Context(), userID, chi.URLParam(r, "playlistId")))
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	var in Input
	if !result.DecodeJSON(w, r, &in) {
		return
	}
	result.Render(w, http.StatusOK, s.svc.RenamePlaylist(r.Context(), userID, chi.URLParam(r, "playlistId"), in))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	result.Render(w, http.StatusOK, s.svc.DeletePlaylist(r.Context(), userID, chi.URLParam(r, "playlistId")))
}

func (s *Server) handleAddVideo(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	res := s.svc.AddVideoToPlaylist(r.Context(), userID, chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"))
	result.Render(w, http.StatusCreated, res)
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(w, r)
	if !ok {
		return
	}
	res := s.svc.DeleteVideoFromPlaylist(r.Context(), userID, chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"))
	result.Render(w, http.StatusOK, res)
}
