package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/BankkRoll/clipy/internal/domain"
)

// Engine is the scheduler surface the HTTP adapter drives.
type Engine interface {
	Submit(job *domain.Job) error
	Pause(id string) error
	Resume(id string) error
	Cancel(id string) error
	Retry(id string) (string, error)
	SetMaxConcurrent(n int)
	MaxConcurrent() int
	ListAll() []domain.Job
	ListActive() []domain.Job
	ClearTerminal()
}

// InfoFetcher fetches video metadata for a URL before submission.
type InfoFetcher interface {
	FetchVideoInfo(ctx context.Context, url string) (*domain.VideoInfo, error)
}

// Server is the HTTP adapter exposing the engine's command surface and the
// progress event stream.
type Server struct {
	engine      Engine
	fetcher     InfoFetcher
	library     domain.LibraryStore
	hub         *Hub
	defaults    domain.DownloadOptions
	downloadDir string
	mux         *http.ServeMux
	server      *http.Server
}

// NewServer creates the HTTP adapter.
func NewServer(engine Engine, fetcher InfoFetcher, library domain.LibraryStore, hub *Hub, defaults domain.DownloadOptions, downloadDir, addr string) *Server {
	s := &Server{
		engine:      engine,
		fetcher:     fetcher,
		library:     library,
		hub:         hub,
		defaults:    defaults,
		downloadDir: downloadDir,
		mux:         http.NewServeMux(),
	}
	s.routes()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /downloads", s.handleSubmit)
	s.mux.HandleFunc("GET /downloads", s.handleList)
	s.mux.HandleFunc("GET /downloads/active", s.handleListActive)
	s.mux.HandleFunc("DELETE /downloads/completed", s.handleClearTerminal)
	s.mux.HandleFunc("GET /downloads/{id}", s.handleGetDownload)
	s.mux.HandleFunc("POST /downloads/{id}/pause", s.handleAction(Engine.Pause))
	s.mux.HandleFunc("POST /downloads/{id}/resume", s.handleAction(Engine.Resume))
	s.mux.HandleFunc("POST /downloads/{id}/cancel", s.handleAction(Engine.Cancel))
	s.mux.HandleFunc("POST /downloads/{id}/retry", s.handleRetry)
	s.mux.HandleFunc("GET /settings/concurrency", s.handleGetConcurrency)
	s.mux.HandleFunc("PUT /settings/concurrency", s.handleSetConcurrency)
	s.mux.HandleFunc("GET /videos/info", s.handleVideoInfo)
	s.mux.HandleFunc("GET /library", s.handleLibrary)
	s.mux.HandleFunc("DELETE /library/{id}", s.handleLibraryRemove)
	s.mux.HandleFunc("GET /events", s.handleEvents)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// submitRequest is the request body for POST /downloads.
type submitRequest struct {
	URL     string                  `json:"url"`
	Options *domain.DownloadOptions `json:"options,omitempty"`
}

// errorResponse is the JSON error response.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !domain.ValidateURL(req.URL) {
		s.writeError(w, http.StatusBadRequest, domain.ErrInvalidURL.Error())
		return
	}

	opts := s.defaults
	if req.Options != nil {
		opts = *req.Options
	}
	if opts.OutputDir == "" {
		opts.OutputDir = s.downloadDir
	}

	info, err := s.fetcher.FetchVideoInfo(r.Context(), req.URL)
	if err != nil {
		logrus.WithFields(logrus.Fields{"url": req.URL, "error": err}).Error("video info fetch failed")
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	job := domain.NewJob(req.URL, info, opts)
	if vid := domain.ExtractVideoID(req.URL); vid != "" {
		job.VideoID = vid
	}

	if err := s.engine.Submit(job); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.ListAll())
}

func (s *Server) handleListActive(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.ListActive())
}

func (s *Server) handleClearTerminal(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearTerminal()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, job := range s.engine.ListAll() {
		if job.ID == id {
			s.writeJSON(w, http.StatusOK, job)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, domain.ErrJobNotFound.Error())
}

// handleAction adapts a single-id engine command into a handler.
func (s *Server) handleAction(action func(Engine, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := action(s.engine, r.PathValue("id")); err != nil {
			s.writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	newID, err := s.engine.Retry(r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": newID})
}

func (s *Server) handleGetConcurrency(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]int{"max": s.engine.MaxConcurrent()})
}

func (s *Server) handleSetConcurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Max int `json:"max"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Max < 1 {
		s.writeError(w, http.StatusBadRequest, "max must be at least 1")
		return
	}
	s.engine.SetMaxConcurrent(req.Max)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if !domain.ValidateURL(url) {
		s.writeError(w, http.StatusBadRequest, domain.ErrInvalidURL.Error())
		return
	}
	info, err := s.fetcher.FetchVideoInfo(r.Context(), url)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	videos, err := s.library.List(r.Context())
	if err != nil {
		logrus.WithField("error", err).Error("library list failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if videos == nil {
		videos = []domain.LibraryVideo{}
	}
	s.writeJSON(w, http.StatusOK, videos)
}

func (s *Server) handleLibraryRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.library.Remove(r.Context(), r.PathValue("id")); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeEngineError maps domain errors to status codes.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateJob):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrJobNotPaused), errors.Is(err, domain.ErrJobNotFailed):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidURL):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		logrus.WithField("error", err).Error("engine command failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.server.Addr
}
