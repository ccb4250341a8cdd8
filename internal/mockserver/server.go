// Package mockserver is a self-contained stand-in for the dubbing
// platform backend, covering exactly the endpoints the creation
// workflow drives. It exists for demos and end-to-end testing without
// a real backend.
//
// Failure injection: a register-youtube URL containing "fail" is
// rejected with 503, and a prepare-upload file name starting with
// "fail-" is rejected with 500, so error paths can be exercised on
// demand.
package mockserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"dubdeck/internal/api"
	"dubdeck/internal/logging"
)

type project struct {
	record    api.Project
	script    []frame
	ready     chan struct{}
	readyOnce sync.Once
}

// Server implements the backend surface in memory.
type Server struct {
	logger   *slog.Logger
	interval time.Duration

	mu       sync.Mutex
	projects map[string]*project
	order    []string
}

// Option configures a Server.
type Option func(*Server)

// WithEventInterval sets the pause between streamed progress frames.
func WithEventInterval(interval time.Duration) Option {
	return func(s *Server) { s.interval = interval }
}

// New builds a server preloaded with sample projects.
func New(logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		logger:   logging.WithComponent(logger, "mockserver"),
		interval: 150 * time.Millisecond,
		projects: make(map[string]*project),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, record := range sampleProjects() {
		s.addProject(record)
	}
	return s
}

// Handler returns the routed HTTP surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", s.handleListProjects)
		r.Post("/projects", s.handleCreateProject)

		r.Route("/storage/{projectID}", func(r chi.Router) {
			r.Post("/prepare-upload", s.handlePrepareUpload)
			r.Post("/upload", s.handleUpload)
			r.Post("/finalize-upload", s.handleFinalizeUpload)
			r.Post("/register-youtube", s.handleRegisterYouTube)
			r.Get("/events", s.handleEvents)
		})
	})
	return r
}

func (s *Server) addProject(record api.Project) *project {
	p := &project{record: record, ready: make(chan struct{})}
	s.mu.Lock()
	s.projects[record.ID] = p
	s.order = append(s.order, record.ID)
	s.mu.Unlock()
	return p
}

func (s *Server) lookup(id string) (*project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	return p, ok
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := make([]api.Project, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.projects[id].record)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req api.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title is required", http.StatusUnprocessableEntity)
		return
	}
	if strings.TrimSpace(req.OwnerCode) == "" {
		http.Error(w, "owner_code is required", http.StatusUnprocessableEntity)
		return
	}

	id := "proj-" + uuid.NewString()[:8]
	s.addProject(api.Project{
		ID:              id,
		Title:           req.Title,
		SourceLanguage:  req.SourceLanguage,
		TargetLanguages: req.TargetLanguages,
		Status:          "processing",
		Progress:        0,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	})
	s.logger.Info("project created",
		slog.String("project_id", id),
		slog.String("title", req.Title),
		slog.String("source_type", req.SourceType),
	)

	writeJSON(w, http.StatusCreated, api.CreateProjectResponse{ProjectID: id})
}

func (s *Server) handlePrepareUpload(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if _, ok := s.lookup(projectID); !ok {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	var req api.PrepareUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.HasPrefix(req.FileName, "fail-") {
		http.Error(w, "storage quota exceeded", http.StatusInternalServerError)
		return
	}

	objectKey := fmt.Sprintf("sources/%s/%s", projectID, req.FileName)
	writeJSON(w, http.StatusOK, api.PrepareUploadResponse{
		UploadURL: fmt.Sprintf("http://%s/api/storage/%s/upload", r.Host, projectID),
		Fields: map[string]string{
			"key":          objectKey,
			"Content-Type": req.ContentType,
		},
		ObjectKey: objectKey,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if _, ok := s.lookup(projectID); !ok {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	defer file.Close()
	size, err := io.Copy(io.Discard, file)
	if err != nil {
		http.Error(w, "read upload", http.StatusInternalServerError)
		return
	}
	s.logger.Info("upload received",
		slog.String("project_id", projectID),
		slog.String("file", header.Filename),
		slog.Int64("bytes", size),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinalizeUpload(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	p, ok := s.lookup(projectID)
	if !ok {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	var req api.FinalizeUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ObjectKey == "" {
		http.Error(w, "object_key is required", http.StatusUnprocessableEntity)
		return
	}

	p.setScript(fileScript())
	writeJSON(w, http.StatusOK, map[string]string{"status": "finalized"})
}

func (s *Server) handleRegisterYouTube(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	p, ok := s.lookup(projectID)
	if !ok {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	var req api.RegisterYouTubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.Contains(req.YouTubeURL, "fail") {
		http.Error(w, "ingestion worker unavailable", http.StatusServiceUnavailable)
		return
	}

	p.setScript(youtubeScript())
	s.logger.Info("ingestion queued",
		slog.String("project_id", projectID),
		slog.String("url", req.YouTubeURL),
	)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func sampleProjects() []api.Project {
	return []api.Project{
		{
			ID:              "proj-1001",
			Title:           "AI Voice-over Launch Trailer",
			SourceLanguage:  "en",
			TargetLanguages: []string{"ko", "ja", "es"},
			Status:          "editing",
			Progress:        56,
			CreatedAt:       "2025-01-15T10:00:00Z",
		},
		{
			ID:              "proj-1002",
			Title:           "Educational Webinar Series",
			SourceLanguage:  "ko",
			TargetLanguages: []string{"en"},
			Status:          "processing",
			Progress:        32,
			CreatedAt:       "2025-01-20T09:00:00Z",
		},
		{
			ID:              "proj-1003",
			Title:           "Creator Success Stories",
			SourceLanguage:  "ja",
			TargetLanguages: []string{"en", "ko"},
			Status:          "review",
			Progress:        88,
			CreatedAt:       "2025-01-05T14:25:00Z",
		},
	}
}
