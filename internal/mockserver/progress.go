package mockserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// frame is one scripted progress event.
type frame struct {
	Stage    string `json:"stage"`
	Status   string `json:"status,omitempty"`
	Progress int    `json:"progress"`
}

func youtubeScript() []frame {
	return []frame{
		{Stage: "processing", Status: "요청 처리 중", Progress: 15},
		{Stage: "downloading", Status: "콘텐츠 다운로드 중", Progress: 40},
		{Stage: "downloading", Status: "콘텐츠 다운로드 중", Progress: 75},
		{Stage: "processing", Status: "요청 처리 중", Progress: 90},
		{Stage: "done", Progress: 100},
	}
}

func fileScript() []frame {
	return []frame{
		{Stage: "processing", Status: "요청 처리 중", Progress: 95},
		{Stage: "done", Progress: 100},
	}
}

// setScript installs the playback script once; later calls keep the
// first script so a retry cannot restart a finished job.
func (p *project) setScript(frames []frame) {
	p.readyOnce.Do(func() {
		p.script = frames
		close(p.ready)
	})
}

// handleEvents streams the project's scripted progress frames as
// server-sent events. The stream waits for a script to be installed,
// so subscribing before registration is safe.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	p, ok := s.lookup(projectID)
	if !ok {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	select {
	case <-p.ready:
	case <-r.Context().Done():
		return
	}

	s.logger.Info("event stream started", slog.String("project_id", projectID))
	for _, f := range p.script {
		// The listing flips before the done frame goes out, so a client
		// reacting to completion always sees the updated record.
		if f.Stage == "done" {
			s.markDone(projectID)
		}
		payload, err := json.Marshal(f)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: progress\ndata: %s\n\n", payload)
		flusher.Flush()

		if f.Stage == "done" {
			return
		}
		select {
		case <-r.Context().Done():
			return
		case <-s.tick():
		}
	}
}

func (s *Server) tick() <-chan time.Time {
	return time.After(s.interval)
}

func (s *Server) markDone(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[projectID]; ok {
		p.record.Status = "editing"
		p.record.Progress = 100
	}
}
