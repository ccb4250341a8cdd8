package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubdeck/internal/api"
	"dubdeck/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := config.Default()
	cfg.Server.BaseURL = server.URL
	return api.NewClient(&cfg)
}

func TestCreateProject(t *testing.T) {
	var got api.CreateProjectRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/projects" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(api.CreateProjectResponse{ProjectID: "p-123"})
	}))

	id, err := client.CreateProject(context.Background(), api.CreateProjectRequest{
		Title:           "Demo",
		SourceType:      "file",
		TargetLanguages: []string{"en"},
		SpeakerCount:    2,
		OwnerCode:       "temp",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if id != "p-123" {
		t.Fatalf("project id = %q", id)
	}
	if got.Title != "Demo" || got.OwnerCode != "temp" {
		t.Fatalf("request payload = %+v", got)
	}
}

func TestCreateProjectRejectsEmptyID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.CreateProjectResponse{})
	}))
	if _, err := client.CreateProject(context.Background(), api.CreateProjectRequest{}); err == nil {
		t.Fatal("expected error for empty project_id")
	}
}

func TestPrepareUploadValidatesDestination(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/storage/p-1/prepare-upload" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(api.PrepareUploadResponse{
			UploadURL: "http://storage.local/upload",
			Fields:    map[string]string{"key": "sources/p-1/clip.mp4"},
			ObjectKey: "sources/p-1/clip.mp4",
		})
	}))

	dest, err := client.PrepareUpload(context.Background(), "p-1", "clip.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("PrepareUpload: %v", err)
	}
	if dest.ObjectKey != "sources/p-1/clip.mp4" {
		t.Fatalf("dest = %+v", dest)
	}
}

func TestPrepareUploadRejectsIncompleteDestination(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.PrepareUploadResponse{UploadURL: "http://storage.local/upload"})
	}))
	if _, err := client.PrepareUpload(context.Background(), "p-1", "clip.mp4", "video/mp4"); err == nil {
		t.Fatal("expected error for missing object_key")
	}
}

func TestErrorIncludesStatusAndBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "owner not allowed", http.StatusForbidden)
	}))

	err := client.FinalizeUpload(context.Background(), "p-1", "k")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"403", "owner not allowed"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestListProjects(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/projects" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"items":[{"id":"p-1","title":"Demo","status":"processing","progress":40}]}`))
	}))

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "p-1" || projects[0].Progress != 40 {
		t.Fatalf("projects = %+v", projects)
	}
}

func TestUploadFileSendsFieldsAndBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("fake video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("key"); got != "sources/p-1/clip.mp4" {
			t.Errorf("field key = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "clip.mp4" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer storage.Close()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dest := api.PrepareUploadResponse{
		UploadURL: storage.URL,
		Fields:    map[string]string{"key": "sources/p-1/clip.mp4"},
		ObjectKey: "sources/p-1/clip.mp4",
	}
	if err := client.UploadFile(context.Background(), dest, path, "video/mp4"); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
}

func TestUploadFileReportsStorageRejection(t *testing.T) {
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "signature mismatch", http.StatusForbidden)
	}))
	defer storage.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	err := client.UploadFile(context.Background(), api.PrepareUploadResponse{UploadURL: storage.URL}, path, "video/mp4")
	if err == nil || !strings.Contains(err.Error(), "signature mismatch") {
		t.Fatalf("err = %v", err)
	}
}
