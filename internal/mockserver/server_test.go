package mockserver_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dubdeck/internal/api"
	"dubdeck/internal/config"
	"dubdeck/internal/mockserver"
	"dubdeck/internal/progress"
)

func newServerAndClient(t *testing.T) *api.Client {
	t.Helper()
	server := httptest.NewServer(mockserver.New(nil, mockserver.WithEventInterval(5*time.Millisecond)).Handler())
	t.Cleanup(server.Close)
	cfg := config.Default()
	cfg.Server.BaseURL = server.URL
	return api.NewClient(&cfg)
}

func createProject(t *testing.T, client *api.Client, sourceType string) string {
	t.Helper()
	id, err := client.CreateProject(context.Background(), api.CreateProjectRequest{
		Title:           "통합 테스트",
		SourceType:      sourceType,
		SourceLanguage:  "ko",
		TargetLanguages: []string{"en"},
		SpeakerCount:    2,
		OwnerCode:       client.OwnerCode(),
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return id
}

func TestCreateAndListProjects(t *testing.T) {
	client := newServerAndClient(t)
	id := createProject(t, client, "file")

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	var found bool
	for _, p := range projects {
		if p.ID == id {
			found = true
			if p.Title != "통합 테스트" || p.Status != "processing" {
				t.Fatalf("project = %+v", p)
			}
		}
	}
	if !found {
		t.Fatalf("created project %q missing from listing", id)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	client := newServerAndClient(t)
	_, err := client.CreateProject(context.Background(), api.CreateProjectRequest{
		SourceType: "file",
		OwnerCode:  "temp",
	})
	if err == nil {
		t.Fatal("expected rejection for missing title")
	}
}

func TestUploadRoundTrip(t *testing.T) {
	client := newServerAndClient(t)
	id := createProject(t, client, "file")
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("fake video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest, err := client.PrepareUpload(ctx, id, "clip.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("prepare upload: %v", err)
	}
	if err := client.UploadFile(ctx, dest, path, "video/mp4"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := client.FinalizeUpload(ctx, id, dest.ObjectKey); err != nil {
		t.Fatalf("finalize: %v", err)
	}
}

func TestPrepareUploadFailureInjection(t *testing.T) {
	client := newServerAndClient(t)
	id := createProject(t, client, "file")

	if _, err := client.PrepareUpload(context.Background(), id, "fail-clip.mp4", "video/mp4"); err == nil {
		t.Fatal("expected injected prepare failure")
	}
}

func TestRegisterFailureInjection(t *testing.T) {
	client := newServerAndClient(t)
	id := createProject(t, client, "youtube")

	err := client.RegisterYouTubeSource(context.Background(), id, "https://youtu.be/fail-me")
	if err == nil {
		t.Fatal("expected injected register failure")
	}
}

func TestEventPlaybackReachesDone(t *testing.T) {
	client := newServerAndClient(t)
	id := createProject(t, client, "youtube")
	ctx := context.Background()

	completed := make(chan struct{})
	tracker := progress.NewTracker(client, nil, progress.WithCompletionFunc(func() {
		close(completed)
	}))

	if err := tracker.StartTracking(ctx, id); err != nil {
		t.Fatalf("start tracking: %v", err)
	}
	if err := client.RegisterYouTubeSource(ctx, id, "https://youtu.be/abc123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	select {
	case <-completed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for done event")
	}

	state := tracker.State()
	if state.Stage != progress.StageDone || state.Progress != 100 {
		t.Fatalf("final state = %+v", state)
	}

	// Completion is reflected in the listing as well.
	projects, err := client.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	for _, p := range projects {
		if p.ID == id && p.Progress != 100 {
			t.Fatalf("listing not updated: %+v", p)
		}
	}
}
