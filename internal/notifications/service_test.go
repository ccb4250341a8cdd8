package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dubdeck/internal/config"
	"dubdeck/internal/notifications"
)

func TestNewServiceWithoutTopicIsNoop(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = "   "

	service := notifications.NewService(&cfg)
	if err := service.NotifyCreationCompleted(context.Background(), "Demo"); err != nil {
		t.Fatalf("noop notify returned error: %v", err)
	}
	if err := service.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop test returned error: %v", err)
	}
}

func TestNotifyCreationCompletedSendsMessage(t *testing.T) {
	var gotTitle, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	service := notifications.NewService(&cfg)
	if err := service.NotifyCreationCompleted(context.Background(), "Demo"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if gotTitle != "Dubdeck - Project Created" {
		t.Fatalf("title = %q", gotTitle)
	}
	if !strings.Contains(gotBody, "프로젝트 생성 완료") || !strings.Contains(gotBody, "Demo") {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestNotifyCreationFailedSetsHighPriority(t *testing.T) {
	var gotPriority, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	service := notifications.NewService(&cfg)
	if err := service.NotifyCreationFailed(context.Background(), "Demo", "업로드 중 오류가 발생했습니다."); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if gotPriority != "high" {
		t.Fatalf("priority = %q", gotPriority)
	}
	if !strings.Contains(gotBody, "프로젝트 생성 실패") || !strings.Contains(gotBody, "업로드 중 오류가 발생했습니다.") {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestSendSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	service := notifications.NewService(&cfg)
	err := service.NotifyUploadCompleted(context.Background(), "clip.mp4")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v", err)
	}
}
