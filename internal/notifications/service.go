package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dubdeck/internal/config"
)

const userAgent = "Dubdeck/0.1.0"

// Service defines the notification surface exposed to the creation
// workflow.
type Service interface {
	NotifyCreationCompleted(ctx context.Context, title string) error
	NotifyCreationFailed(ctx context.Context, title, detail string) error
	NotifyUploadCompleted(ctx context.Context, fileName string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyCreationCompleted(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	message := "프로젝트 생성 완료"
	if title != "" {
		message = fmt.Sprintf("프로젝트 생성 완료: %s", title)
	}
	data := payload{
		title:   "Dubdeck - Project Created",
		message: message,
		tags:    []string{"dubdeck", "create", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCreationFailed(ctx context.Context, title, detail string) error {
	title = strings.TrimSpace(title)
	detail = strings.TrimSpace(detail)

	var builder strings.Builder
	builder.WriteString("프로젝트 생성 실패")
	if title != "" {
		builder.WriteString(": ")
		builder.WriteString(title)
	}
	if detail != "" {
		builder.WriteString("\n")
		builder.WriteString(detail)
	}

	data := payload{
		title:    "Dubdeck - Creation Failed",
		message:  builder.String(),
		tags:     []string{"dubdeck", "create", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyUploadCompleted(ctx context.Context, fileName string) error {
	fileName = strings.TrimSpace(fileName)
	data := payload{
		title:   "Dubdeck - Upload Complete",
		message: fmt.Sprintf("업로드 완료: %s", fileName),
		tags:    []string{"dubdeck", "upload", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Dubdeck - Test",
		message:  "Notification system test",
		tags:     []string{"dubdeck", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyCreationCompleted(context.Context, string) error      { return nil }
func (noopService) NotifyCreationFailed(context.Context, string, string) error { return nil }
func (noopService) NotifyUploadCompleted(context.Context, string) error        { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
