package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dubdeck/internal/config"
	"dubdeck/internal/progress"
	"dubdeck/internal/sse"
)

// Client talks to the dubbing platform backend.
type Client struct {
	baseURL      string
	ownerCode    string
	httpClient   *http.Client
	uploadClient *http.Client
	streamClient *sse.Client
}

// NewClient builds a backend client from configuration.
func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.Server.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.Server.BaseURL, "/"),
		ownerCode:    cfg.Server.OwnerCode,
		httpClient:   &http.Client{Timeout: timeout},
		uploadClient: &http.Client{},
		streamClient: sse.NewClient(&http.Client{}),
	}
}

// OwnerCode returns the owner identifier attached to created projects.
func (c *Client) OwnerCode() string { return c.ownerCode }

// CreateProject creates the project record and returns its id.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (string, error) {
	var resp CreateProjectResponse
	if err := c.postJSON(ctx, "/api/projects", req, &resp); err != nil {
		return "", fmt.Errorf("create project: %w", err)
	}
	if resp.ProjectID == "" {
		return "", fmt.Errorf("create project: backend returned empty project_id")
	}
	return resp.ProjectID, nil
}

// PrepareUpload negotiates a presigned upload destination.
func (c *Client) PrepareUpload(ctx context.Context, projectID, fileName, contentType string) (PrepareUploadResponse, error) {
	var resp PrepareUploadResponse
	path := fmt.Sprintf("/api/storage/%s/prepare-upload", url.PathEscape(projectID))
	req := PrepareUploadRequest{FileName: fileName, ContentType: contentType}
	if err := c.postJSON(ctx, path, req, &resp); err != nil {
		return PrepareUploadResponse{}, fmt.Errorf("prepare upload: %w", err)
	}
	if resp.UploadURL == "" || resp.ObjectKey == "" {
		return PrepareUploadResponse{}, fmt.Errorf("prepare upload: incomplete destination in response")
	}
	return resp, nil
}

// FinalizeUpload commits a completed transfer under its object key.
func (c *Client) FinalizeUpload(ctx context.Context, projectID, objectKey string) error {
	path := fmt.Sprintf("/api/storage/%s/finalize-upload", url.PathEscape(projectID))
	if err := c.postJSON(ctx, path, FinalizeUploadRequest{ObjectKey: objectKey}, nil); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// RegisterYouTubeSource queues server-side ingestion of an external video.
func (c *Client) RegisterYouTubeSource(ctx context.Context, projectID, youtubeURL string) error {
	path := fmt.Sprintf("/api/storage/%s/register-youtube", url.PathEscape(projectID))
	if err := c.postJSON(ctx, path, RegisterYouTubeRequest{YouTubeURL: youtubeURL}, nil); err != nil {
		return fmt.Errorf("register youtube source: %w", err)
	}
	return nil
}

// ListProjects returns the caller's project records.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/projects", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var list projectListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode project list: %w", err)
	}
	return list.Items, nil
}

// OpenProgressStream subscribes to the server-push progress events for a
// project. Implements progress.StreamOpener.
func (c *Client) OpenProgressStream(ctx context.Context, projectID string) (progress.Stream, error) {
	streamURL := fmt.Sprintf("%s/api/storage/%s/events", c.baseURL, url.PathEscape(projectID))
	sub, err := c.streamClient.Subscribe(ctx, streamURL)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	text := strings.TrimSpace(string(snippet))
	if text == "" {
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}
	return fmt.Errorf("backend returned %d: %s", resp.StatusCode, text)
}
