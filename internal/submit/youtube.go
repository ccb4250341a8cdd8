package submit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// ValidateYouTubeURL checks that raw is an absolute URL pointing at a
// known YouTube host with a video reference.
func ValidateYouTubeURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("empty url")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	host := strings.ToLower(parsed.Hostname())
	if !youtubeHosts[host] {
		return fmt.Errorf("host %q is not a YouTube host", parsed.Hostname())
	}
	if host == "youtu.be" {
		if strings.Trim(parsed.Path, "/") == "" {
			return fmt.Errorf("short link has no video id")
		}
		return nil
	}
	if strings.HasPrefix(parsed.Path, "/shorts/") || strings.HasPrefix(parsed.Path, "/live/") {
		return nil
	}
	if parsed.Path == "/watch" && parsed.Query().Get("v") != "" {
		return nil
	}
	return fmt.Errorf("url does not reference a video")
}

// TitleProber fetches the page title of a video URL, used to suggest a
// project title before the details step.
type TitleProber struct {
	client *http.Client
}

// NewTitleProber builds a prober. A nil client gets a short default
// timeout since the probe is a convenience, not a dependency.
func NewTitleProber(client *http.Client) *TitleProber {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TitleProber{client: client}
}

// ProbeTitle returns the og:title of the page at rawURL, falling back
// to the document title. An empty string with nil error means the page
// had neither.
func (p *TitleProber) ProbeTitle(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}
