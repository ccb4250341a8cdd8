package sse

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Event is one decoded server-sent event.
type Event struct {
	Type string
	Data string
	ID   string
}

// HTTPDoer describes the HTTP client used for stream requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client opens event-stream subscriptions.
type Client struct {
	httpClient HTTPDoer
}

// NewClient builds a stream client. A nil httpClient falls back to
// http.DefaultClient; callers should pass a client without a global
// timeout, since streams are long-lived.
func NewClient(httpClient HTTPDoer) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient}
}

// Subscribe opens a subscription to the given stream URL. The returned
// subscription delivers events until the stream ends, an error occurs, or
// Close is called.
func (c *Client) Subscribe(ctx context.Context, streamURL string) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("stream returned %d", resp.StatusCode)
	}

	sub := &Subscription{
		events: make(chan Event),
		errs:   make(chan error, 1),
		cancel: cancel,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go sub.consume(resp.Body)
	return sub, nil
}

// Subscription is a live event-stream connection.
type Subscription struct {
	events    chan Event
	errs      chan error
	cancel    context.CancelFunc
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Events delivers decoded events. The channel closes when the stream ends.
func (s *Subscription) Events() <-chan Event { return s.events }

// Errors delivers at most one transport-level error.
func (s *Subscription) Errors() <-chan error { return s.errs }

// Close tears down the subscription and waits for the reader to finish.
// Safe to call multiple times and from any teardown path.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.cancel()
	})
	<-s.done
}

func (s *Subscription) consume(body io.ReadCloser) {
	defer close(s.done)
	defer close(s.events)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event Event
	var data []string
	flush := func() bool {
		if len(data) == 0 && event.Type == "" && event.ID == "" {
			return true
		}
		event.Data = strings.Join(data, "\n")
		if event.Type == "" {
			event.Type = "message"
		}
		select {
		case s.events <- event:
		case <-s.stop:
			return false
		}
		event = Event{}
		data = nil
		return true
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if !flush() {
				return
			}
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		case strings.HasPrefix(line, "event:"):
			event.Type = trimField(line, "event:")
		case strings.HasPrefix(line, "data:"):
			data = append(data, trimField(line, "data:"))
		case strings.HasPrefix(line, "id:"):
			event.ID = trimField(line, "id:")
		}
	}

	if err := scanner.Err(); err != nil && !isClosedError(err) {
		s.errs <- fmt.Errorf("read stream: %w", err)
	}
}

func trimField(line, prefix string) string {
	return strings.TrimPrefix(strings.TrimPrefix(line, prefix), " ")
}

func isClosedError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "context canceled") ||
		strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "http: read on closed response body")
}
