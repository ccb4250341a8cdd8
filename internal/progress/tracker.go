package progress

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"dubdeck/internal/sse"
)

// Stream delivers server-push progress events for one project.
// Close must be safe to call more than once.
type Stream interface {
	Events() <-chan sse.Event
	Errors() <-chan error
	Close()
}

// StreamOpener opens the progress stream for a project.
type StreamOpener interface {
	OpenProgressStream(ctx context.Context, projectID string) (Stream, error)
}

// eventProgress is the SSE event type carrying job progress.
const eventProgress = "progress"

// Tracker owns the progress state of a single wizard session.
type Tracker struct {
	opener     StreamOpener
	logger     *slog.Logger
	onComplete func()

	mu         sync.Mutex
	state      State
	stream     Stream
	generation int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCompletionFunc registers a callback fired once when a tracked job
// reports done.
func WithCompletionFunc(fn func()) Option {
	return func(t *Tracker) { t.onComplete = fn }
}

// NewTracker builds an idle tracker.
func NewTracker(opener StreamOpener, logger *slog.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t := &Tracker{
		opener: opener,
		logger: logger,
		state:  Initial(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the current progress state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// StartTracking subscribes to the progress stream for projectID. Exactly
// one subscription is active per session; any prior one is torn down
// first, never left running.
func (t *Tracker) StartTracking(ctx context.Context, projectID string) error {
	generation := t.detach()

	stream, err := t.opener.OpenProgressStream(ctx, projectID)
	if err != nil {
		return fmt.Errorf("open progress stream: %w", err)
	}

	t.mu.Lock()
	if t.generation != generation {
		// A Reset raced the subscription; the reset wins.
		t.mu.Unlock()
		stream.Close()
		return nil
	}
	t.stream = stream
	t.mu.Unlock()

	go t.consume(generation, projectID, stream)
	return nil
}

// Update applies a locally observed progress checkpoint. Progress never
// regresses within a session; an empty message falls back to the stage's
// default.
func (t *Tracker) Update(stage Stage, progress int, message string) {
	if message == "" {
		message = stage.DefaultMessage()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = State{
		Stage:    stage,
		Progress: clampProgress(progress, t.state.Progress),
		Message:  message,
	}
}

// ReportError moves the tracker to the error stage, freezing progress at
// its last known value. The session stays recoverable; retry is a
// user-initiated action.
func (t *Tracker) ReportError(message string) {
	if message == "" {
		message = genericErrorMessage
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = State{
		Stage:    StageError,
		Progress: t.state.Progress,
		Message:  message,
	}
}

// Reset tears down any open subscription and restores the initial state.
// Called on session close regardless of lifecycle position.
func (t *Tracker) Reset() {
	t.detach()
	t.mu.Lock()
	t.state = Initial()
	t.mu.Unlock()
}

// detach invalidates the active subscription, if any, and returns the
// new generation. Events still in flight from the old stream are dropped
// by the generation check.
func (t *Tracker) detach() int {
	t.mu.Lock()
	stream := t.stream
	t.stream = nil
	t.generation++
	generation := t.generation
	t.mu.Unlock()
	if stream != nil {
		stream.Close()
	}
	return generation
}

func (t *Tracker) consume(generation int, projectID string, stream Stream) {
	logger := t.logger.With(slog.String("project_id", projectID))
	for {
		event, ok := <-stream.Events()
		if !ok {
			select {
			case err := <-stream.Errors():
				t.streamFailed(generation, logger, err)
			default:
			}
			return
		}
		if event.Type != eventProgress {
			continue
		}
		if done := t.applyEvent(generation, logger, event.Data); done {
			t.mu.Lock()
			if t.stream == stream {
				t.stream = nil
			}
			t.mu.Unlock()
			stream.Close()
			if t.onComplete != nil {
				t.onComplete()
			}
			return
		}
	}
}

// applyEvent folds one wire event into the state. Returns true when the
// event was an authoritative done signal.
func (t *Tracker) applyEvent(generation int, logger *slog.Logger, data string) bool {
	event, ok := decodeEvent(data)
	if !ok {
		logger.Debug("discarding malformed progress payload", slog.String("payload", data))
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if generation != t.generation {
		return false
	}

	prev := t.state

	nextStage := prev.Stage
	if stage, valid := ParseStage(event.Stage); event.Stage != "" && valid {
		nextStage = stage
	} else if prev.Stage == StageIdle {
		nextStage = StageProcessing
	}

	done := nextStage == StageDone

	nextProgress := prev.Progress
	if event.Progress != nil {
		nextProgress = clampProgress(int(*event.Progress), prev.Progress)
	}
	if done {
		// The server's done signal wins over its own numeric field,
		// which may be stale or absent.
		nextProgress = 100
	}

	message := event.Status
	if message == "" {
		message = prev.Message
	}
	if message == "" {
		message = nextStage.DefaultMessage()
	}

	t.state = State{Stage: nextStage, Progress: nextProgress, Message: message}
	return done
}

func (t *Tracker) streamFailed(generation int, logger *slog.Logger, err error) {
	logger.Warn("progress stream failed", slog.Any("error", err))
	t.mu.Lock()
	defer t.mu.Unlock()
	if generation != t.generation {
		return
	}
	t.state = State{
		Stage:    StageError,
		Progress: t.state.Progress,
		Message:  streamErrorMessage,
	}
}

func clampProgress(next, current int) int {
	if next < current {
		return current
	}
	if next > 100 {
		return 100
	}
	return next
}
