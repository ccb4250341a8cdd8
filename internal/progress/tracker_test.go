package progress_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dubdeck/internal/progress"
	"dubdeck/internal/sse"
)

type fakeStream struct {
	events    chan sse.Event
	errs      chan error
	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		events: make(chan sse.Event, 16),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (f *fakeStream) Events() <-chan sse.Event { return f.events }
func (f *fakeStream) Errors() <-chan error     { return f.errs }
func (f *fakeStream) Close() {
	f.closeOnce.Do(func() { close(f.closed) })
}

func (f *fakeStream) emit(data string) {
	f.events <- sse.Event{Type: "progress", Data: data}
}

func (f *fakeStream) end() { close(f.events) }

type fakeOpener struct {
	mu      sync.Mutex
	streams []*fakeStream
	ids     []string

	// gate, when set, holds OpenProgressStream open until closed.
	gate chan struct{}
}

func (o *fakeOpener) OpenProgressStream(_ context.Context, projectID string) (progress.Stream, error) {
	o.mu.Lock()
	stream := newFakeStream()
	o.streams = append(o.streams, stream)
	o.ids = append(o.ids, projectID)
	gate := o.gate
	o.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return stream, nil
}

func (o *fakeOpener) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streams)
}

func (o *fakeOpener) last() *fakeStream {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.streams[len(o.streams)-1]
}

func waitForState(t *testing.T, tracker *progress.Tracker, cond func(progress.State) bool) progress.State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state := tracker.State()
		if cond(state) {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached, last state %+v", tracker.State())
	return progress.State{}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestUpdateIsMonotonic(t *testing.T) {
	tracker := progress.NewTracker(&fakeOpener{}, nil)

	tracker.Update(progress.StagePreparing, 10, "")
	tracker.Update(progress.StageUploading, 35, "")
	tracker.Update(progress.StageUploading, 20, "") // stale checkpoint

	state := tracker.State()
	if state.Progress != 35 {
		t.Fatalf("progress regressed to %d", state.Progress)
	}
	if state.Stage != progress.StageUploading {
		t.Fatalf("stage = %q", state.Stage)
	}
}

func TestUpdateUsesStageDefaultMessage(t *testing.T) {
	tracker := progress.NewTracker(&fakeOpener{}, nil)
	tracker.Update(progress.StagePreparing, 10, "")
	if got := tracker.State().Message; got != progress.StagePreparing.DefaultMessage() {
		t.Fatalf("message = %q", got)
	}

	tracker.Update(progress.StageUploading, 35, "custom")
	if got := tracker.State().Message; got != "custom" {
		t.Fatalf("message = %q", got)
	}
}

func TestDoneEventForcesHundred(t *testing.T) {
	opener := &fakeOpener{}
	completed := make(chan struct{})
	tracker := progress.NewTracker(opener, nil, progress.WithCompletionFunc(func() {
		close(completed)
	}))

	if err := tracker.StartTracking(context.Background(), "p1"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	stream := opener.last()
	stream.emit(`{"stage":"uploading","progress":40}`)
	stream.emit(`{"stage":"done","progress":73}`)

	select {
	case <-completed:
	case <-time.After(2 * time.Second):
		t.Fatal("completion callback never fired")
	}

	state := tracker.State()
	if state.Stage != progress.StageDone || state.Progress != 100 {
		t.Fatalf("state after done = %+v", state)
	}

	select {
	case <-stream.closed:
	default:
		t.Fatal("subscription not torn down after done")
	}
}

func TestMalformedPayloadsAreNoOps(t *testing.T) {
	opener := &fakeOpener{}
	tracker := progress.NewTracker(opener, nil)

	if err := tracker.StartTracking(context.Background(), "p1"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	stream := opener.last()
	stream.emit(`{"stage":"uploading","progress":40}`)
	waitForState(t, tracker, func(s progress.State) bool { return s.Progress == 40 })

	before := tracker.State()
	for _, payload := range []string{"", "null", "42", `"text"`, "{broken", "[1,2,3]"} {
		stream.emit(payload)
	}
	stream.emit(`{"status":"sync"}`) // well-formed marker to order the assertions

	state := waitForState(t, tracker, func(s progress.State) bool { return s.Message == "sync" })
	if state.Stage != before.Stage || state.Progress != before.Progress {
		t.Fatalf("malformed payloads changed state: before %+v, after %+v", before, state)
	}
}

func TestEventWithoutStageInfersProcessingFromIdle(t *testing.T) {
	opener := &fakeOpener{}
	tracker := progress.NewTracker(opener, nil)

	if err := tracker.StartTracking(context.Background(), "p1"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	stream := opener.last()

	stream.emit(`{"progress":5}`)
	state := waitForState(t, tracker, func(s progress.State) bool { return s.Progress == 5 })
	if state.Stage != progress.StageProcessing {
		t.Fatalf("stage = %q, want processing", state.Stage)
	}

	stream.emit(`{"stage":"downloading","progress":30}`)
	waitForState(t, tracker, func(s progress.State) bool { return s.Stage == progress.StageDownloading })

	// Heartbeat without a stage keeps the current one.
	stream.emit(`{"progress":45}`)
	state = waitForState(t, tracker, func(s progress.State) bool { return s.Progress == 45 })
	if state.Stage != progress.StageDownloading {
		t.Fatalf("heartbeat changed stage to %q", state.Stage)
	}
}

func TestStreamEventsNeverRegressProgress(t *testing.T) {
	opener := &fakeOpener{}
	tracker := progress.NewTracker(opener, nil)

	if err := tracker.StartTracking(context.Background(), "p1"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	stream := opener.last()
	stream.emit(`{"stage":"downloading","progress":60}`)
	waitForState(t, tracker, func(s progress.State) bool { return s.Progress == 60 })

	stream.emit(`{"stage":"downloading","progress":20}`)
	stream.emit(`{"status":"sync"}`)
	state := waitForState(t, tracker, func(s progress.State) bool { return s.Message == "sync" })
	if state.Progress != 60 {
		t.Fatalf("progress regressed to %d", state.Progress)
	}
}

func TestResetRestoresInitialStateAndClosesStream(t *testing.T) {
	opener := &fakeOpener{}
	tracker := progress.NewTracker(opener, nil)

	if err := tracker.StartTracking(context.Background(), "p1"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	first := opener.last()
	first.emit(`{"stage":"uploading","progress":40,"status":"working"}`)
	waitForState(t, tracker, func(s progress.State) bool { return s.Progress == 40 })

	tracker.Reset()

	state := tracker.State()
	if state != progress.Initial() {
		t.Fatalf("state after reset = %+v", state)
	}
	select {
	case <-first.closed:
	default:
		t.Fatal("reset left the subscription running")
	}

	// A new session starts clean, with no leaked message or progress.
	if err := tracker.StartTracking(context.Background(), "p2"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	second := opener.last()
	second.emit(`{"progress":3}`)
	state = waitForState(t, tracker, func(s progress.State) bool { return s.Progress == 3 })
	if state.Stage != progress.StageProcessing || state.Message == "working" {
		t.Fatalf("second session leaked prior state: %+v", state)
	}
}

func TestResetDuringSubscribeDiscardsStream(t *testing.T) {
	opener := &fakeOpener{gate: make(chan struct{})}
	tracker := progress.NewTracker(opener, nil)

	started := make(chan error, 1)
	go func() {
		started <- tracker.StartTracking(context.Background(), "p1")
	}()
	waitUntil(t, "subscription attempt", func() bool { return opener.count() == 1 })

	// Reset lands while the stream is still being opened; the late
	// subscription must not be installed over the reset.
	tracker.Reset()
	close(opener.gate)

	if err := <-started; err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	first := opener.last()
	waitUntil(t, "discarded stream close", func() bool {
		select {
		case <-first.closed:
			return true
		default:
			return false
		}
	})
	if state := tracker.State(); state != progress.Initial() {
		t.Fatalf("state after raced reset = %+v", state)
	}

	// The tracker is still usable afterwards.
	if err := tracker.StartTracking(context.Background(), "p2"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	second := opener.last()
	second.emit(`{"progress":4}`)
	waitForState(t, tracker, func(s progress.State) bool { return s.Progress == 4 })
}

func TestStartTrackingReplacesPriorSubscription(t *testing.T) {
	opener := &fakeOpener{}
	tracker := progress.NewTracker(opener, nil)

	if err := tracker.StartTracking(context.Background(), "p1"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	first := opener.last()

	if err := tracker.StartTracking(context.Background(), "p2"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	select {
	case <-first.closed:
	default:
		t.Fatal("prior subscription left running")
	}

	// Late events from the replaced stream are discarded.
	first.emit(`{"stage":"uploading","progress":90}`)
	first.end()
	second := opener.last()
	second.emit(`{"progress":7}`)
	state := waitForState(t, tracker, func(s progress.State) bool { return s.Progress != 0 })
	if state.Progress != 7 {
		t.Fatalf("stale event applied: %+v", state)
	}
}

func TestTransportErrorIsRecoverable(t *testing.T) {
	opener := &fakeOpener{}
	tracker := progress.NewTracker(opener, nil)

	if err := tracker.StartTracking(context.Background(), "p1"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	stream := opener.last()
	stream.emit(`{"stage":"downloading","progress":50}`)
	waitForState(t, tracker, func(s progress.State) bool { return s.Progress == 50 })

	stream.errs <- context.DeadlineExceeded
	stream.end()

	state := waitForState(t, tracker, func(s progress.State) bool { return s.Stage == progress.StageError })
	if state.Progress != 50 {
		t.Fatalf("error did not freeze progress: %+v", state)
	}

	// The session is still usable: a user-initiated retry starts over.
	if err := tracker.StartTracking(context.Background(), "p1"); err != nil {
		t.Fatalf("retry StartTracking: %v", err)
	}
}

func TestReportErrorDefaultsMessage(t *testing.T) {
	tracker := progress.NewTracker(&fakeOpener{}, nil)
	tracker.Update(progress.StageUploading, 35, "")
	tracker.ReportError("")

	state := tracker.State()
	if state.Stage != progress.StageError || state.Progress != 35 || state.Message == "" {
		t.Fatalf("state = %+v", state)
	}
}
