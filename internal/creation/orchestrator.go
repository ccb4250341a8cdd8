package creation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dubdeck/internal/api"
	"dubdeck/internal/draft"
	"dubdeck/internal/logging"
	"dubdeck/internal/notifications"
	"dubdeck/internal/progress"
	"dubdeck/internal/submit"
	"dubdeck/internal/wizard"
)

const defaultCloseDelay = 400 * time.Millisecond

const createFailedDetail = "프로젝트 생성 요청에 실패했습니다."

// ErrSessionClosed reports that the wizard was closed while a submission
// was in flight. The in-flight result is discarded.
var ErrSessionClosed = errors.New("wizard closed during submission")

// Client is the backend surface the orchestrator and its submission
// adapter drive. *api.Client satisfies it.
type Client interface {
	CreateProject(ctx context.Context, req api.CreateProjectRequest) (string, error)
	OwnerCode() string
	submit.Backend
	progress.StreamOpener
}

// Deps wires an orchestrator.
type Deps struct {
	Flow     wizard.Flow
	Client   Client
	Notifier notifications.Service
	Logger   *slog.Logger

	// Observer, when set, receives wizard state changes for URL sync.
	Observer wizard.Observer

	Defaults draft.Defaults

	// CloseDelay is the pause between completion and teardown, long
	// enough for the full bar to be seen. Zero means the default.
	CloseDelay time.Duration

	// ContentType is the upload content type when the file's own type
	// is unknown.
	ContentType string
}

// Orchestrator runs one project creation session at a time.
type Orchestrator struct {
	sequencer *wizard.Sequencer
	drafts    *draft.Store
	tracker   *progress.Tracker
	submitter *submit.Adapter
	client    Client
	notifier  notifications.Service
	logger    *slog.Logger

	closeDelay time.Duration

	mu        sync.Mutex
	finishing bool
	session   int
}

// New builds an orchestrator in the closed state.
func New(deps Deps) *Orchestrator {
	logger := logging.WithComponent(deps.Logger, "creation")
	closeDelay := deps.CloseDelay
	if closeDelay <= 0 {
		closeDelay = defaultCloseDelay
	}

	o := &Orchestrator{
		client:     deps.Client,
		notifier:   deps.Notifier,
		logger:     logger,
		closeDelay: closeDelay,
	}
	o.sequencer = wizard.NewSequencer(deps.Flow, wizard.WithObserver(deps.Observer))
	o.drafts = draft.NewStore(deps.Defaults)
	o.tracker = progress.NewTracker(deps.Client, logger, progress.WithCompletionFunc(o.finishCreation))
	o.submitter = submit.NewAdapter(deps.Client, o.tracker, deps.Notifier, logger, deps.ContentType)
	return o
}

// Sequencer exposes the wizard state machine, for URL round-tripping.
func (o *Orchestrator) Sequencer() *wizard.Sequencer { return o.sequencer }

// Draft returns a copy of the session's accumulated draft.
func (o *Orchestrator) Draft() draft.Draft { return o.drafts.Snapshot() }

// Progress returns the session's current progress state.
func (o *Orchestrator) Progress() progress.State { return o.tracker.State() }

// Open starts a session at the given step, or at the flow's first step
// when the argument is empty.
func (o *Orchestrator) Open(step wizard.Step) {
	o.mu.Lock()
	o.finishing = false
	o.session++
	o.mu.Unlock()
	o.sequencer.Open(step)
}

// Close abandons the session: the draft, the wizard position and any
// progress subscription are all discarded. Safe at any point of the
// lifecycle.
func (o *Orchestrator) Close() {
	o.teardown()
}

// SubmitSource records the chosen source and advances to the next step.
// The previous source variant is replaced wholesale, so switching modes
// leaves no stale fields behind.
func (o *Orchestrator) SubmitSource(source draft.Source) error {
	state := o.sequencer.State()
	if !state.Open {
		return fmt.Errorf("wizard is not open")
	}
	if source == nil {
		return fmt.Errorf("no source provided")
	}

	o.drafts.UpdateSource(source)
	o.logger.Info("source ready", slog.String("mode", string(source.Kind())))

	next, ok := o.sequencer.Flow().After(state.Step)
	if !ok {
		return nil
	}
	return o.sequencer.Advance(next)
}

// SubmitDetails commits the draft: it creates the project record, then
// dispatches the source submission by kind. The returned id identifies
// the created project; for link sources, completion arrives later via
// the progress stream.
func (o *Orchestrator) SubmitDetails(ctx context.Context, settings draft.Settings) (string, error) {
	state := o.sequencer.State()
	if !state.Open {
		return "", fmt.Errorf("wizard is not open")
	}
	o.mu.Lock()
	session := o.session
	o.mu.Unlock()

	o.drafts.UpdateDetails(settings)
	d := o.drafts.Snapshot()

	if file, ok := d.Source.(draft.FileSource); ok && file.Path == "" {
		return "", submit.ErrMissingFile
	}

	projectID, err := o.client.CreateProject(ctx, buildCreateRequest(d, o.client.OwnerCode()))
	if !o.sessionAlive(session) {
		o.logger.Info("dropping submission result for closed session", slog.String("title", d.Title))
		return "", ErrSessionClosed
	}
	if err != nil {
		o.tracker.ReportError("")
		if notifyErr := o.notifier.NotifyCreationFailed(ctx, d.Title, createFailedDetail); notifyErr != nil {
			o.logger.Warn("failure notification failed", slog.Any("error", notifyErr))
		}
		return "", fmt.Errorf("create project: %w", err)
	}

	o.logger.Info("project created",
		slog.String("project_id", projectID),
		slog.String("title", d.Title),
		slog.String("mode", string(d.Source.Kind())),
		slog.Int("targets", len(d.TargetLanguages)),
	)

	switch d.Source.Kind() {
	case draft.SourceFile:
		submitErr := o.submitter.SubmitFile(ctx, projectID, d)
		if !o.sessionAlive(session) {
			// Any checkpoints the upload applied after the close are
			// wiped along with it.
			o.tracker.Reset()
			return projectID, ErrSessionClosed
		}
		if submitErr != nil {
			return projectID, submitErr
		}
		o.finishCreation()
	case draft.SourceYouTube:
		// Tracking starts before registration so no early event from
		// the ingestion job can slip past the subscription.
		if err := o.tracker.StartTracking(ctx, projectID); err != nil {
			o.tracker.ReportError("")
			if notifyErr := o.notifier.NotifyCreationFailed(ctx, d.Title, createFailedDetail); notifyErr != nil {
				o.logger.Warn("failure notification failed", slog.Any("error", notifyErr))
			}
			return projectID, err
		}
		submitErr := o.submitter.SubmitURL(ctx, projectID, d)
		if !o.sessionAlive(session) {
			o.tracker.Reset()
			return projectID, ErrSessionClosed
		}
		if submitErr != nil {
			return projectID, submitErr
		}
	default:
		return projectID, fmt.Errorf("unknown source kind %q", d.Source.Kind())
	}
	return projectID, nil
}

// GoBack returns to the previous step, keeping the draft intact.
func (o *Orchestrator) GoBack() error {
	state := o.sequencer.State()
	if !state.Open {
		return fmt.Errorf("wizard is not open")
	}
	prev, ok := o.sequencer.Flow().Before(state.Step)
	if !ok {
		return fmt.Errorf("no step before %q", state.Step)
	}
	return o.sequencer.Advance(prev)
}

// finishCreation runs once per session when the submission reports
// done. The teardown is delayed so the completed bar is visible before
// the wizard disappears.
func (o *Orchestrator) finishCreation() {
	o.mu.Lock()
	if o.finishing {
		o.mu.Unlock()
		return
	}
	o.finishing = true
	session := o.session
	o.mu.Unlock()

	title := o.drafts.Snapshot().Title
	time.AfterFunc(o.closeDelay, func() {
		// Closing the wizard during the delay tears the session down
		// first; the stale timer then has nothing left to do.
		if !o.sessionAlive(session) {
			return
		}
		o.teardown()
		// Background context: the submission's request context may be
		// done by the time the delayed close fires.
		if err := o.notifier.NotifyCreationCompleted(context.Background(), title); err != nil {
			o.logger.Warn("completion notification failed", slog.Any("error", err))
		}
		o.logger.Info("creation session completed", slog.String("title", title))
	})
}

// sessionAlive reports whether the session a submission started under is
// still the current one. Close and completion both invalidate it, so
// results that resolve afterwards are dropped instead of reviving the
// torn-down state.
func (o *Orchestrator) sessionAlive(session int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session == session
}

func (o *Orchestrator) teardown() {
	// The session is invalidated before anything is reset, so an
	// in-flight submission that resolves mid-teardown is still dropped.
	o.mu.Lock()
	o.finishing = false
	o.session++
	o.mu.Unlock()
	o.drafts.Reset()
	o.tracker.Reset()
	o.sequencer.Close()
}

func buildCreateRequest(d draft.Draft, ownerCode string) api.CreateProjectRequest {
	req := api.CreateProjectRequest{
		Title:               d.Title,
		SourceType:          string(d.Source.Kind()),
		DetectAutomatically: d.DetectAutomatically,
		SourceLanguage:      d.SourceLanguage,
		TargetLanguages:     d.TargetLanguages,
		SpeakerCount:        d.SpeakerCount,
		OwnerCode:           ownerCode,
	}
	switch source := d.Source.(type) {
	case draft.FileSource:
		req.FileName = source.Name
		req.FileSize = source.Size
	case draft.YouTubeSource:
		req.YouTubeURL = source.URL
	}
	return req
}
