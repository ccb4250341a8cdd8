package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"dubdeck/internal/api"
	"dubdeck/internal/draft"
	"dubdeck/internal/notifications"
	"dubdeck/internal/progress"
)

// Upload checkpoints. The numbers bracket the expected cost of each
// phase so the bar moves even when the backend gives no finer signal.
const (
	progressPrepared   = 10
	progressUploading  = 35
	progressFinalizing = 85
	progressDone       = 100

	progressLinkQueued   = 1
	progressLinkAccepted = 5
)

const (
	uploadFailedMessage   = "파일 업로드에 실패했습니다. 잠시 후 다시 시도해주세요."
	registerFailedMessage = "YouTube 소스 등록에 실패했습니다."

	uploadFailedDetail   = "업로드 중 오류가 발생했습니다."
	registerFailedDetail = "YouTube 링크를 다시 확인한 뒤 재시도해주세요."

	linkQueuedMessage   = "YouTube 링크 확인 중..."
	linkAcceptedMessage = "YouTube 콘텐츠를 불러오는 중..."
)

// ErrMissingFile reports a file-mode submission whose draft never got a
// chosen file.
var ErrMissingFile = errors.New("draft has no file source")

// ErrMissingURL reports a link-mode submission whose draft never got a
// URL.
var ErrMissingURL = errors.New("draft has no link source")

// Backend is the slice of the API client the adapter drives.
type Backend interface {
	PrepareUpload(ctx context.Context, projectID, fileName, contentType string) (api.PrepareUploadResponse, error)
	UploadFile(ctx context.Context, dest api.PrepareUploadResponse, filePath, contentType string) error
	FinalizeUpload(ctx context.Context, projectID, objectKey string) error
	RegisterYouTubeSource(ctx context.Context, projectID, youtubeURL string) error
}

// ProgressSink receives locally observed checkpoints and failures.
type ProgressSink interface {
	Update(stage progress.Stage, percent int, message string)
	ReportError(message string)
}

// Adapter submits a draft's source to a created project.
type Adapter struct {
	backend     Backend
	sink        ProgressSink
	notifier    notifications.Service
	logger      *slog.Logger
	contentType string
}

// NewAdapter builds an adapter. contentType is used for uploads when
// the file's own type is unknown.
func NewAdapter(backend Backend, sink ProgressSink, notifier notifications.Service, logger *slog.Logger, contentType string) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}
	return &Adapter{
		backend:     backend,
		sink:        sink,
		notifier:    notifier,
		logger:      logger,
		contentType: contentType,
	}
}

// SubmitFile runs the presigned upload sequence for the draft's file.
// On failure the progress state freezes in the error stage and a
// failure notice goes out; the returned error names the failed phase.
func (a *Adapter) SubmitFile(ctx context.Context, projectID string, d draft.Draft) error {
	source, ok := d.Source.(draft.FileSource)
	if !ok {
		return ErrMissingFile
	}

	logger := a.logger.With(
		slog.String("project_id", projectID),
		slog.String("file", source.Name),
	)

	a.sink.Update(progress.StagePreparing, progressPrepared, "")
	dest, err := a.backend.PrepareUpload(ctx, projectID, source.Name, a.contentType)
	if err != nil {
		return a.uploadFailed(ctx, logger, d.Title, fmt.Errorf("prepare upload: %w", err))
	}

	a.sink.Update(progress.StageUploading, progressUploading, "")
	if err := a.backend.UploadFile(ctx, dest, source.Path, a.contentType); err != nil {
		return a.uploadFailed(ctx, logger, d.Title, fmt.Errorf("transfer file: %w", err))
	}

	a.sink.Update(progress.StageFinalizing, progressFinalizing, "")
	if err := a.backend.FinalizeUpload(ctx, projectID, dest.ObjectKey); err != nil {
		return a.uploadFailed(ctx, logger, d.Title, fmt.Errorf("finalize upload: %w", err))
	}

	a.sink.Update(progress.StageDone, progressDone, "")
	logger.Info("source file uploaded", slog.String("object_key", dest.ObjectKey))
	if err := a.notifier.NotifyUploadCompleted(ctx, source.Name); err != nil {
		logger.Warn("upload notification failed", slog.Any("error", err))
	}
	return nil
}

// SubmitURL registers the draft's link for server-side ingestion. The
// early percent bumps cover the registration round trip; everything
// after acceptance arrives on the project's event stream.
func (a *Adapter) SubmitURL(ctx context.Context, projectID string, d draft.Draft) error {
	source, ok := d.Source.(draft.YouTubeSource)
	if !ok {
		return ErrMissingURL
	}

	logger := a.logger.With(slog.String("project_id", projectID))

	a.sink.Update(progress.StageProcessing, progressLinkQueued, linkQueuedMessage)
	if err := a.backend.RegisterYouTubeSource(ctx, projectID, source.URL); err != nil {
		a.sink.ReportError(registerFailedMessage)
		if notifyErr := a.notifier.NotifyCreationFailed(ctx, d.Title, registerFailedDetail); notifyErr != nil {
			logger.Warn("failure notification failed", slog.Any("error", notifyErr))
		}
		logger.Error("link registration failed", slog.Any("error", err))
		return fmt.Errorf("register link source: %w", err)
	}

	a.sink.Update(progress.StageProcessing, progressLinkAccepted, linkAcceptedMessage)
	logger.Info("link source registered")
	return nil
}

func (a *Adapter) uploadFailed(ctx context.Context, logger *slog.Logger, title string, err error) error {
	a.sink.ReportError(uploadFailedMessage)
	if notifyErr := a.notifier.NotifyCreationFailed(ctx, title, uploadFailedDetail); notifyErr != nil {
		logger.Warn("failure notification failed", slog.Any("error", notifyErr))
	}
	logger.Error("file submission failed", slog.Any("error", err))
	return err
}
