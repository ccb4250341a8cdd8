package progress

// Stage is a named phase of an upload/registration job.
type Stage string

const (
	StageIdle        Stage = "idle"
	StagePreparing   Stage = "preparing"
	StageUploading   Stage = "uploading"
	StageFinalizing  Stage = "finalizing"
	StageProcessing  Stage = "processing"
	StageDownloading Stage = "downloading"
	StageDone        Stage = "done"
	StageError       Stage = "error"
)

var stageMessages = map[Stage]string{
	StageIdle:        "대기 중",
	StagePreparing:   "업로드 준비 중",
	StageUploading:   "영상 업로드 중",
	StageFinalizing:  "업로드 마무리 중",
	StageProcessing:  "요청 처리 중",
	StageDownloading: "콘텐츠 다운로드 중",
	StageDone:        "완료되었습니다.",
	StageError:       "오류가 발생했습니다.",
}

// genericErrorMessage is shown when a failure carries no specific message.
const genericErrorMessage = "요청 처리 중 오류가 발생했습니다."

// streamErrorMessage is shown when the event stream itself fails.
const streamErrorMessage = "실시간 진행률 수신 중 문제가 발생했습니다."

// ParseStage converts a wire value into a known Stage.
func ParseStage(value string) (Stage, bool) {
	stage := Stage(value)
	_, ok := stageMessages[stage]
	return stage, ok
}

// DefaultMessage returns the UI-facing status line for a stage.
func (s Stage) DefaultMessage() string {
	return stageMessages[s]
}

// Terminal reports whether the stage ends a tracking session.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageError
}

// State is the transient per-session progress record.
type State struct {
	Stage    Stage
	Progress int
	Message  string
}

// Initial is the state of a freshly created or reset tracker.
func Initial() State {
	return State{Stage: StageIdle, Progress: 0}
}
