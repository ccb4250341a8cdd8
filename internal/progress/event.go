package progress

import (
	"bytes"
	"encoding/json"
)

// wireEvent is the partially-typed payload of one progress event. Every
// field is individually optional; absent fields keep their prior values.
type wireEvent struct {
	JobID    string   `json:"job_id"`
	Stage    string   `json:"stage"`
	Status   string   `json:"status"`
	Progress *float64 `json:"progress"`
	S3Key    string   `json:"s3_key"`
}

// decodeEvent parses a progress payload defensively. Anything that is not
// a well-formed JSON object is rejected; the caller treats that as a
// no-op, never as a failure.
func decodeEvent(data string) (wireEvent, bool) {
	trimmed := bytes.TrimSpace([]byte(data))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return wireEvent{}, false
	}
	var event wireEvent
	if err := json.Unmarshal(trimmed, &event); err != nil {
		return wireEvent{}, false
	}
	return event, true
}
