package api

// CreateProjectRequest is the payload for POST /api/projects.
type CreateProjectRequest struct {
	Title               string   `json:"title"`
	SourceType          string   `json:"source_type"`
	YouTubeURL          string   `json:"youtube_url,omitempty"`
	FileName            string   `json:"file_name,omitempty"`
	FileSize            int64    `json:"file_size,omitempty"`
	DetectAutomatically bool     `json:"detect_automatically"`
	SourceLanguage      string   `json:"source_language"`
	TargetLanguages     []string `json:"target_languages"`
	SpeakerCount        int      `json:"speaker_count"`
	OwnerCode           string   `json:"owner_code"`
}

// CreateProjectResponse carries the identifier of a created project.
type CreateProjectResponse struct {
	ProjectID string `json:"project_id"`
}

// PrepareUploadRequest is the payload for the prepare-upload call.
type PrepareUploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// PrepareUploadResponse is the presigned upload destination: a time-limited
// URL plus auxiliary form fields for a direct client-to-storage transfer.
type PrepareUploadResponse struct {
	UploadURL string            `json:"upload_url"`
	Fields    map[string]string `json:"fields"`
	ObjectKey string            `json:"object_key"`
}

// FinalizeUploadRequest is the payload for the finalize-upload call.
type FinalizeUploadRequest struct {
	ObjectKey string `json:"object_key"`
}

// RegisterYouTubeRequest is the payload for the register-youtube call.
type RegisterYouTubeRequest struct {
	YouTubeURL string `json:"youtube_url"`
}

// Project is one project record as listed by the backend.
type Project struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	SourceLanguage  string   `json:"sourceLanguage"`
	TargetLanguages []string `json:"targetLanguages"`
	Status          string   `json:"status"`
	Progress        int      `json:"progress"`
	CreatedAt       string   `json:"createdAt"`
}

type projectListResponse struct {
	Items []Project `json:"items"`
}
