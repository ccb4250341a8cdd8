package draft

import (
	"fmt"
	"path/filepath"
)

// SourceKind identifies which source variant a draft carries.
type SourceKind string

const (
	SourceFile    SourceKind = "file"
	SourceYouTube SourceKind = "youtube"
)

// Source is the tagged source variant of a draft. Exactly one concrete
// type is present at a time; switching kinds replaces the whole value.
type Source interface {
	Kind() SourceKind
}

// FileSource describes a local media file chosen for upload.
// Name and Size mirror file metadata for display.
type FileSource struct {
	Path string
	Name string
	Size int64
}

// Kind implements Source.
func (FileSource) Kind() SourceKind { return SourceFile }

// YouTubeSource describes an external video registered by URL.
type YouTubeSource struct {
	URL string
}

// Kind implements Source.
func (YouTubeSource) Kind() SourceKind { return SourceYouTube }

// NewFileSource builds a FileSource from a path, filling Name from the
// path when not provided separately.
func NewFileSource(path string, size int64) FileSource {
	return FileSource{Path: path, Name: filepath.Base(path), Size: size}
}

// Settings are the values collected on the details step.
type Settings struct {
	Title               string
	DetectAutomatically bool
	SourceLanguage      string
	TargetLanguages     []string
	SpeakerCount        int
}

// Draft is the accumulated, not-yet-committed input for one creation
// workflow instance.
type Draft struct {
	Source              Source
	Title               string
	DetectAutomatically bool
	SourceLanguage      string
	TargetLanguages     []string
	SpeakerCount        int
}

// UploadSummary renders the "name • 12.3MB" line shown for a previously
// chosen file, or "" when the draft has no named file.
func (d Draft) UploadSummary() string {
	file, ok := d.Source.(FileSource)
	if !ok || file.Name == "" {
		return ""
	}
	sizeMB := float64(file.Size) / (1024 * 1024)
	return fmt.Sprintf("%s • %.1fMB", file.Name, sizeMB)
}
