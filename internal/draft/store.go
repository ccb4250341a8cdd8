package draft

import "sync"

// Defaults configures factory values restored on Reset.
type Defaults struct {
	SourceLanguage string
	SpeakerCount   int
}

// Store owns the draft for a single active wizard session.
// No validation happens here; the form layer gates submissions.
type Store struct {
	mu       sync.Mutex
	defaults Defaults
	current  Draft
}

// NewStore builds a store holding a freshly defaulted draft.
func NewStore(defaults Defaults) *Store {
	if defaults.SpeakerCount <= 0 {
		defaults.SpeakerCount = 2
	}
	s := &Store{defaults: defaults}
	s.current = s.initial()
	return s
}

func (s *Store) initial() Draft {
	return Draft{
		Source:              FileSource{},
		Title:               "",
		DetectAutomatically: true,
		SourceLanguage:      s.defaults.SourceLanguage,
		TargetLanguages:     nil,
		SpeakerCount:        s.defaults.SpeakerCount,
	}
}

// Snapshot returns a copy of the current draft.
func (s *Store) Snapshot() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyDraft(s.current)
}

// UpdateSource replaces the source variant. Fields belonging to the other
// source kind disappear with the replaced value, so stale cross-type data
// cannot linger after the user switches modes.
func (s *Store) UpdateSource(source Source) {
	if source == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Source = source
}

// UpdateDetails overwrites the settings fields without touching the source.
func (s *Store) UpdateDetails(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Title = settings.Title
	s.current.DetectAutomatically = settings.DetectAutomatically
	s.current.SourceLanguage = settings.SourceLanguage
	s.current.TargetLanguages = append([]string(nil), settings.TargetLanguages...)
	s.current.SpeakerCount = settings.SpeakerCount
}

// Reset restores factory defaults.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.initial()
}

func copyDraft(d Draft) Draft {
	d.TargetLanguages = append([]string(nil), d.TargetLanguages...)
	return d
}
