package wizard

import (
	"fmt"
	"net/url"
	"sync"
)

// QueryParam is the URL query parameter mirroring the wizard state.
const QueryParam = "create"

// State is the externally visible (open, step) pair.
type State struct {
	Open bool
	Step Step
}

// Observer is notified after every state change. Hosts use it to project
// state into the URL.
type Observer func(State)

// Sequencer is the finite-state controller for one wizard session.
type Sequencer struct {
	mu       sync.Mutex
	flow     Flow
	state    State
	observer Observer
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithObserver registers a state-change observer.
func WithObserver(observer Observer) Option {
	return func(s *Sequencer) { s.observer = observer }
}

// NewSequencer builds a closed sequencer positioned at the flow's first step.
func NewSequencer(flow Flow, opts ...Option) *Sequencer {
	s := &Sequencer{
		flow:  flow,
		state: State{Open: false, Step: flow.First()},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Flow returns the flow this sequencer runs.
func (s *Sequencer) Flow() Flow { return s.flow }

// State returns the current (open, step) pair.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open opens the wizard at the given step, or at the first step when the
// argument is empty or unknown to the flow.
func (s *Sequencer) Open(step Step) {
	s.mu.Lock()
	if step == "" || !s.flow.Contains(step) {
		step = s.flow.First()
	}
	s.state = State{Open: true, Step: step}
	s.notifyAndUnlock()
}

// Advance moves to another step of the flow without changing openness.
func (s *Sequencer) Advance(step Step) error {
	s.mu.Lock()
	if !s.flow.Contains(step) {
		s.mu.Unlock()
		return fmt.Errorf("step %q does not belong to flow %q", step, s.flow.Name())
	}
	s.state.Step = step
	s.notifyAndUnlock()
	return nil
}

// Close closes the wizard and resets the step to the flow's first step.
func (s *Sequencer) Close() {
	s.mu.Lock()
	s.state = State{Open: false, Step: s.flow.First()}
	s.notifyAndUnlock()
}

// notifyAndUnlock releases the mutex, then invokes the observer outside
// of it, so observers may call back into the sequencer.
func (s *Sequencer) notifyAndUnlock() {
	state := s.state
	observer := s.observer
	s.mu.Unlock()
	if observer != nil {
		observer(state)
	}
}

// EncodeQuery projects the state into a copy of the given query values:
// the step's token when open, no parameter when closed.
func (s *Sequencer) EncodeQuery(values url.Values) url.Values {
	state := s.State()
	next := url.Values{}
	for key, vals := range values {
		next[key] = append([]string(nil), vals...)
	}
	if !state.Open {
		next.Del(QueryParam)
		return next
	}
	if token, ok := s.flow.Token(state.Step); ok {
		next.Set(QueryParam, token)
	}
	return next
}

// ApplyQuery restores state from a URL query: a recognized token opens the
// wizard at that step, an absent or unknown token closes it.
func (s *Sequencer) ApplyQuery(values url.Values) {
	token := values.Get(QueryParam)
	if token == "" {
		s.Close()
		return
	}
	step, ok := s.flow.StepForToken(token)
	if !ok {
		s.Close()
		return
	}
	s.Open(step)
}
