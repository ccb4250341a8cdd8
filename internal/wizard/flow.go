package wizard

import (
	"fmt"

	"dubdeck/internal/config"
)

// Step is one screen of the multi-step creation wizard.
type Step string

const (
	StepSource  Step = "source"
	StepDetails Step = "details"

	StepUpload    Step = "upload"
	StepSettingsA Step = "settings-a"
	StepSettingsB Step = "settings-b"
)

// Flow is one of the two mutually exclusive step configurations. A
// sequencer runs exactly one flow; the variants are alternative shapes of
// the same wizard, not simultaneous states.
type Flow struct {
	name   string
	steps  []Step
	tokens []string // URL token per step, parallel to steps
}

// SourceDetailsFlow is the primary two-step flow (source -> details).
func SourceDetailsFlow() Flow {
	return Flow{
		name:   config.FlowSourceDetails,
		steps:  []Step{StepSource, StepDetails},
		tokens: []string{"source", "details"},
	}
}

// UploadSettingsFlow is the legacy three-step flow
// (upload -> settings-a -> settings-b).
func UploadSettingsFlow() Flow {
	return Flow{
		name:   config.FlowUploadSettings,
		steps:  []Step{StepUpload, StepSettingsA, StepSettingsB},
		tokens: []string{"upload", "settings", "assign"},
	}
}

// FlowFromConfig resolves a configured flow name.
func FlowFromConfig(name string) (Flow, error) {
	switch name {
	case config.FlowSourceDetails, "":
		return SourceDetailsFlow(), nil
	case config.FlowUploadSettings:
		return UploadSettingsFlow(), nil
	default:
		return Flow{}, fmt.Errorf("unknown wizard flow %q", name)
	}
}

// Name returns the flow's configuration name.
func (f Flow) Name() string { return f.name }

// First returns the flow's initial step.
func (f Flow) First() Step {
	if len(f.steps) == 0 {
		return ""
	}
	return f.steps[0]
}

// Steps returns the ordered steps of the flow.
func (f Flow) Steps() []Step {
	return append([]Step(nil), f.steps...)
}

// Contains reports whether step belongs to the flow.
func (f Flow) Contains(step Step) bool {
	for _, s := range f.steps {
		if s == step {
			return true
		}
	}
	return false
}

// Before returns the step preceding the given one. The first step has no
// predecessor.
func (f Flow) Before(step Step) (Step, bool) {
	for i, s := range f.steps {
		if s == step && i > 0 {
			return f.steps[i-1], true
		}
	}
	return "", false
}

// After returns the step following the given one.
func (f Flow) After(step Step) (Step, bool) {
	for i, s := range f.steps {
		if s == step && i+1 < len(f.steps) {
			return f.steps[i+1], true
		}
	}
	return "", false
}

// Token returns the URL token for a step.
func (f Flow) Token(step Step) (string, bool) {
	for i, s := range f.steps {
		if s == step {
			return f.tokens[i], true
		}
	}
	return "", false
}

// StepForToken resolves a URL token back to its step.
func (f Flow) StepForToken(token string) (Step, bool) {
	for i, t := range f.tokens {
		if t == token {
			return f.steps[i], true
		}
	}
	return "", false
}
