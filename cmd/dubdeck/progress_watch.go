package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	pbar "github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dubdeck/internal/creation"
	"dubdeck/internal/progress"
)

type submitResult struct {
	projectID string
	err       error
}

// watchCreation follows the session until it completes or fails. A
// live bar is rendered on terminals; otherwise state transitions are
// printed as plain lines.
func watchCreation(cmd *cobra.Command, orch *creation.Orchestrator, resultCh <-chan submitResult) (string, error) {
	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	var render func(progress.State)
	var finish func(failed bool)
	if interactive {
		render, finish = newBarRenderer()
	} else {
		render, finish = newLineRenderer(cmd)
	}
	defer finish(false)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var result *submitResult
	for {
		select {
		case <-cmd.Context().Done():
			orch.Close()
			return "", cmd.Context().Err()
		case r := <-resultCh:
			result = &r
			if r.err != nil {
				finish(true)
				orch.Close()
				return r.projectID, r.err
			}
		case <-ticker.C:
			state := orch.Progress()
			render(state)
			if state.Stage == progress.StageError {
				finish(true)
				orch.Close()
				return projectIDOf(result), errors.New(state.Message)
			}
			// The session closing after a successful submission is the
			// completion signal; the orchestrator already tore down.
			if result != nil && !orch.Sequencer().State().Open {
				render(progress.State{Stage: progress.StageDone, Progress: 100, Message: progress.StageDone.DefaultMessage()})
				finish(false)
				return result.projectID, nil
			}
		}
	}
}

func projectIDOf(result *submitResult) string {
	if result == nil {
		return ""
	}
	return result.projectID
}

func newBarRenderer() (func(progress.State), func(bool)) {
	pw := pbar.NewWriter()
	pw.SetOutputWriter(os.Stdout)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetTrackerLength(30)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Speed = false

	tracker := &pbar.Tracker{
		Message: progress.StageIdle.DefaultMessage(),
		Total:   100,
		Units:   pbar.UnitsDefault,
	}
	pw.AppendTracker(tracker)
	go pw.Render()

	render := func(state progress.State) {
		tracker.UpdateMessage(state.Message)
		tracker.SetValue(int64(state.Progress))
	}
	var done bool
	finish := func(failed bool) {
		if done {
			return
		}
		done = true
		if failed {
			tracker.MarkAsErrored()
		} else {
			tracker.MarkAsDone()
		}
		for pw.IsRenderInProgress() && pw.LengthActive() > 0 {
			time.Sleep(10 * time.Millisecond)
		}
		pw.Stop()
	}
	return render, finish
}

func newLineRenderer(cmd *cobra.Command) (func(progress.State), func(bool)) {
	var last progress.State
	render := func(state progress.State) {
		if state == last {
			return
		}
		last = state
		fmt.Fprintf(cmd.OutOrStdout(), "[%3d%%] %s: %s\n", state.Progress, state.Stage, state.Message)
	}
	finish := func(bool) {}
	return render, finish
}
