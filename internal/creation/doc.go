// Package creation orchestrates the project creation workflow: the
// wizard sequencer, the draft store, the progress tracker and the
// source submission adapter, composed behind one session-scoped
// surface. The orchestrator owns the session lifecycle from open
// through submission to the delayed close on completion.
package creation
