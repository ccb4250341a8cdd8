// Package wizard governs which creation-wizard step is visible.
//
// The sequencer's (open, step) pair is the single source of truth. Hosts
// mirror it into a "create" URL query parameter for deep links and back
// navigation; the query is a derived view, re-applied through ApplyQuery,
// never an independent source of state.
package wizard
