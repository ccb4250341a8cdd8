// Package progress tracks the lifecycle of one upload/registration job.
//
// A tracker owns at most one server-push subscription per wizard session.
// Progress is monotonically non-decreasing until an explicit reset, a
// "done" event is authoritative over its own numeric progress field, and
// malformed server payloads are ignored rather than surfaced.
package progress
