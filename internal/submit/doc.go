// Package submit carries a drafted source into a created project.
//
// File sources run the three backend calls of the upload sequence with
// fixed progress checkpoints between them; link sources register a
// server-side ingestion job and hand further progress to the event
// stream. Failures surface twice: once on the progress state and once
// as a notification, so the user sees both the frozen progress bar and
// an actionable notice.
package submit
