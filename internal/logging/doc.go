// Package logging constructs slog loggers for dubdeck.
//
// Two formats are supported: a compact console format for interactive use
// and JSON for log collection. Components attach a "component" attribute
// via WithComponent so console lines stay scannable.
package logging
