// Package api is the HTTP client for the dubbing platform backend.
//
// It covers the project and storage endpoints the creation workflow
// consumes, plus the server-push progress stream. Timeout policy for
// request/response calls lives on the HTTP client; the progress stream
// uses a separate client without a global timeout because it is
// long-lived.
package api
