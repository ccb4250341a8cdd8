// Package sse implements a client for the text/event-stream wire format.
//
// Subscriptions are explicit resources: every teardown path must call
// Close rather than rely on garbage collection to drop the connection.
// The client performs no automatic reconnection; retry policy belongs to
// the caller.
package sse
