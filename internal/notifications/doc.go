// Package notifications delivers user-facing outcome notices for the
// creation workflow. Notices are pushed over ntfy when a topic is
// configured; otherwise delivery is a no-op so callers never branch on
// configuration.
package notifications
