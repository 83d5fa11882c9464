// Package notify delivers best-effort outcome notifications. Failures are
// reported to the caller for logging but must never abort signal handling.
package notify

import "context"

// Notifier posts a human-readable message about a handled signal.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Noop discards all messages. Used when notifications are disabled and in
// tests.
type Noop struct{}

func (Noop) Notify(context.Context, string) error { return nil }
