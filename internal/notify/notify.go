// Package notify is the boundary to the platform's notification dispatcher.
// The engine treats delivery as fire-and-forget: at-least-once downstream is
// acceptable because emissions are deduped by token before dispatch.
package notify

import (
	"context"
	"log/slog"
)

// Events emitted by the settlement engine.
const (
	EventReceipt  = "invoice.receipt"
	EventReminder = "invoice.reminder"
)

// Dispatcher sends a named event with a template payload. Implementations
// must not be relied on for consistency; a committed payment stands whether
// or not its receipt went out.
type Dispatcher interface {
	Emit(ctx context.Context, event string, payload map[string]any) error
}

// LogDispatcher is the default dispatcher: it records the emission and does
// nothing else. The real email dispatcher lives in the platform repo and is
// injected at bootstrap.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d *LogDispatcher) Emit(_ context.Context, event string, payload map[string]any) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification emitted", "event", event, "payload", payload)
	return nil
}

// DedupingDispatcher wraps a Dispatcher and suppresses repeat emissions for
// the same dedupe token (e.g. "payment:<id>").
type DedupingDispatcher struct {
	Next   Dispatcher
	Dedupe Deduper
	Logger *slog.Logger
}

// EmitOnce dispatches unless the token was already seen and reports whether
// an emission actually went out. A dedupe-store error fails open: losing a
// duplicate receipt is worse than sending one twice.
func (d *DedupingDispatcher) EmitOnce(ctx context.Context, token, event string, payload map[string]any) (bool, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seen, err := d.Dedupe.Seen(ctx, token)
	if err != nil {
		logger.Warn("notification dedupe check failed", "token", token, "error", err)
	} else if seen {
		logger.Debug("notification suppressed", "token", token, "event", event)
		return false, nil
	}
	if err := d.Next.Emit(ctx, event, payload); err != nil {
		return false, err
	}
	if err := d.Dedupe.Mark(ctx, token); err != nil {
		logger.Warn("notification dedupe mark failed", "token", token, "error", err)
	}
	return true, nil
}
