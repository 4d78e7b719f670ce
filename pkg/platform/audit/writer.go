package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	id "lekha/pkg/domain"
)

// Writer is the only path that produces audit rows. Every write stamps
// immutable=true and a server-assigned timestamp; callers cannot override
// either. Writes are synchronous and fail-closed: if the entry cannot be
// persisted the calling operation must not pretend it was recorded.
type Writer struct {
	store  Store
	logger *slog.Logger
}

// Option configures the Writer.
type Option func(*Writer)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter creates the audit writer over a store.
func NewWriter(store Store, opts ...Option) (*Writer, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	w := &Writer{store: store}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Append validates and persists one audit entry. The server assigns the
// entry ID and timestamp; Immutable is forced to true.
func (w *Writer) Append(ctx context.Context, entry Entry) error {
	if !entry.Action.IsValid() {
		return fmt.Errorf("unknown audit action %q", entry.Action)
	}
	if entry.PerformedBy == "" {
		entry.PerformedBy = PerformerSystem
	}
	entry.ID = id.NewEventID()
	entry.Timestamp = time.Now().UTC()
	entry.Immutable = true

	if err := w.store.Append(ctx, entry); err != nil {
		if w.logger != nil {
			w.logger.ErrorContext(ctx, "CRITICAL: audit append failed",
				"action", entry.Action,
				"entity_type", entry.EntityType,
				"entity_id", entry.EntityID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	return nil
}

// List reads audit entries through the store, newest-first.
func (w *Writer) List(ctx context.Context, filter Filter) ([]Entry, error) {
	return w.store.List(ctx, filter)
}
