package trigger

import (
	"context"
	"time"

	id "lekha/pkg/domain"
)

// EventStore persists compliance events.
//
// Contract:
//   - Get returns sentinel.ErrNotFound when the event is unknown.
//   - MarkProcessed is idempotent.
type EventStore interface {
	Create(ctx context.Context, event *ComplianceEvent) error
	Get(ctx context.Context, eventID id.EventID) (*ComplianceEvent, error)
	MarkProcessed(ctx context.Context, eventID id.EventID, at time.Time) error
	ListByFirm(ctx context.Context, firmID id.FirmID, limit int) ([]*ComplianceEvent, error)
}

// Deduper reserves a derivation key. Reserve returns false when another
// derivation already holds the key inside its window.
type Deduper interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
