package tasks

import (
	"context"
	"time"

	id "lekha/pkg/domain"
)

// ListFilter narrows task listings. Zero-valued fields are not applied.
type ListFilter struct {
	Status   Status
	Category string
	Limit    int
}

// Store persists task instances. Implementations return sentinel.ErrNotFound
// for unknown ids so the service can translate to domain errors.
type Store interface {
	Create(ctx context.Context, task *Instance) error
	Get(ctx context.Context, taskID id.TaskID) (*Instance, error)
	Update(ctx context.Context, task *Instance) error
	ListByFirm(ctx context.Context, firmID id.FirmID, filter ListFilter) ([]*Instance, error)
	// ListOpenDueBefore returns pending and in_progress tasks whose due
	// date is strictly before the cutoff. Feeds the overdue sweep and the
	// delayed-filing detector.
	ListOpenDueBefore(ctx context.Context, cutoff time.Time) ([]*Instance, error)
}
