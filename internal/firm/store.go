package firm

import (
	"context"

	id "lekha/pkg/domain"
)

// Store persists firm profiles.
//
// Contract:
//   - Get returns sentinel.ErrNotFound when the firm is unknown.
//   - Upsert replaces the stored profile wholesale.
//   - ListIDs returns every registered firm ID, for batch sweeps.
type Store interface {
	Get(ctx context.Context, firmID id.FirmID) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
	ListIDs(ctx context.Context) ([]id.FirmID, error)
}
