package audit

import "context"

// Filter narrows audit reads. Zero-valued fields are not applied. Results
// are always ordered newest-first; Limit of 0 means no cap.
type Filter struct {
	UserID     string
	FirmID     string
	EntityType EntityType
	EntityID   string
	Action     Action
	Limit      int
}

// Store persists audit entries. Implementations are append-only: there is no
// update or delete path, by contract.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, error)
}
