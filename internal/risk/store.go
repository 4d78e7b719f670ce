package risk

import (
	"context"

	id "lekha/pkg/domain"
)

// ListFilter narrows a risk listing.
type ListFilter struct {
	Status Status
	Type   Type
	Limit  int
}

// Store persists compliance risks.
//
// Contract:
//   - Get returns sentinel.ErrNotFound when the risk is unknown.
//   - ListByFirm returns newest detections first.
type Store interface {
	Create(ctx context.Context, risk *ComplianceRisk) error
	Get(ctx context.Context, riskID id.RiskID) (*ComplianceRisk, error)
	Update(ctx context.Context, risk *ComplianceRisk) error
	ListByFirm(ctx context.Context, firmID id.FirmID, filter ListFilter) ([]*ComplianceRisk, error)
}
