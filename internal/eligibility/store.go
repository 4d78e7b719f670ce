package eligibility

import (
	"context"

	id "lekha/pkg/domain"
)

// Store persists plan recommendations.
//
// Contract:
//   - Get returns sentinel.ErrNotFound when the recommendation is unknown.
//   - ListByFirm returns newest first.
type Store interface {
	Create(ctx context.Context, rec *PlanRecommendation) error
	Get(ctx context.Context, recID id.RecommendationID) (*PlanRecommendation, error)
	Update(ctx context.Context, rec *PlanRecommendation) error
	ListByFirm(ctx context.Context, firmID id.FirmID) ([]*PlanRecommendation, error)
}
