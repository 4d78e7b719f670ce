// Package eligibility watches firm facts crossing statutory thresholds and
// recommends registrations or plan changes before the obligation bites.
package eligibility

import (
	"time"

	id "lekha/pkg/domain"
)

// RecommendationType names what the firm should consider.
type RecommendationType string

const (
	RecommendPFRegistration  RecommendationType = "pf_registration"
	RecommendESIRegistration RecommendationType = "esi_registration"
	RecommendMCACompliance   RecommendationType = "mca_compliance"
	RecommendPlanUpgrade     RecommendationType = "plan_upgrade"
)

func (t RecommendationType) String() string {
	return string(t)
}

// Status is the lifecycle of a recommendation.
type Status string

const (
	StatusPresented Status = "presented"
	StatusAccepted  Status = "accepted"
	StatusDismissed Status = "dismissed"
)

// PlanRecommendation is one suggestion surfaced to a firm.
type PlanRecommendation struct {
	ID     id.RecommendationID
	UserID id.UserID
	FirmID id.FirmID
	Type   RecommendationType
	Reason string

	Details map[string]any

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
