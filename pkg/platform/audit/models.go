// Package audit is the append-only record of everything the engine does.
// Every state change in the system pairs with exactly one entry written
// through the Writer; entries are never updated or deleted after the write.
package audit

import (
	"time"

	id "lekha/pkg/domain"
)

// Action labels what happened. The set is closed; unknown actions are
// rejected at the write path.
type Action string

const (
	ActionEventTriggered          Action = "event_triggered"
	ActionTaskCreated             Action = "task_created"
	ActionTaskStatusChanged       Action = "task_status_changed"
	ActionTaskAssigned            Action = "task_assigned"
	ActionFilingSubmitted         Action = "filing_submitted"
	ActionDocumentUploaded        Action = "document_uploaded"
	ActionRiskDetected            Action = "risk_detected"
	ActionRiskResolved            Action = "risk_resolved"
	ActionRecommendationPresented Action = "recommendation_presented"
	ActionPlanEligibilityChecked  Action = "plan_eligibility_checked"
	ActionFirmProfileUpdated      Action = "firm_profile_updated"
	ActionDocumentTagged          Action = "document_tagged"
)

var validActions = map[Action]bool{
	ActionEventTriggered:          true,
	ActionTaskCreated:             true,
	ActionTaskStatusChanged:       true,
	ActionTaskAssigned:            true,
	ActionFilingSubmitted:         true,
	ActionDocumentUploaded:        true,
	ActionRiskDetected:            true,
	ActionRiskResolved:            true,
	ActionRecommendationPresented: true,
	ActionPlanEligibilityChecked:  true,
	ActionFirmProfileUpdated:      true,
	ActionDocumentTagged:          true,
}

// IsValid reports whether the action is part of the closed set.
func (a Action) IsValid() bool {
	return validActions[a]
}

// EntityType names the kind of record an entry refers to.
type EntityType string

const (
	EntityTask           EntityType = "task"
	EntityEvent          EntityType = "event"
	EntityRisk           EntityType = "risk"
	EntityRecommendation EntityType = "recommendation"
	EntityDocument       EntityType = "document"
	EntityFirm           EntityType = "firm"
)

// PerformerSystem is recorded when the engine itself, rather than an
// operator, performed the action (sweeps, event fan-out, detectors).
const PerformerSystem = "system"

// Entry is one immutable audit record. Keep it transport-agnostic so stores
// and sinks can fan out.
type Entry struct {
	ID         id.EventID
	UserID     id.UserID
	FirmID     id.FirmID
	Action     Action
	EntityType EntityType
	EntityID   string
	Details    map[string]any
	// PerformedBy is a user id string or the literal "system".
	PerformedBy string
	Timestamp   time.Time
	// Immutable is set on every write and must never be altered post-write.
	Immutable bool
}
