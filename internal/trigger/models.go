// Package trigger turns system events into compliance tasks. An incoming
// event is persisted, resolved against the rule graph, and each matched rule
// yields at most one task; duplicate derivations within a rule's compliance
// window are suppressed.
package trigger

import (
	"time"

	"lekha/internal/rules"
	id "lekha/pkg/domain"
)

// ComplianceEvent is a persisted system event.
type ComplianceEvent struct {
	ID      id.EventID
	UserID  id.UserID
	FirmID  id.FirmID
	Type    id.SystemEventType
	Payload map[string]any

	Processed   bool
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// RuleOutcome is the per-rule result of processing one event. Exactly one of
// TaskID, SkipReason, and Err is meaningful.
type RuleOutcome struct {
	RuleID     id.RuleID
	TaskID     id.TaskID
	SkipReason string
	Err        error
}

// Created reports whether this rule produced a task.
func (o RuleOutcome) Created() bool {
	return !o.TaskID.IsNil()
}

// Skip reasons recorded on rule outcomes.
const (
	SkipDuplicateWindow = "duplicate_window"
)

// Result summarizes one ProcessComplianceEvent call. Processing is
// best-effort per rule: one rule failing does not stop the others, and the
// caller sees every outcome.
type Result struct {
	EventID      id.EventID
	Outcomes     []RuleOutcome
	Cycles       []rules.CycleEdge
	TasksCreated int
}
