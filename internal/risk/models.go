// Package risk detects compliance exposure before it turns into penalties:
// mismatched GST returns, input tax credit left unavailed, filings running
// late, and obligations missing their mandatory documents.
package risk

import (
	"time"

	id "lekha/pkg/domain"
)

// Type classifies a detected risk.
type Type string

const (
	TypeGSTRMismatch    Type = "gstr_mismatch"
	TypeITCShortfall    Type = "itc_shortfall"
	TypeDelayedFiling   Type = "delayed_filing"
	TypeMissingDocument Type = "missing_document"
)

var validTypes = map[Type]bool{
	TypeGSTRMismatch:    true,
	TypeITCShortfall:    true,
	TypeDelayedFiling:   true,
	TypeMissingDocument: true,
}

func (t Type) IsValid() bool {
	return validTypes[t]
}

func (t Type) String() string {
	return string(t)
}

// Severity grades how urgent a risk is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) String() string {
	return string(s)
}

// Status is the lifecycle of a risk record.
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// RecommendedAction tells the firm what to do about a risk.
type RecommendedAction struct {
	Description      string
	Priority         id.TaskPriority
	EstimatedPenalty float64
}

// ComplianceRisk is one detected exposure for a firm.
type ComplianceRisk struct {
	ID          id.RiskID
	UserID      id.UserID
	FirmID      id.FirmID
	Type        Type
	Severity    Severity
	Description string

	// TaskID links the risk to the obligation it concerns, when there is one.
	TaskID id.TaskID

	Details map[string]any
	Action  RecommendedAction

	Status     Status
	DetectedAt time.Time
	ResolvedAt *time.Time
}
