// Package rules holds the static compliance rule catalog and the graph that
// resolves which rules fire for a business event. Rules are immutable at
// runtime; the engine only reads them.
package rules

import (
	id "lekha/pkg/domain"
)

// ConditionOp is the comparison a trigger condition applies.
type ConditionOp string

const (
	OpEquals         ConditionOp = "eq"
	OpGreaterOrEqual ConditionOp = "gte"
	OpLessOrEqual    ConditionOp = "lte"
)

// Condition is a typed predicate over the event payload. A bare literal in
// the catalog parses to OpEquals; {gte: n} and {lte: n} parse to the numeric
// bounds. A payload missing the field fails the condition.
type Condition struct {
	Field string
	Op    ConditionOp
	Value any
}

// DueDatePolicyType selects how a rule's due date derives from the trigger.
type DueDatePolicyType string

const (
	DueFixedDay       DueDatePolicyType = "fixed_day"
	DueMonthEnd       DueDatePolicyType = "month_end"
	DueQuarterEnd     DueDatePolicyType = "quarter_end"
	DueYearEnd        DueDatePolicyType = "year_end"
	DueDaysAfterEvent DueDatePolicyType = "days_after_event"
)

// DueDatePolicy carries the policy type plus its offsets. Only the fields
// the type uses are meaningful.
type DueDatePolicy struct {
	Type        DueDatePolicyType
	DayOfMonth  int
	MonthOffset int
	DaysAfter   int
}

// RequiredDocument is one document slot an obligation expects.
type RequiredDocument struct {
	DocumentType string
	Mandatory    bool
}

// TaskConfiguration shapes the task instances a rule materializes.
type TaskConfiguration struct {
	Priority         id.TaskPriority
	RequiresCAReview bool
}

// ComplianceRule is one entry of the static catalog.
//
// Malformed rules (unknown event, entity, or due-date policy) are tolerated:
// they index as given and silently match nothing or leave the due date
// unchanged, keeping the catalog forward-compatible.
type ComplianceRule struct {
	ID                id.RuleID
	Name              string
	Description       string
	Category          string
	EntityTypes       []id.EntityType
	TriggerEvent      id.SystemEventType
	TriggerConditions []Condition
	Frequency         id.ComplianceFrequency
	DueDate           DueDatePolicy
	RequiredDocuments []RequiredDocument
	Dependencies      []id.RuleID
	TaskConfig        TaskConfiguration
	Active            bool
}
