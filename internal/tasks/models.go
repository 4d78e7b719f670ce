// Package tasks owns the lifecycle of derived obligations. A task instance
// is created by the trigger service from exactly one rule and one event, and
// every mutation afterward goes through the orchestrator so each change
// pairs with one audit entry.
package tasks

import (
	"time"

	id "lekha/pkg/domain"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFiled      Status = "filed"
	StatusOverdue    Status = "overdue"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusFiled:      true,
	StatusOverdue:    true,
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) String() string {
	return string(s)
}

// IsOpen reports whether the task still awaits work. Only open tasks are
// swept to overdue or flagged by the delayed-filing detector.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusInProgress
}

// transitions holds the moves a caller may request. Overdue is deliberately
// absent from every target set: it is reachable only through the sweep,
// never as a side effect of a user action. An overdue task can be picked
// back up or closed out.
var transitions = map[Status]map[Status]bool{
	StatusPending:    {StatusInProgress: true, StatusCompleted: true, StatusFiled: true},
	StatusInProgress: {StatusCompleted: true, StatusFiled: true},
	StatusOverdue:    {StatusInProgress: true, StatusCompleted: true, StatusFiled: true},
}

// CanTransition reports whether a caller-requested move from one status to
// another is legal.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// DocumentSlot is one required-document slot on a task. Linking a vault
// document fills the slot.
type DocumentSlot struct {
	DocumentType string
	Mandatory    bool
	DocumentID   id.DocumentID
	Uploaded     bool
	UploadedAt   *time.Time
}

// FilingDetails is stamped when the obligation is filed with the portal.
type FilingDetails struct {
	Reference          string
	Period             string
	PortalSubmissionID string
}

// Instance is a concrete, dated obligation for a firm.
type Instance struct {
	ID          id.TaskID
	UserID      id.UserID
	FirmID      id.FirmID
	RuleID      id.RuleID
	EventID     id.EventID
	Name        string
	Description string
	Category    string
	Frequency   id.ComplianceFrequency
	DueDate     time.Time
	Priority    id.TaskPriority
	Status      Status

	RequiresCAReview bool
	Associate        id.UserID
	CAReviewer       id.UserID

	Documents []DocumentSlot
	Filing    *FilingDetails

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	FiledAt     *time.Time
}
