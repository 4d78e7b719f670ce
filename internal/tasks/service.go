package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/audit"
	"lekha/pkg/platform/sentinel"
	"lekha/pkg/requestcontext"

	"lekha/internal/tasks/metrics"
)

// AuditPort is the slice of the audit writer this package needs. Defined
// here to keep the orchestrator's dependencies explicit.
type AuditPort interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Service is the task orchestrator. Every mutating operation pairs with
// exactly one audit entry describing the prior and new values relevant to
// that mutation.
type Service struct {
	store   Store
	auditor AuditPort
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, auditor AuditPort, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("task store is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit writer is required")
	}
	s := &Service{store: store, auditor: auditor}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateInput carries everything the trigger service derived from the rule
// and event. Tasks always start pending.
type CreateInput struct {
	UserID           id.UserID
	FirmID           id.FirmID
	RuleID           id.RuleID
	EventID          id.EventID
	Name             string
	Description      string
	Category         string
	Frequency        id.ComplianceFrequency
	DueDate          time.Time
	Priority         id.TaskPriority
	RequiresCAReview bool
	Documents        []DocumentSlot
}

// Create materializes a task instance.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Instance, error) {
	now := requestcontext.Now(ctx)
	task := &Instance{
		ID:               id.NewTaskID(),
		UserID:           in.UserID,
		FirmID:           in.FirmID,
		RuleID:           in.RuleID,
		EventID:          in.EventID,
		Name:             in.Name,
		Description:      in.Description,
		Category:         in.Category,
		Frequency:        in.Frequency,
		DueDate:          in.DueDate,
		Priority:         in.Priority,
		Status:           StatusPending,
		RequiresCAReview: in.RequiresCAReview,
		Documents:        in.Documents,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.Create(ctx, task); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create task")
	}

	if err := s.auditor.Append(ctx, audit.Entry{
		UserID:     task.UserID,
		FirmID:     task.FirmID,
		Action:     audit.ActionTaskCreated,
		EntityType: audit.EntityTask,
		EntityID:   task.ID.String(),
		Details: map[string]any{
			"rule_id":  task.RuleID.String(),
			"event_id": task.EventID.String(),
			"name":     task.Name,
			"due_date": task.DueDate.Format("2006-01-02"),
			"priority": task.Priority.String(),
		},
	}); err != nil {
		return nil, err
	}

	s.metrics.IncCreated(task.Category, task.Priority.String())
	return task, nil
}

// Get fetches a task by id.
func (s *Service) Get(ctx context.Context, taskID id.TaskID) (*Instance, error) {
	task, err := s.store.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get task")
	}
	return task, nil
}

// ListByFirm lists a firm's tasks.
func (s *Service) ListByFirm(ctx context.Context, firmID id.FirmID, filter ListFilter) ([]*Instance, error) {
	out, err := s.store.ListByFirm(ctx, firmID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tasks")
	}
	return out, nil
}

// TransitionStatus moves a task along the state machine. Overdue cannot be
// requested here; only the sweep sets it.
func (s *Service) TransitionStatus(ctx context.Context, taskID id.TaskID, to Status, performedBy string) (*Instance, error) {
	if !to.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown status %q", to)
	}
	if to == StatusOverdue {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "overdue is set by the sweep, not by callers")
	}

	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	from := task.Status
	if !CanTransition(from, to) {
		return nil, dErrors.Newf(dErrors.CodeConflict, "cannot transition task from %s to %s", from, to)
	}

	now := requestcontext.Now(ctx)
	task.Status = to
	task.UpdatedAt = now
	if to == StatusCompleted || to == StatusFiled {
		task.CompletedAt = &now
	}
	if to == StatusFiled {
		task.FiledAt = &now
	}

	if err := s.store.Update(ctx, task); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update task")
	}

	if err := s.auditor.Append(ctx, audit.Entry{
		UserID:      task.UserID,
		FirmID:      task.FirmID,
		Action:      audit.ActionTaskStatusChanged,
		EntityType:  audit.EntityTask,
		EntityID:    task.ID.String(),
		PerformedBy: performedBy,
		Details: map[string]any{
			"previous_status": from.String(),
			"new_status":      to.String(),
		},
	}); err != nil {
		return nil, err
	}

	s.metrics.IncTransition(from.String(), to.String())
	return task, nil
}

// AssignAssociate sets the working associate on a task.
func (s *Service) AssignAssociate(ctx context.Context, taskID id.TaskID, associate id.UserID, performedBy string) (*Instance, error) {
	return s.assign(ctx, taskID, associate, "associate", performedBy)
}

// AssignCAReviewer sets the reviewing CA on a task.
func (s *Service) AssignCAReviewer(ctx context.Context, taskID id.TaskID, reviewer id.UserID, performedBy string) (*Instance, error) {
	return s.assign(ctx, taskID, reviewer, "ca_reviewer", performedBy)
}

func (s *Service) assign(ctx context.Context, taskID id.TaskID, assignee id.UserID, role, performedBy string) (*Instance, error) {
	if assignee.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "assignee is required")
	}

	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var previous id.UserID
	switch role {
	case "associate":
		previous = task.Associate
		task.Associate = assignee
	case "ca_reviewer":
		previous = task.CAReviewer
		task.CAReviewer = assignee
	}
	task.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, task); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update task")
	}

	details := map[string]any{
		"role":     role,
		"assignee": assignee.String(),
	}
	if !previous.IsNil() {
		details["previous_assignee"] = previous.String()
	}
	if err := s.auditor.Append(ctx, audit.Entry{
		UserID:      task.UserID,
		FirmID:      task.FirmID,
		Action:      audit.ActionTaskAssigned,
		EntityType:  audit.EntityTask,
		EntityID:    task.ID.String(),
		PerformedBy: performedBy,
		Details:     details,
	}); err != nil {
		return nil, err
	}
	return task, nil
}

// LinkDocument fills the required-document slot matching the document type.
func (s *Service) LinkDocument(ctx context.Context, taskID id.TaskID, documentType string, docID id.DocumentID, performedBy string) (*Instance, error) {
	if documentType == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document type is required")
	}

	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	slot := -1
	for i := range task.Documents {
		if task.Documents[i].DocumentType == documentType {
			slot = i
			break
		}
	}
	if slot < 0 {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "task has no %q document slot", documentType)
	}

	now := requestcontext.Now(ctx)
	task.Documents[slot].DocumentID = docID
	task.Documents[slot].Uploaded = true
	task.Documents[slot].UploadedAt = &now
	task.UpdatedAt = now

	if err := s.store.Update(ctx, task); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update task")
	}

	if err := s.auditor.Append(ctx, audit.Entry{
		UserID:      task.UserID,
		FirmID:      task.FirmID,
		Action:      audit.ActionDocumentUploaded,
		EntityType:  audit.EntityTask,
		EntityID:    task.ID.String(),
		PerformedBy: performedBy,
		Details: map[string]any{
			"document_type": documentType,
			"document_id":   docID.String(),
		},
	}); err != nil {
		return nil, err
	}
	return task, nil
}

// RecordFiling stamps filing details and forces the task to filed.
func (s *Service) RecordFiling(ctx context.Context, taskID id.TaskID, filing FilingDetails, performedBy string) (*Instance, error) {
	if filing.Reference == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "filing reference is required")
	}

	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	from := task.Status

	now := requestcontext.Now(ctx)
	task.Filing = &filing
	task.Status = StatusFiled
	task.FiledAt = &now
	task.CompletedAt = &now
	task.UpdatedAt = now

	if err := s.store.Update(ctx, task); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update task")
	}

	if err := s.auditor.Append(ctx, audit.Entry{
		UserID:      task.UserID,
		FirmID:      task.FirmID,
		Action:      audit.ActionFilingSubmitted,
		EntityType:  audit.EntityTask,
		EntityID:    task.ID.String(),
		PerformedBy: performedBy,
		Details: map[string]any{
			"previous_status":      from.String(),
			"filing_reference":     filing.Reference,
			"filing_period":        filing.Period,
			"portal_submission_id": filing.PortalSubmissionID,
		},
	}); err != nil {
		return nil, err
	}

	s.metrics.IncTransition(from.String(), StatusFiled.String())
	return task, nil
}

// SweepOverdue flips every open task whose due date has passed to overdue
// and returns how many changed. This is the only path that sets overdue.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	now := requestcontext.Now(ctx)
	open, err := s.store.ListOpenDueBefore(ctx, now)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue candidates")
	}

	changed := 0
	for _, task := range open {
		if task.Status == StatusOverdue {
			continue
		}
		from := task.Status
		task.Status = StatusOverdue
		task.UpdatedAt = now

		if err := s.store.Update(ctx, task); err != nil {
			return changed, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark task overdue")
		}
		if err := s.auditor.Append(ctx, audit.Entry{
			UserID:     task.UserID,
			FirmID:     task.FirmID,
			Action:     audit.ActionTaskStatusChanged,
			EntityType: audit.EntityTask,
			EntityID:   task.ID.String(),
			Details: map[string]any{
				"previous_status": from.String(),
				"new_status":      StatusOverdue.String(),
				"due_date":        task.DueDate.Format("2006-01-02"),
			},
		}); err != nil {
			return changed, err
		}
		s.metrics.IncTransition(from.String(), StatusOverdue.String())
		changed++
	}

	s.metrics.AddOverdueSwept(changed)
	if s.logger != nil && changed > 0 {
		s.logger.InfoContext(ctx, "overdue sweep completed", "tasks_marked", changed)
	}
	return changed, nil
}
