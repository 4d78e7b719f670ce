package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lekha/internal/tasks"
	taskStore "lekha/internal/tasks/store/memory"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/audit"
	auditStore "lekha/pkg/platform/audit/store/memory"
	"lekha/pkg/requestcontext"
)

// =============================================================================
// Task Orchestrator Test Suite
// =============================================================================
// Justification for unit tests: the state machine, the overdue sweep, and the
// one-mutation-one-audit-entry pairing are the core guarantees of this
// package and are awkward to exercise through HTTP tests.

type TaskServiceSuite struct {
	suite.Suite
	store      *taskStore.InMemoryStore
	auditStore *auditStore.InMemoryStore
	service    *tasks.Service

	userID id.UserID
	firmID id.FirmID
}

func TestTaskServiceSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceSuite))
}

func (s *TaskServiceSuite) SetupTest() {
	s.store = taskStore.NewInMemoryStore()
	s.auditStore = auditStore.NewInMemoryStore()

	writer, err := audit.NewWriter(s.auditStore)
	s.Require().NoError(err)

	s.service, err = tasks.New(s.store, writer)
	s.Require().NoError(err)

	s.userID = id.NewUserID()
	s.firmID = id.NewFirmID()
}

func (s *TaskServiceSuite) createTask(ctx context.Context, due time.Time) *tasks.Instance {
	task, err := s.service.Create(ctx, tasks.CreateInput{
		UserID:    s.userID,
		FirmID:    s.firmID,
		RuleID:    id.RuleID("gstr1_monthly"),
		EventID:   id.NewEventID(),
		Name:      "File GSTR-1",
		Category:  "gst",
		Frequency: id.FrequencyMonthly,
		DueDate:   due,
		Priority:  id.PriorityHigh,
		Documents: []tasks.DocumentSlot{
			{DocumentType: "sales_register", Mandatory: true},
		},
	})
	s.Require().NoError(err)
	return task
}

func (s *TaskServiceSuite) auditEntries(action audit.Action) []audit.Entry {
	entries, err := s.auditStore.List(context.Background(), audit.Filter{Action: action})
	s.Require().NoError(err)
	return entries
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *TaskServiceSuite) TestNew() {
	writer, err := audit.NewWriter(s.auditStore)
	s.Require().NoError(err)

	s.Run("nil store returns error", func() {
		_, err := tasks.New(nil, writer)
		s.Error(err)
		s.Contains(err.Error(), "task store is required")
	})

	s.Run("nil audit writer returns error", func() {
		_, err := tasks.New(s.store, nil)
		s.Error(err)
		s.Contains(err.Error(), "audit writer is required")
	})
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *TaskServiceSuite) TestCreate() {
	ctx := context.Background()
	due := time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC)

	s.Run("new task starts pending with an audit entry", func() {
		task := s.createTask(ctx, due)

		s.Equal(tasks.StatusPending, task.Status)
		s.False(task.ID.IsNil())
		s.Nil(task.CompletedAt)

		entries := s.auditEntries(audit.ActionTaskCreated)
		s.Require().Len(entries, 1)
		s.Equal(task.ID.String(), entries[0].EntityID)
		s.Equal("gstr1_monthly", entries[0].Details["rule_id"])
		s.Equal("2024-02-11", entries[0].Details["due_date"])
	})

	s.Run("uses request-scoped time for timestamps", func() {
		now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
		task := s.createTask(requestcontext.WithTime(ctx, now), due)
		s.Equal(now, task.CreatedAt)
	})
}

// =============================================================================
// Status Transition Tests
// =============================================================================

func (s *TaskServiceSuite) TestTransitionStatus() {
	ctx := context.Background()
	due := time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC)

	s.Run("pending to in_progress", func() {
		task := s.createTask(ctx, due)

		updated, err := s.service.TransitionStatus(ctx, task.ID, tasks.StatusInProgress, "ca@firm")
		s.NoError(err)
		s.Equal(tasks.StatusInProgress, updated.Status)

		entries := s.auditEntries(audit.ActionTaskStatusChanged)
		s.Require().NotEmpty(entries)
		s.Equal("pending", entries[0].Details["previous_status"])
		s.Equal("in_progress", entries[0].Details["new_status"])
		s.Equal("ca@firm", entries[0].PerformedBy)
	})

	s.Run("completed stamps completion time", func() {
		task := s.createTask(ctx, due)

		updated, err := s.service.TransitionStatus(ctx, task.ID, tasks.StatusCompleted, "ca@firm")
		s.NoError(err)
		s.Require().NotNil(updated.CompletedAt)
	})

	s.Run("completed task cannot move again", func() {
		task := s.createTask(ctx, due)
		_, err := s.service.TransitionStatus(ctx, task.ID, tasks.StatusCompleted, "ca@firm")
		s.Require().NoError(err)

		_, err = s.service.TransitionStatus(ctx, task.ID, tasks.StatusInProgress, "ca@firm")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("overdue cannot be requested directly", func() {
		task := s.createTask(ctx, due)

		_, err := s.service.TransitionStatus(ctx, task.ID, tasks.StatusOverdue, "ca@firm")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown status rejected", func() {
		task := s.createTask(ctx, due)

		_, err := s.service.TransitionStatus(ctx, task.ID, tasks.Status("archived"), "ca@firm")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing task returns not found", func() {
		_, err := s.service.TransitionStatus(ctx, id.NewTaskID(), tasks.StatusInProgress, "ca@firm")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Assignment Tests
// =============================================================================

func (s *TaskServiceSuite) TestAssign() {
	ctx := context.Background()
	due := time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC)

	s.Run("assigns associate and audits", func() {
		task := s.createTask(ctx, due)
		associate := id.NewUserID()

		updated, err := s.service.AssignAssociate(ctx, task.ID, associate, "partner@firm")
		s.NoError(err)
		s.Equal(associate, updated.Associate)

		entries := s.auditEntries(audit.ActionTaskAssigned)
		s.Require().Len(entries, 1)
		s.Equal("associate", entries[0].Details["role"])
		s.Equal(associate.String(), entries[0].Details["assignee"])
	})

	s.Run("reassignment records previous assignee", func() {
		task := s.createTask(ctx, due)
		first := id.NewUserID()
		second := id.NewUserID()

		_, err := s.service.AssignCAReviewer(ctx, task.ID, first, "partner@firm")
		s.Require().NoError(err)
		_, err = s.service.AssignCAReviewer(ctx, task.ID, second, "partner@firm")
		s.Require().NoError(err)

		entries := s.auditEntries(audit.ActionTaskAssigned)
		s.Require().Len(entries, 2)
		s.Equal(first.String(), entries[0].Details["previous_assignee"])
	})

	s.Run("nil assignee rejected", func() {
		task := s.createTask(ctx, due)

		_, err := s.service.AssignAssociate(ctx, task.ID, id.UserID{}, "partner@firm")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// =============================================================================
// Document Linking Tests
// =============================================================================

func (s *TaskServiceSuite) TestLinkDocument() {
	ctx := context.Background()
	due := time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC)

	s.Run("fills the matching slot", func() {
		task := s.createTask(ctx, due)
		docID := id.NewDocumentID()

		updated, err := s.service.LinkDocument(ctx, task.ID, "sales_register", docID, "associate@firm")
		s.NoError(err)
		s.Require().Len(updated.Documents, 1)
		s.True(updated.Documents[0].Uploaded)
		s.Equal(docID, updated.Documents[0].DocumentID)
		s.NotNil(updated.Documents[0].UploadedAt)

		entries := s.auditEntries(audit.ActionDocumentUploaded)
		s.Require().Len(entries, 1)
		s.Equal("sales_register", entries[0].Details["document_type"])
	})

	s.Run("unknown slot returns not found", func() {
		task := s.createTask(ctx, due)

		_, err := s.service.LinkDocument(ctx, task.ID, "bank_statement", id.NewDocumentID(), "associate@firm")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Filing Tests
// =============================================================================

func (s *TaskServiceSuite) TestRecordFiling() {
	ctx := context.Background()
	due := time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC)

	s.Run("stamps filing details and forces filed", func() {
		task := s.createTask(ctx, due)

		updated, err := s.service.RecordFiling(ctx, task.ID, tasks.FilingDetails{
			Reference:          "AA070224000123X",
			Period:             "01-2024",
			PortalSubmissionID: "GSTN-889",
		}, "ca@firm")
		s.NoError(err)
		s.Equal(tasks.StatusFiled, updated.Status)
		s.Require().NotNil(updated.Filing)
		s.Equal("AA070224000123X", updated.Filing.Reference)
		s.NotNil(updated.FiledAt)
		s.NotNil(updated.CompletedAt)

		entries := s.auditEntries(audit.ActionFilingSubmitted)
		s.Require().Len(entries, 1)
		s.Equal("pending", entries[0].Details["previous_status"])
		s.Equal("AA070224000123X", entries[0].Details["filing_reference"])
	})

	s.Run("empty reference rejected", func() {
		task := s.createTask(ctx, due)

		_, err := s.service.RecordFiling(ctx, task.ID, tasks.FilingDetails{Period: "01-2024"}, "ca@firm")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// =============================================================================
// Overdue Sweep Tests
// =============================================================================

func (s *TaskServiceSuite) TestSweepOverdue() {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx = requestcontext.WithTime(ctx, now)

	s.Run("marks open tasks past due and leaves the rest", func() {
		past := s.createTask(ctx, now.AddDate(0, 0, -10))
		future := s.createTask(ctx, now.AddDate(0, 0, 10))
		filed := s.createTask(ctx, now.AddDate(0, 0, -5))
		_, err := s.service.RecordFiling(ctx, filed.ID, tasks.FilingDetails{Reference: "REF-1"}, "ca@firm")
		s.Require().NoError(err)

		changed, err := s.service.SweepOverdue(ctx)
		s.NoError(err)
		s.Equal(1, changed)

		got, err := s.service.Get(ctx, past.ID)
		s.Require().NoError(err)
		s.Equal(tasks.StatusOverdue, got.Status)

		got, err = s.service.Get(ctx, future.ID)
		s.Require().NoError(err)
		s.Equal(tasks.StatusPending, got.Status)

		got, err = s.service.Get(ctx, filed.ID)
		s.Require().NoError(err)
		s.Equal(tasks.StatusFiled, got.Status)
	})

	s.Run("overdue task can be picked back up", func() {
		task := s.createTask(ctx, now.AddDate(0, 0, -1))
		_, err := s.service.SweepOverdue(ctx)
		s.Require().NoError(err)

		updated, err := s.service.TransitionStatus(ctx, task.ID, tasks.StatusInProgress, "ca@firm")
		s.NoError(err)
		s.Equal(tasks.StatusInProgress, updated.Status)

		// Close it out so later sweeps do not pick it up again.
		_, err = s.service.TransitionStatus(ctx, task.ID, tasks.StatusCompleted, "ca@firm")
		s.Require().NoError(err)
	})

	s.Run("sweep is idempotent", func() {
		s.createTask(ctx, now.AddDate(0, 0, -3))
		changed, err := s.service.SweepOverdue(ctx)
		s.Require().NoError(err)
		s.Equal(1, changed)

		changed, err = s.service.SweepOverdue(ctx)
		s.NoError(err)
		s.Equal(0, changed)
	})
}
