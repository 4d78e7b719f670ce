package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"lekha/internal/tasks"
	"lekha/internal/tasks/handler"
	taskStore "lekha/internal/tasks/store/memory"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/audit"
	auditStore "lekha/pkg/platform/audit/store/memory"
	"lekha/pkg/testutil"
)

type TaskHandlerSuite struct {
	suite.Suite
	router  chi.Router
	service *tasks.Service

	userID id.UserID
	firmID id.FirmID
}

func TestTaskHandlerSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerSuite))
}

func (s *TaskHandlerSuite) SetupTest() {
	writer, err := audit.NewWriter(auditStore.NewInMemoryStore())
	s.Require().NoError(err)

	s.service, err = tasks.New(taskStore.NewInMemoryStore(), writer)
	s.Require().NoError(err)

	s.userID = id.NewUserID()
	s.firmID = id.NewFirmID()

	s.router = chi.NewRouter()
	h := handler.New(s.service, slog.Default())
	h.Register(s.router)
}

func (s *TaskHandlerSuite) createTask() *tasks.Instance {
	task, err := s.service.Create(context.Background(), tasks.CreateInput{
		UserID:    s.userID,
		FirmID:    s.firmID,
		RuleID:    id.RuleID("gstr3b_monthly"),
		EventID:   id.NewEventID(),
		Name:      "File GSTR-3B",
		Category:  "gst",
		Frequency: id.FrequencyMonthly,
		DueDate:   time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
		Priority:  id.PriorityCritical,
		Documents: []tasks.DocumentSlot{{DocumentType: "purchase_register", Mandatory: true}},
	})
	s.Require().NoError(err)
	return task
}

func (s *TaskHandlerSuite) auth(req *http.Request) *http.Request {
	return testutil.WithAuth(req, s.userID.String(), s.firmID.String())
}

func (s *TaskHandlerSuite) TestList() {
	s.Run("returns firm tasks", func() {
		s.createTask()

		req := s.auth(testutil.NewRequest(s.T(), http.MethodGet, "/tasks"))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		list := testutil.UnmarshalResponse[[]handler.TaskResponse](s.T(), rr)
		s.Require().Len(*list, 1)
		s.Equal("pending", (*list)[0].Status)
		s.Equal("gstr3b_monthly", (*list)[0].RuleID)
	})

	s.Run("missing firm context is unauthorized", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/tasks")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("status filter narrows results", func() {
		task := s.createTask()
		_, err := s.service.TransitionStatus(context.Background(), task.ID, tasks.StatusInProgress, "test")
		s.Require().NoError(err)

		req := s.auth(testutil.NewRequest(s.T(), http.MethodGet, "/tasks?status=in_progress"))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		list := testutil.UnmarshalResponse[[]handler.TaskResponse](s.T(), rr)
		s.Require().Len(*list, 1)
		s.Equal(task.ID.String(), (*list)[0].ID)
	})

	s.Run("unknown status filter is rejected", func() {
		req := s.auth(testutil.NewRequest(s.T(), http.MethodGet, "/tasks?status=bogus"))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *TaskHandlerSuite) TestGet() {
	s.Run("returns the task", func() {
		task := s.createTask()

		req := s.auth(testutil.NewRequest(s.T(), http.MethodGet, "/tasks/"+task.ID.String()))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[handler.TaskResponse](s.T(), rr)
		s.Equal(task.ID.String(), resp.ID)
		s.Equal("2024-02-20", resp.DueDate)
	})

	s.Run("invalid id is a bad request", func() {
		req := s.auth(testutil.NewRequest(s.T(), http.MethodGet, "/tasks/not-a-uuid"))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("unknown id is not found", func() {
		req := s.auth(testutil.NewRequest(s.T(), http.MethodGet, "/tasks/"+id.NewTaskID().String()))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *TaskHandlerSuite) TestTransition() {
	s.Run("moves the task", func() {
		task := s.createTask()

		req := s.auth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/tasks/"+task.ID.String()+"/status",
			map[string]string{"status": "in_progress"}))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[handler.TaskResponse](s.T(), rr)
		s.Equal("in_progress", resp.Status)
	})

	s.Run("illegal transition is a conflict", func() {
		task := s.createTask()
		_, err := s.service.RecordFiling(context.Background(), task.ID, tasks.FilingDetails{Reference: "R1"}, "test")
		s.Require().NoError(err)

		req := s.auth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/tasks/"+task.ID.String()+"/status",
			map[string]string{"status": "in_progress"}))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("overdue target is rejected", func() {
		task := s.createTask()

		req := s.auth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/tasks/"+task.ID.String()+"/status",
			map[string]string{"status": "overdue"}))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *TaskHandlerSuite) TestAssign() {
	s.Run("assigns a reviewer", func() {
		task := s.createTask()
		reviewer := id.NewUserID()

		req := s.auth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/tasks/"+task.ID.String()+"/assign",
			map[string]string{"role": "ca_reviewer", "user_id": reviewer.String()}))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[handler.TaskResponse](s.T(), rr)
		s.Equal(reviewer.String(), resp.CAReviewer)
	})

	s.Run("unknown role is rejected", func() {
		task := s.createTask()

		req := s.auth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/tasks/"+task.ID.String()+"/assign",
			map[string]string{"role": "intern", "user_id": id.NewUserID().String()}))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *TaskHandlerSuite) TestLinkDocumentAndFiling() {
	s.Run("links a document", func() {
		task := s.createTask()
		docID := id.NewDocumentID()

		req := s.auth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/tasks/"+task.ID.String()+"/documents",
			map[string]string{"document_type": "purchase_register", "document_id": docID.String()}))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[handler.TaskResponse](s.T(), rr)
		s.Require().Len(resp.Documents, 1)
		s.True(resp.Documents[0].Uploaded)
		s.Equal(docID.String(), resp.Documents[0].DocumentID)
	})

	s.Run("records a filing", func() {
		task := s.createTask()

		req := s.auth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/tasks/"+task.ID.String()+"/filing",
			map[string]string{"reference": "AB123", "period": "01-2024"}))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[handler.TaskResponse](s.T(), rr)
		s.Equal("filed", resp.Status)
		s.Require().NotNil(resp.Filing)
		s.Equal("AB123", resp.Filing.Reference)
	})

	s.Run("missing reference is rejected", func() {
		task := s.createTask()

		req := s.auth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/tasks/"+task.ID.String()+"/filing",
			map[string]string{"period": "01-2024"}))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *TaskHandlerSuite) TestSweep() {
	s.Run("reports how many tasks were marked", func() {
		task, err := s.service.Create(context.Background(), tasks.CreateInput{
			UserID:    s.userID,
			FirmID:    s.firmID,
			RuleID:    id.RuleID("tds_deposit_monthly"),
			EventID:   id.NewEventID(),
			Name:      "Deposit TDS",
			Category:  "tds",
			Frequency: id.FrequencyMonthly,
			DueDate:   time.Now().UTC().AddDate(0, 0, -7),
			Priority:  id.PriorityHigh,
		})
		s.Require().NoError(err)

		req := s.auth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/tasks/sweep", nil))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[handler.SweepResponse](s.T(), rr)
		s.Equal(1, resp.TasksMarkedOverdue)

		got, err := s.service.Get(context.Background(), task.ID)
		s.Require().NoError(err)
		s.Equal(tasks.StatusOverdue, got.Status)
	})
}
