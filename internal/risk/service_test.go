package risk_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lekha/internal/risk"
	riskStore "lekha/internal/risk/store/memory"
	"lekha/internal/tasks"
	taskStore "lekha/internal/tasks/store/memory"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/audit"
	auditStore "lekha/pkg/platform/audit/store/memory"
	"lekha/pkg/requestcontext"
)

type RiskServiceSuite struct {
	suite.Suite
	store      *riskStore.InMemoryStore
	taskStore  *taskStore.InMemoryStore
	auditStore *auditStore.InMemoryStore
	service    *risk.Service

	userID id.UserID
	firmID id.FirmID
	now    time.Time
}

func TestRiskServiceSuite(t *testing.T) {
	suite.Run(t, new(RiskServiceSuite))
}

func (s *RiskServiceSuite) SetupTest() {
	s.store = riskStore.NewInMemoryStore()
	s.taskStore = taskStore.NewInMemoryStore()
	s.auditStore = auditStore.NewInMemoryStore()

	writer, err := audit.NewWriter(s.auditStore)
	s.Require().NoError(err)

	s.service, err = risk.New(s.store, s.taskStore, writer)
	s.Require().NoError(err)

	s.userID = id.NewUserID()
	s.firmID = id.NewFirmID()
	s.now = time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
}

func (s *RiskServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *RiskServiceSuite) seedTask(status tasks.Status, due time.Time) *tasks.Instance {
	task := &tasks.Instance{
		ID:      id.NewTaskID(),
		UserID:  s.userID,
		FirmID:  s.firmID,
		RuleID:  id.RuleID("gstr3b_monthly"),
		Name:    "File GSTR-3B",
		Status:  status,
		DueDate: due,
	}
	s.Require().NoError(s.taskStore.Create(context.Background(), task))
	return task
}

func (s *RiskServiceSuite) TestEvaluateGSTRFiling() {
	s.Run("material variance records risk and audit entry", func() {
		detected, err := s.service.EvaluateGSTRFiling(s.ctx(), s.userID, s.firmID, risk.GSTRFilingFacts{
			Period: "02-2024", GSTR1Total: 100000, GSTR3BTotal: 88000,
		})
		s.Require().NoError(err)
		s.Require().NotNil(detected)
		s.Equal(risk.SeverityHigh, detected.Severity)
		s.Equal(risk.StatusActive, detected.Status)
		s.Equal(s.now, detected.DetectedAt)

		entries, err := s.auditStore.List(s.ctx(), audit.Filter{Action: audit.ActionRiskDetected})
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(detected.ID.String(), entries[0].EntityID)
	})

	s.Run("clean filing records nothing", func() {
		detected, err := s.service.EvaluateGSTRFiling(s.ctx(), s.userID, s.firmID, risk.GSTRFilingFacts{
			Period: "02-2024", GSTR1Total: 100000, GSTR3BTotal: 99000,
		})
		s.Require().NoError(err)
		s.Nil(detected)
	})

	s.Run("negative figures rejected", func() {
		_, err := s.service.EvaluateGSTRFiling(s.ctx(), s.userID, s.firmID, risk.GSTRFilingFacts{
			Period: "02-2024", GSTR1Total: -1,
		})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *RiskServiceSuite) TestScanFirm() {
	s.Run("detects delayed filings on open tasks", func() {
		late := s.seedTask(tasks.StatusPending, s.now.AddDate(0, 0, -40))
		s.seedTask(tasks.StatusFiled, s.now.AddDate(0, 0, -40))
		s.seedTask(tasks.StatusPending, s.now.AddDate(0, 0, 30))

		found, err := s.service.ScanFirm(s.ctx(), s.firmID)
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.Equal(risk.TypeDelayedFiling, found[0].Type)
		s.Equal(risk.SeverityCritical, found[0].Severity)
		s.Equal(late.ID, found[0].TaskID)
	})

	s.Run("rescan does not duplicate active risks", func() {
		found, err := s.service.ScanFirm(s.ctx(), s.firmID)
		s.Require().NoError(err)
		s.Empty(found)
	})

	s.Run("resolving reopens detection", func() {
		active, err := s.service.ListByFirm(s.ctx(), s.firmID, risk.ListFilter{Status: risk.StatusActive})
		s.Require().NoError(err)
		s.Require().Len(active, 1)

		_, err = s.service.Resolve(s.ctx(), active[0].ID, "ca@firm")
		s.Require().NoError(err)

		found, err := s.service.ScanFirm(s.ctx(), s.firmID)
		s.Require().NoError(err)
		s.Len(found, 1)
	})
}

func (s *RiskServiceSuite) TestScanFirms() {
	s.Run("scans multiple firms concurrently", func() {
		s.seedTask(tasks.StatusPending, s.now.AddDate(0, 0, -20))

		otherFirm := id.NewFirmID()
		other := &tasks.Instance{
			ID:      id.NewTaskID(),
			UserID:  s.userID,
			FirmID:  otherFirm,
			RuleID:  id.RuleID("tds_deposit_monthly"),
			Name:    "Deposit TDS",
			Status:  tasks.StatusPending,
			DueDate: s.now.AddDate(0, 0, -10),
		}
		s.Require().NoError(s.taskStore.Create(context.Background(), other))

		total, err := s.service.ScanFirms(s.ctx(), []id.FirmID{s.firmID, otherFirm})
		s.Require().NoError(err)
		s.Equal(2, total)
	})
}

func (s *RiskServiceSuite) TestResolve() {
	s.Run("marks the risk resolved with an audit entry", func() {
		detected, err := s.service.EvaluateITCClaim(s.ctx(), s.userID, s.firmID, risk.ITCFacts{
			Period: "02-2024", ITCClaimed: 50000, ITCAvailable: 60000,
		})
		s.Require().NoError(err)
		s.Require().NotNil(detected)

		resolved, err := s.service.Resolve(s.ctx(), detected.ID, "ca@firm")
		s.Require().NoError(err)
		s.Equal(risk.StatusResolved, resolved.Status)
		s.Require().NotNil(resolved.ResolvedAt)

		entries, err := s.auditStore.List(s.ctx(), audit.Filter{Action: audit.ActionRiskResolved})
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal("ca@firm", entries[0].PerformedBy)
	})

	s.Run("double resolve conflicts", func() {
		list, err := s.service.ListByFirm(s.ctx(), s.firmID, risk.ListFilter{Status: risk.StatusResolved})
		s.Require().NoError(err)
		s.Require().Len(list, 1)

		_, err = s.service.Resolve(s.ctx(), list[0].ID, "ca@firm")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown risk is not found", func() {
		_, err := s.service.Resolve(s.ctx(), id.NewRiskID(), "ca@firm")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
