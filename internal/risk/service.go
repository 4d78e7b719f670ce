package risk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"lekha/internal/risk/metrics"
	"lekha/internal/tasks"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/audit"
	"lekha/pkg/platform/sentinel"
	"lekha/pkg/requestcontext"
)

// scanConcurrency bounds how many firms a batch scan works on at once.
const scanConcurrency = 8

// TaskSource is the slice of the task store the detectors read from.
type TaskSource interface {
	ListByFirm(ctx context.Context, firmID id.FirmID, filter tasks.ListFilter) ([]*tasks.Instance, error)
}

// AuditPort appends entries to the audit trail.
type AuditPort interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Service runs the risk detectors, persists what they find, and records
// every detection and resolution in the audit trail. Exactly one risk record
// and one audit entry per detection; a store failure propagates so the
// detection is retried rather than lost.
type Service struct {
	store      Store
	taskSource TaskSource
	auditor    AuditPort
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, taskSource TaskSource, auditor AuditPort, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("risk store is required")
	}
	if taskSource == nil {
		return nil, fmt.Errorf("task source is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit writer is required")
	}
	s := &Service{
		store:      store,
		taskSource: taskSource,
		auditor:    auditor,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EvaluateGSTRFiling checks the reported turnover figures for one period and
// records a mismatch risk when the returns disagree materially.
func (s *Service) EvaluateGSTRFiling(ctx context.Context, userID id.UserID, firmID id.FirmID, facts GSTRFilingFacts) (*ComplianceRisk, error) {
	if facts.GSTR1Total < 0 || facts.GSTR3BTotal < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "turnover figures cannot be negative")
	}
	detected, ok := DetectGSTRMismatch(facts)
	if !ok {
		return nil, nil
	}
	return s.record(ctx, userID, firmID, detected)
}

// EvaluateITCClaim checks an input tax credit claim against the credit the
// purchase records support.
func (s *Service) EvaluateITCClaim(ctx context.Context, userID id.UserID, firmID id.FirmID, facts ITCFacts) (*ComplianceRisk, error) {
	if facts.ITCClaimed < 0 || facts.ITCAvailable < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credit figures cannot be negative")
	}
	detected, ok := DetectITCShortfall(facts)
	if !ok {
		return nil, nil
	}
	return s.record(ctx, userID, firmID, detected)
}

// ScanFirm runs the task-based detectors over one firm's open obligations.
// A task already covered by an active risk of the same type is skipped.
func (s *Service) ScanFirm(ctx context.Context, firmID id.FirmID) ([]*ComplianceRisk, error) {
	now := requestcontext.Now(ctx)

	open, err := s.taskSource.ListByFirm(ctx, firmID, tasks.ListFilter{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list firm tasks")
	}
	active, err := s.store.ListByFirm(ctx, firmID, ListFilter{Status: StatusActive})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active risks")
	}
	covered := make(map[string]bool, len(active))
	for _, r := range active {
		if !r.TaskID.IsNil() {
			covered[string(r.Type)+":"+r.TaskID.String()] = true
		}
	}

	var found []*ComplianceRisk
	for _, task := range open {
		for _, detect := range []func(*tasks.Instance, time.Time) (ComplianceRisk, bool){
			DetectDelayedFiling,
			DetectMissingDocuments,
		} {
			detected, ok := detect(task, now)
			if !ok || covered[string(detected.Type)+":"+task.ID.String()] {
				continue
			}
			recorded, err := s.record(ctx, task.UserID, firmID, detected)
			if err != nil {
				return found, err
			}
			found = append(found, recorded)
		}
	}
	return found, nil
}

// ScanFirms runs ScanFirm across many firms concurrently. The scan stops on
// the first store failure; detection itself is deterministic and safe to
// rerun.
func (s *Service) ScanFirms(ctx context.Context, firmIDs []id.FirmID) (int, error) {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	counts := make([]int, len(firmIDs))
	for i, firmID := range firmIDs {
		g.Go(func() error {
			found, err := s.ScanFirm(ctx, firmID)
			if err != nil {
				return fmt.Errorf("scan firm %s: %w", firmID, err)
			}
			counts[i] = len(found)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	s.metrics.ObserveScan(float64(time.Since(start).Microseconds()) / 1000.0)
	s.logger.InfoContext(ctx, "risk scan completed",
		"firms_scanned", len(firmIDs),
		"risks_detected", total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return total, nil
}

// Get fetches a risk by id.
func (s *Service) Get(ctx context.Context, riskID id.RiskID) (*ComplianceRisk, error) {
	r, err := s.store.Get(ctx, riskID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "risk not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get risk")
	}
	return r, nil
}

// ListByFirm lists a firm's risks.
func (s *Service) ListByFirm(ctx context.Context, firmID id.FirmID, filter ListFilter) ([]*ComplianceRisk, error) {
	out, err := s.store.ListByFirm(ctx, firmID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list risks")
	}
	return out, nil
}

// Resolve marks a risk handled.
func (s *Service) Resolve(ctx context.Context, riskID id.RiskID, performedBy string) (*ComplianceRisk, error) {
	r, err := s.Get(ctx, riskID)
	if err != nil {
		return nil, err
	}
	if r.Status == StatusResolved {
		return nil, dErrors.New(dErrors.CodeConflict, "risk is already resolved")
	}

	now := requestcontext.Now(ctx)
	r.Status = StatusResolved
	r.ResolvedAt = &now
	if err := s.store.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update risk")
	}

	if err := s.auditor.Append(ctx, audit.Entry{
		UserID:      r.UserID,
		FirmID:      r.FirmID,
		Action:      audit.ActionRiskResolved,
		EntityType:  audit.EntityRisk,
		EntityID:    r.ID.String(),
		PerformedBy: performedBy,
		Details: map[string]any{
			"risk_type": r.Type.String(),
			"severity":  r.Severity.String(),
		},
	}); err != nil {
		return nil, err
	}

	s.metrics.IncResolved()
	return r, nil
}

// record persists one detection with its audit entry.
func (s *Service) record(ctx context.Context, userID id.UserID, firmID id.FirmID, detected ComplianceRisk) (*ComplianceRisk, error) {
	detected.ID = id.NewRiskID()
	detected.UserID = userID
	detected.FirmID = firmID
	detected.Status = StatusActive
	detected.DetectedAt = requestcontext.Now(ctx)

	if err := s.store.Create(ctx, &detected); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist risk")
	}

	if err := s.auditor.Append(ctx, audit.Entry{
		UserID:     userID,
		FirmID:     firmID,
		Action:     audit.ActionRiskDetected,
		EntityType: audit.EntityRisk,
		EntityID:   detected.ID.String(),
		Details: map[string]any{
			"risk_type":         detected.Type.String(),
			"severity":          detected.Severity.String(),
			"description":       detected.Description,
			"estimated_penalty": detected.Action.EstimatedPenalty,
		},
	}); err != nil {
		return nil, err
	}

	s.metrics.IncDetected(detected.Type.String(), detected.Severity.String())
	s.logger.InfoContext(ctx, "compliance risk detected",
		"risk_id", detected.ID,
		"firm_id", firmID,
		"risk_type", detected.Type,
		"severity", detected.Severity,
	)
	return &detected, nil
}
