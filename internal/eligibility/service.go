package eligibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lekha/internal/firm"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/audit"
	"lekha/pkg/platform/sentinel"
	"lekha/pkg/requestcontext"
)

// AuditPort appends entries to the audit trail.
type AuditPort interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Service runs the eligibility evaluators against a firm profile and keeps
// the resulting recommendations. A recommendation type already presented to
// a firm is not presented again.
type Service struct {
	store   Store
	firms   firm.Store
	auditor AuditPort
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, firms firm.Store, auditor AuditPort, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("recommendation store is required")
	}
	if firms == nil {
		return nil, fmt.Errorf("firm store is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit writer is required")
	}
	s := &Service{store: store, firms: firms, auditor: auditor, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// PerformEligibilityCheck evaluates the firm and persists every new
// recommendation. The summary audit entry is written only when the check
// surfaced something; a check that changes nothing leaves no audit trace.
func (s *Service) PerformEligibilityCheck(ctx context.Context, userID id.UserID, firmID id.FirmID) ([]*PlanRecommendation, error) {
	profile, err := s.firms.Get(ctx, firmID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "firm not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load firm profile")
	}

	existing, err := s.store.ListByFirm(ctx, firmID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list recommendations")
	}
	seen := make(map[RecommendationType]bool, len(existing))
	for _, rec := range existing {
		if rec.Status != StatusDismissed {
			seen[rec.Type] = true
		}
	}

	now := requestcontext.Now(ctx)
	var created []*PlanRecommendation
	for _, candidate := range Evaluate(profile) {
		if seen[candidate.Type] {
			continue
		}
		rec := &PlanRecommendation{
			ID:        id.NewRecommendationID(),
			UserID:    userID,
			FirmID:    firmID,
			Type:      candidate.Type,
			Reason:    candidate.Reason,
			Details:   candidate.Details,
			Status:    StatusPresented,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Create(ctx, rec); err != nil {
			return created, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist recommendation")
		}
		if err := s.auditor.Append(ctx, audit.Entry{
			UserID:     userID,
			FirmID:     firmID,
			Action:     audit.ActionRecommendationPresented,
			EntityType: audit.EntityRecommendation,
			EntityID:   rec.ID.String(),
			Details: map[string]any{
				"recommendation_type": rec.Type.String(),
				"reason":              rec.Reason,
			},
		}); err != nil {
			return created, err
		}
		created = append(created, rec)
	}

	if len(created) > 0 {
		if err := s.auditor.Append(ctx, audit.Entry{
			UserID:     userID,
			FirmID:     firmID,
			Action:     audit.ActionPlanEligibilityChecked,
			EntityType: audit.EntityRecommendation,
			EntityID:   firmID.String(),
			Details: map[string]any{
				"recommendations_presented": len(created),
			},
		}); err != nil {
			return created, err
		}
	}

	s.logger.InfoContext(ctx, "eligibility check completed",
		"firm_id", firmID,
		"recommendations_presented", len(created),
	)
	return created, nil
}

// ListByFirm lists a firm's recommendations.
func (s *Service) ListByFirm(ctx context.Context, firmID id.FirmID) ([]*PlanRecommendation, error) {
	out, err := s.store.ListByFirm(ctx, firmID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list recommendations")
	}
	return out, nil
}

// SetStatus accepts or dismisses a presented recommendation.
func (s *Service) SetStatus(ctx context.Context, recID id.RecommendationID, status Status) (*PlanRecommendation, error) {
	if status != StatusAccepted && status != StatusDismissed {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "status must be %q or %q", StatusAccepted, StatusDismissed)
	}
	rec, err := s.store.Get(ctx, recID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "recommendation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get recommendation")
	}
	if rec.Status != StatusPresented {
		return nil, dErrors.New(dErrors.CodeConflict, "recommendation has already been acted on")
	}

	rec.Status = status
	rec.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update recommendation")
	}
	return rec, nil
}
