package firm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

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

// Registration number formats as published by the GST and income tax portals.
var (
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	panPattern   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	tanPattern   = regexp.MustCompile(`^[A-Z]{4}[0-9]{5}[A-Z]$`)
)

// Service maintains firm profiles, the read model every other service keys
// its entity and headcount decisions on.
type Service struct {
	store   Store
	auditor AuditPort
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, auditor AuditPort, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("firm store is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit writer is required")
	}
	s := &Service{store: store, auditor: auditor, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UpsertInput carries the full profile; registration numbers are optional
// but validated against the portal formats when present.
type UpsertInput struct {
	Name           string
	EntityType     id.EntityType
	GSTIN          string
	PAN            string
	TAN            string
	EmployeeCount  int
	AnnualTurnover float64
}

func (in UpsertInput) validate() error {
	if in.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "firm name is required")
	}
	if !in.EntityType.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unsupported entity type %q", in.EntityType)
	}
	if in.EmployeeCount < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "employee count cannot be negative")
	}
	if in.AnnualTurnover < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "annual turnover cannot be negative")
	}
	if in.GSTIN != "" && !gstinPattern.MatchString(in.GSTIN) {
		return dErrors.New(dErrors.CodeInvalidInput, "GSTIN format is invalid")
	}
	if in.PAN != "" && !panPattern.MatchString(in.PAN) {
		return dErrors.New(dErrors.CodeInvalidInput, "PAN format is invalid")
	}
	if in.TAN != "" && !tanPattern.MatchString(in.TAN) {
		return dErrors.New(dErrors.CodeInvalidInput, "TAN format is invalid")
	}
	return nil
}

// Upsert creates or replaces the firm profile. The first write stamps
// RegisteredAt; later writes preserve it.
func (s *Service) Upsert(ctx context.Context, userID id.UserID, firmID id.FirmID, input UpsertInput) (*Profile, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	profile := &Profile{
		ID:             firmID,
		OwnerID:        userID,
		Name:           input.Name,
		EntityType:     input.EntityType,
		GSTIN:          input.GSTIN,
		PAN:            input.PAN,
		TAN:            input.TAN,
		EmployeeCount:  input.EmployeeCount,
		AnnualTurnover: input.AnnualTurnover,
		RegisteredAt:   now,
		UpdatedAt:      now,
	}

	existing, err := s.store.Get(ctx, firmID)
	switch {
	case err == nil:
		profile.RegisteredAt = existing.RegisteredAt
		profile.OwnerID = existing.OwnerID
	case errors.Is(err, sentinel.ErrNotFound):
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load firm profile")
	}

	if err := s.store.Upsert(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store firm profile")
	}

	entry := audit.Entry{
		UserID:     userID,
		FirmID:     firmID,
		Action:     audit.ActionFirmProfileUpdated,
		EntityType: audit.EntityFirm,
		EntityID:   firmID.String(),
		Details: map[string]any{
			"entity_type":    input.EntityType.String(),
			"employee_count": input.EmployeeCount,
			"gst_registered": profile.GSTRegistered(),
		},
		PerformedBy: userID.String(),
		Timestamp:   now,
	}
	if err := s.auditor.Append(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit profile update")
	}

	s.logger.InfoContext(ctx, "firm profile upserted",
		"firm_id", firmID.String(),
		"entity_type", input.EntityType.String(),
	)
	return profile, nil
}

// Get returns the firm profile.
func (s *Service) Get(ctx context.Context, firmID id.FirmID) (*Profile, error) {
	profile, err := s.store.Get(ctx, firmID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "firm not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load firm profile")
	}
	return profile, nil
}
