package trigger

import (
	"context"

	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
)

// Named entry points for the well-known system events. Each is a thin
// wrapper over ProcessComplianceEvent with the payload shape the catalog's
// conditions expect.

// RegistrationCompleted fires when a firm finishes onboarding.
func (s *Service) RegistrationCompleted(ctx context.Context, userID id.UserID, firmID id.FirmID) (*Result, error) {
	return s.ProcessComplianceEvent(ctx, EventInput{
		UserID: userID,
		FirmID: firmID,
		Type:   id.EventRegistrationCompleted,
	})
}

// EmployeeCountChanged fires when a firm's headcount changes. The count
// drives PF and ESI threshold rules.
func (s *Service) EmployeeCountChanged(ctx context.Context, userID id.UserID, firmID id.FirmID, employeeCount int) (*Result, error) {
	if employeeCount < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "employee count cannot be negative")
	}
	return s.ProcessComplianceEvent(ctx, EventInput{
		UserID:  userID,
		FirmID:  firmID,
		Type:    id.EventEmployeeCountChanged,
		Payload: map[string]any{"employeeCount": employeeCount},
	})
}

// MonthEnd fires on the first day after a calendar month closes.
func (s *Service) MonthEnd(ctx context.Context, userID id.UserID, firmID id.FirmID) (*Result, error) {
	return s.ProcessComplianceEvent(ctx, EventInput{
		UserID: userID,
		FirmID: firmID,
		Type:   id.EventMonthEnd,
	})
}

// QuarterEnd fires after a calendar quarter closes.
func (s *Service) QuarterEnd(ctx context.Context, userID id.UserID, firmID id.FirmID) (*Result, error) {
	return s.ProcessComplianceEvent(ctx, EventInput{
		UserID: userID,
		FirmID: firmID,
		Type:   id.EventQuarterEnd,
	})
}

// FiscalYearEnd fires after March 31.
func (s *Service) FiscalYearEnd(ctx context.Context, userID id.UserID, firmID id.FirmID) (*Result, error) {
	return s.ProcessComplianceEvent(ctx, EventInput{
		UserID: userID,
		FirmID: firmID,
		Type:   id.EventFiscalYearEnd,
	})
}

// PayrollExecuted fires when a payroll run completes. The payload carries
// the facts TDS and remittance rules condition on.
func (s *Service) PayrollExecuted(ctx context.Context, userID id.UserID, firmID id.FirmID, payload map[string]any) (*Result, error) {
	return s.ProcessComplianceEvent(ctx, EventInput{
		UserID:  userID,
		FirmID:  firmID,
		Type:    id.EventPayrollExecuted,
		Payload: payload,
	})
}

// InvoiceGenerated fires when an invoice is issued.
func (s *Service) InvoiceGenerated(ctx context.Context, userID id.UserID, firmID id.FirmID, payload map[string]any) (*Result, error) {
	return s.ProcessComplianceEvent(ctx, EventInput{
		UserID:  userID,
		FirmID:  firmID,
		Type:    id.EventInvoiceGenerated,
		Payload: payload,
	})
}

// SubscriptionActivated fires when a firm activates a paid plan.
func (s *Service) SubscriptionActivated(ctx context.Context, userID id.UserID, firmID id.FirmID) (*Result, error) {
	return s.ProcessComplianceEvent(ctx, EventInput{
		UserID: userID,
		FirmID: firmID,
		Type:   id.EventSubscriptionActivated,
	})
}
