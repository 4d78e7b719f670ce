package domain

import dErrors "lekha/pkg/domain-errors"

// SystemEventType is a canonical label for a business occurrence that can
// trigger rule evaluation. Business modules report these through the trigger
// service; the rule graph indexes rules by them.
type SystemEventType string

const (
	EventRegistrationCompleted SystemEventType = "registration_completed"
	EventEmployeeCountChanged  SystemEventType = "employee_count_changed"
	EventMonthEnd              SystemEventType = "month_end"
	EventQuarterEnd            SystemEventType = "quarter_end"
	EventFiscalYearEnd         SystemEventType = "fiscal_year_end"
	EventPayrollExecuted       SystemEventType = "payroll_executed"
	EventInvoiceGenerated      SystemEventType = "invoice_generated"
	EventSubscriptionActivated SystemEventType = "subscription_activated"
)

var validEventTypes = map[SystemEventType]bool{
	EventRegistrationCompleted: true,
	EventEmployeeCountChanged:  true,
	EventMonthEnd:              true,
	EventQuarterEnd:            true,
	EventFiscalYearEnd:         true,
	EventPayrollExecuted:       true,
	EventInvoiceGenerated:      true,
	EventSubscriptionActivated: true,
}

// ParseSystemEventType constructs a SystemEventType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseSystemEventType(s string) (SystemEventType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "event type cannot be empty")
	}
	e := SystemEventType(s)
	if !e.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported event type %q", s)
	}
	return e, nil
}

// IsValid checks if the event type is one of the supported enum values.
func (e SystemEventType) IsValid() bool {
	return validEventTypes[e]
}

func (e SystemEventType) String() string {
	return string(e)
}
