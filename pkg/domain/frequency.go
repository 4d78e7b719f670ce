package domain

import (
	"time"

	dErrors "lekha/pkg/domain-errors"
)

// ComplianceFrequency captures how often an obligation recurs. One-off
// obligations fire once per triggering event; recurring ones fire once per
// period, which the trigger service uses to derive its dedupe window.
type ComplianceFrequency string

const (
	FrequencyOneTime   ComplianceFrequency = "one_time"
	FrequencyMonthly   ComplianceFrequency = "monthly"
	FrequencyQuarterly ComplianceFrequency = "quarterly"
	FrequencyAnnual    ComplianceFrequency = "annual"
)

var validFrequencies = map[ComplianceFrequency]bool{
	FrequencyOneTime:   true,
	FrequencyMonthly:   true,
	FrequencyQuarterly: true,
	FrequencyAnnual:    true,
}

// ParseComplianceFrequency constructs a ComplianceFrequency from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseComplianceFrequency(s string) (ComplianceFrequency, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "frequency cannot be empty")
	}
	f := ComplianceFrequency(s)
	if !f.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported frequency %q", s)
	}
	return f, nil
}

// IsValid checks if the frequency is one of the supported enum values.
func (f ComplianceFrequency) IsValid() bool {
	return validFrequencies[f]
}

func (f ComplianceFrequency) String() string {
	return string(f)
}

// Window returns the trigger-window label containing t for this frequency.
// Two triggers of the same rule inside one window are duplicates. One-off
// rules use a day-granularity window so a literal replay on the same day is
// still caught.
func (f ComplianceFrequency) Window(t time.Time) string {
	switch f {
	case FrequencyMonthly:
		return t.Format("2006-01")
	case FrequencyQuarterly:
		q := (int(t.Month())-1)/3 + 1
		return t.Format("2006") + "-Q" + string(rune('0'+q))
	case FrequencyAnnual:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}
