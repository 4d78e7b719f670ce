package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateDueDate(t *testing.T) {
	tests := []struct {
		name    string
		policy  DueDatePolicy
		trigger time.Time
		want    time.Time
	}{
		{
			name:    "fixed day ignores trigger day",
			policy:  DueDatePolicy{Type: DueFixedDay, DayOfMonth: 11, MonthOffset: 1},
			trigger: date(2024, time.January, 31),
			want:    date(2024, time.February, 11),
		},
		{
			name:    "fixed day without offset",
			policy:  DueDatePolicy{Type: DueFixedDay, DayOfMonth: 7},
			trigger: date(2024, time.March, 25),
			want:    date(2024, time.March, 7),
		},
		{
			name:    "month end same month",
			policy:  DueDatePolicy{Type: DueMonthEnd},
			trigger: date(2024, time.January, 15),
			want:    date(2024, time.January, 31),
		},
		{
			name:    "month end with offset lands on leap day",
			policy:  DueDatePolicy{Type: DueMonthEnd, MonthOffset: 1},
			trigger: date(2024, time.January, 15),
			want:    date(2024, time.February, 29),
		},
		{
			name:    "month end with offset in non-leap year",
			policy:  DueDatePolicy{Type: DueMonthEnd, MonthOffset: 1},
			trigger: date(2023, time.January, 15),
			want:    date(2023, time.February, 28),
		},
		{
			name:    "quarter end of containing quarter",
			policy:  DueDatePolicy{Type: DueQuarterEnd},
			trigger: date(2024, time.February, 10),
			want:    date(2024, time.March, 31),
		},
		{
			name:    "quarter end with month offset crossing quarters",
			policy:  DueDatePolicy{Type: DueQuarterEnd, MonthOffset: 1},
			trigger: date(2024, time.March, 31),
			want:    date(2024, time.June, 30),
		},
		{
			name:    "year end rolls to next fiscal year",
			policy:  DueDatePolicy{Type: DueYearEnd},
			trigger: date(2024, time.June, 1),
			want:    date(2025, time.March, 31),
		},
		{
			name:    "year end before march stays in year",
			policy:  DueDatePolicy{Type: DueYearEnd},
			trigger: date(2024, time.February, 1),
			want:    date(2024, time.March, 31),
		},
		{
			name:    "year end on march 31 does not roll",
			policy:  DueDatePolicy{Type: DueYearEnd},
			trigger: date(2024, time.March, 31),
			want:    date(2024, time.March, 31),
		},
		{
			name:    "days after event",
			policy:  DueDatePolicy{Type: DueDaysAfterEvent, DaysAfter: 30},
			trigger: date(2024, time.January, 15),
			want:    date(2024, time.February, 14),
		},
		{
			name:    "unknown policy returns trigger unchanged",
			policy:  DueDatePolicy{Type: "lunar_cycle"},
			trigger: date(2024, time.January, 15),
			want:    date(2024, time.January, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := ComplianceRule{DueDate: tt.policy}
			got := CalculateDueDate(rule, tt.trigger)
			assert.Equal(t, tt.want, got)
		})
	}
}
