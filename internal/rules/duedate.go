package rules

import "time"

// CalculateDueDate derives a concrete due date from the trigger date per the
// rule's due-date policy. Pure function; an unrecognized policy type returns
// the trigger date unchanged.
func CalculateDueDate(rule ComplianceRule, trigger time.Time) time.Time {
	p := rule.DueDate
	switch p.Type {
	case DueFixedDay:
		// Day-of-month plus month offset, regardless of the trigger's day.
		return time.Date(trigger.Year(), trigger.Month()+time.Month(p.MonthOffset), p.DayOfMonth,
			0, 0, 0, 0, trigger.Location())

	case DueMonthEnd:
		// Day 0 of the following month is the last calendar day.
		return time.Date(trigger.Year(), trigger.Month()+time.Month(p.MonthOffset)+1, 0,
			0, 0, 0, 0, trigger.Location())

	case DueQuarterEnd:
		shifted := time.Date(trigger.Year(), trigger.Month()+time.Month(p.MonthOffset), 1,
			0, 0, 0, 0, trigger.Location())
		quarterEndMonth := ((int(shifted.Month())-1)/3)*3 + 3
		return time.Date(shifted.Year(), time.Month(quarterEndMonth)+1, 0,
			0, 0, 0, 0, trigger.Location())

	case DueYearEnd:
		// Fiscal year end is March 31, rolling forward once it has passed.
		yearEnd := time.Date(trigger.Year(), time.March, 31, 0, 0, 0, 0, trigger.Location())
		triggerDay := time.Date(trigger.Year(), trigger.Month(), trigger.Day(), 0, 0, 0, 0, trigger.Location())
		if yearEnd.Before(triggerDay) {
			yearEnd = time.Date(trigger.Year()+1, time.March, 31, 0, 0, 0, 0, trigger.Location())
		}
		return yearEnd

	case DueDaysAfterEvent:
		return trigger.AddDate(0, 0, p.DaysAfter)

	default:
		return trigger
	}
}
