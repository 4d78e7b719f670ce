package risk

import (
	"fmt"
	"math"
	"time"

	"lekha/internal/tasks"
	id "lekha/pkg/domain"
)

// Detection thresholds and penalty rates. Rates follow the GST and income
// tax schedules: Rs 50/day late fee per return, 18% interest on short-paid
// tax.
const (
	mismatchMediumRatio = 0.05
	mismatchHighRatio   = 0.10

	itcHighRatio = 0.10

	delayedHighDays     = 15
	delayedCriticalDays = 30

	lateFeePerDay     = 50.0
	shortPaidInterest = 0.18
)

// Detectors are pure: they look at the facts they are given and either
// produce a risk or not. Persistence and audit live in the service.

// GSTRFilingFacts are the turnover totals reported on the two returns.
type GSTRFilingFacts struct {
	Period      string
	GSTR1Total  float64
	GSTR3BTotal float64
}

// DetectGSTRMismatch flags a variance between GSTR-1 and GSTR-3B turnover.
// Variance above 5% of the GSTR-1 figure is medium, above 10% high.
func DetectGSTRMismatch(facts GSTRFilingFacts) (ComplianceRisk, bool) {
	if facts.GSTR1Total <= 0 {
		return ComplianceRisk{}, false
	}
	diff := math.Abs(facts.GSTR1Total - facts.GSTR3BTotal)
	ratio := diff / facts.GSTR1Total
	if ratio <= mismatchMediumRatio {
		return ComplianceRisk{}, false
	}

	severity := SeverityMedium
	priority := id.PriorityMedium
	if ratio > mismatchHighRatio {
		severity = SeverityHigh
		priority = id.PriorityHigh
	}

	return ComplianceRisk{
		Type:     TypeGSTRMismatch,
		Severity: severity,
		Description: fmt.Sprintf("GSTR-1 and GSTR-3B turnover differ by %.1f%% for %s",
			ratio*100, facts.Period),
		Details: map[string]any{
			"period":         facts.Period,
			"gstr1_total":    facts.GSTR1Total,
			"gstr3b_total":   facts.GSTR3BTotal,
			"variance_ratio": ratio,
		},
		Action: RecommendedAction{
			Description:      "Reconcile outward supplies between GSTR-1 and GSTR-3B and amend the short-reported return",
			Priority:         priority,
			EstimatedPenalty: diff * shortPaidInterest,
		},
	}, true
}

// ITCFacts are the input tax credit figures for a period.
type ITCFacts struct {
	Period       string
	ITCClaimed   float64
	ITCAvailable float64
}

// DetectITCShortfall flags input tax credit left unclaimed against what the
// purchase records support. Any positive available-minus-claimed shortfall is
// a risk, high when the shortfall exceeds 10% of the available credit.
func DetectITCShortfall(facts ITCFacts) (ComplianceRisk, bool) {
	if facts.ITCAvailable <= 0 || facts.ITCClaimed < 0 {
		return ComplianceRisk{}, false
	}
	shortfall := facts.ITCAvailable - facts.ITCClaimed
	if shortfall <= 0 {
		return ComplianceRisk{}, false
	}

	severity := SeverityMedium
	priority := id.PriorityMedium
	if shortfall/facts.ITCAvailable > itcHighRatio {
		severity = SeverityHigh
		priority = id.PriorityHigh
	}

	return ComplianceRisk{
		Type:     TypeITCShortfall,
		Severity: severity,
		Description: fmt.Sprintf("ITC claimed falls short of credit available by %.2f for %s",
			shortfall, facts.Period),
		Details: map[string]any{
			"period":        facts.Period,
			"itc_claimed":   facts.ITCClaimed,
			"itc_available": facts.ITCAvailable,
			"shortfall":     shortfall,
		},
		Action: RecommendedAction{
			Description:      "Reconcile purchase records against GSTR-2B and claim the remaining credit before the availment window closes",
			Priority:         priority,
			EstimatedPenalty: shortfall,
		},
	}, true
}

// DetectDelayedFiling flags an open task past its due date. More than 30
// days late is critical, more than 15 high, anything overdue at least
// medium. The penalty estimate grows with every day late.
func DetectDelayedFiling(task *tasks.Instance, now time.Time) (ComplianceRisk, bool) {
	if task == nil || !task.Status.IsOpen() && task.Status != tasks.StatusOverdue {
		return ComplianceRisk{}, false
	}
	if !task.DueDate.Before(now) {
		return ComplianceRisk{}, false
	}
	daysLate := int(math.Ceil(now.Sub(task.DueDate).Hours() / 24))

	severity := SeverityMedium
	priority := id.PriorityMedium
	switch {
	case daysLate > delayedCriticalDays:
		severity = SeverityCritical
		priority = id.PriorityCritical
	case daysLate > delayedHighDays:
		severity = SeverityHigh
		priority = id.PriorityHigh
	}

	return ComplianceRisk{
		Type:     TypeDelayedFiling,
		Severity: severity,
		TaskID:   task.ID,
		Description: fmt.Sprintf("%s is %d days past its due date of %s",
			task.Name, daysLate, task.DueDate.Format("2006-01-02")),
		Details: map[string]any{
			"task_id":   task.ID.String(),
			"rule_id":   task.RuleID.String(),
			"due_date":  task.DueDate.Format("2006-01-02"),
			"days_late": daysLate,
		},
		Action: RecommendedAction{
			Description:      "File immediately; the late fee accrues daily",
			Priority:         priority,
			EstimatedPenalty: float64(daysLate) * lateFeePerDay,
		},
	}, true
}

// DetectMissingDocuments flags a task with mandatory document slots still
// empty, regardless of how far out the due date is.
func DetectMissingDocuments(task *tasks.Instance, now time.Time) (ComplianceRisk, bool) {
	if task == nil || !task.Status.IsOpen() && task.Status != tasks.StatusOverdue {
		return ComplianceRisk{}, false
	}

	var missing []string
	for _, slot := range task.Documents {
		if slot.Mandatory && !slot.Uploaded {
			missing = append(missing, slot.DocumentType)
		}
	}
	if len(missing) == 0 {
		return ComplianceRisk{}, false
	}

	severity := SeverityMedium
	priority := id.PriorityMedium
	if task.DueDate.Before(now) {
		severity = SeverityHigh
		priority = id.PriorityHigh
	}

	return ComplianceRisk{
		Type:     TypeMissingDocument,
		Severity: severity,
		TaskID:   task.ID,
		Description: fmt.Sprintf("%s is missing %d mandatory document(s) with the due date at %s",
			task.Name, len(missing), task.DueDate.Format("2006-01-02")),
		Details: map[string]any{
			"task_id":           task.ID.String(),
			"missing_documents": missing,
			"due_date":          task.DueDate.Format("2006-01-02"),
		},
		Action: RecommendedAction{
			Description: "Collect and upload the missing documents before the filing window closes",
			Priority:    priority,
		},
	}, true
}
