package eligibility

import (
	"fmt"

	"lekha/internal/firm"
)

// Statutory thresholds. PF registration is mandatory at 20 employees, ESI
// at 10; the plan upgrade nudge fires at 2 crore annual turnover.
const (
	pfEmployeeThreshold  = 20
	esiEmployeeThreshold = 10

	turnoverUpgradeThreshold = 2_00_00_000
)

// Candidate is one recommendation an evaluator proposes before persistence.
type Candidate struct {
	Type    RecommendationType
	Reason  string
	Details map[string]any
}

// Evaluate runs every evaluator over the profile and returns the
// recommendations that apply. Pure; the service decides what is new.
func Evaluate(profile *firm.Profile) []Candidate {
	var out []Candidate
	for _, eval := range []func(*firm.Profile) (Candidate, bool){
		evaluatePF,
		evaluateESI,
		evaluateMCA,
		evaluatePlanUpgrade,
	} {
		if candidate, ok := eval(profile); ok {
			out = append(out, candidate)
		}
	}
	return out
}

func evaluatePF(profile *firm.Profile) (Candidate, bool) {
	if profile.EmployeeCount < pfEmployeeThreshold {
		return Candidate{}, false
	}
	return Candidate{
		Type: RecommendPFRegistration,
		Reason: fmt.Sprintf("Provident fund registration is mandatory at %d employees; the firm has %d",
			pfEmployeeThreshold, profile.EmployeeCount),
		Details: map[string]any{"employee_count": profile.EmployeeCount},
	}, true
}

func evaluateESI(profile *firm.Profile) (Candidate, bool) {
	if profile.EmployeeCount < esiEmployeeThreshold || profile.EmployeeCount >= pfEmployeeThreshold {
		return Candidate{}, false
	}
	return Candidate{
		Type: RecommendESIRegistration,
		Reason: fmt.Sprintf("Employee state insurance applies from %d employees; the firm has %d",
			esiEmployeeThreshold, profile.EmployeeCount),
		Details: map[string]any{"employee_count": profile.EmployeeCount},
	}, true
}

func evaluateMCA(profile *firm.Profile) (Candidate, bool) {
	if !profile.EntityType.IsCorporate() {
		return Candidate{}, false
	}
	return Candidate{
		Type: RecommendMCACompliance,
		Reason: fmt.Sprintf("A %s must file annual returns with the Ministry of Corporate Affairs",
			profile.EntityType),
		Details: map[string]any{"entity_type": profile.EntityType.String()},
	}, true
}

func evaluatePlanUpgrade(profile *firm.Profile) (Candidate, bool) {
	if profile.AnnualTurnover < turnoverUpgradeThreshold {
		return Candidate{}, false
	}
	return Candidate{
		Type:    RecommendPlanUpgrade,
		Reason:  "Annual turnover has crossed 2 crore; the advanced compliance plan covers audit and reconciliation workflows",
		Details: map[string]any{"annual_turnover": profile.AnnualTurnover},
	}, true
}
