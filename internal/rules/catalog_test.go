package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lekha/pkg/domain"
)

const sampleCatalog = `[
  {
    "id": "pf_remittance_monthly",
    "name": "PF Remittance",
    "description": "Monthly provident fund remittance",
    "category": "payroll",
    "entityTypes": ["private_limited", "llp"],
    "triggerEvent": "payroll_executed",
    "triggerConditions": {
      "employeeCount": {"gte": 20},
      "plan": "premium",
      "state": {"eq": "KA"},
      "turnover": {"lte": 50000000}
    },
    "frequency": "monthly",
    "dueDateLogic": {"type": "fixed_day", "dayOfMonth": 15, "monthOffset": 1},
    "requiredDocuments": [
      {"documentType": "salary_register", "mandatory": true},
      {"documentType": "challan_copy", "mandatory": false}
    ],
    "dependencies": ["payroll_processing"],
    "taskConfiguration": {"priority": "high", "requiresCAReview": true},
    "active": true
  }
]`

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, catalog, 1)

	rule := catalog[0]
	assert.Equal(t, id.RuleID("pf_remittance_monthly"), rule.ID)
	assert.Equal(t, id.EventPayrollExecuted, rule.TriggerEvent)
	assert.Equal(t, id.FrequencyMonthly, rule.Frequency)
	assert.Equal(t, []id.EntityType{id.EntityPrivateLimited, id.EntityLLP}, rule.EntityTypes)
	assert.Equal(t, DueDatePolicy{Type: DueFixedDay, DayOfMonth: 15, MonthOffset: 1}, rule.DueDate)
	assert.Equal(t, []id.RuleID{"payroll_processing"}, rule.Dependencies)
	assert.True(t, rule.TaskConfig.RequiresCAReview)
	assert.Equal(t, id.PriorityHigh, rule.TaskConfig.Priority)
	assert.True(t, rule.Active)

	require.Len(t, rule.RequiredDocuments, 2)
	assert.True(t, rule.RequiredDocuments[0].Mandatory)

	ops := map[string]ConditionOp{}
	for _, c := range rule.TriggerConditions {
		ops[c.Field] = c.Op
	}
	assert.Equal(t, OpGreaterOrEqual, ops["employeeCount"])
	assert.Equal(t, OpEquals, ops["plan"])
	assert.Equal(t, OpEquals, ops["state"])
	assert.Equal(t, OpLessOrEqual, ops["turnover"])
}

func TestParseCatalog_SyntaxErrorFails(t *testing.T) {
	_, err := ParseCatalog([]byte(`{not json`))
	require.Error(t, err)
}

func TestParseCatalog_UnknownVocabularyTolerated(t *testing.T) {
	catalog, err := ParseCatalog([]byte(`[
	  {
	    "id": "future_rule",
	    "name": "From a newer catalog",
	    "entityTypes": ["metaverse_dao"],
	    "triggerEvent": "wormhole_open",
	    "frequency": "biweekly",
	    "dueDateLogic": {"type": "lunar_cycle"},
	    "active": true
	  }
	]`))
	require.NoError(t, err)
	require.Len(t, catalog, 1)

	// The rule is carried as given; it simply never matches a valid query
	// and leaves due dates unchanged.
	g := NewGraph(catalog)
	for _, et := range []id.EntityType{id.EntityPrivateLimited, id.EntityLLP} {
		for _, ev := range []id.SystemEventType{id.EventMonthEnd, id.EventPayrollExecuted} {
			assert.Empty(t, g.Resolve(ev, et, nil).Rules)
		}
	}
}

func TestParsedConditionsResolveLikeTypedOnes(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	g := NewGraph(catalog)
	payload := map[string]any{
		"employeeCount": float64(25),
		"plan":          "premium",
		"state":         "KA",
		"turnover":      float64(10000000),
	}
	res := g.Resolve(id.EventPayrollExecuted, id.EntityPrivateLimited, payload)
	require.Len(t, res.Rules, 1)

	payload["employeeCount"] = float64(5)
	res = g.Resolve(id.EventPayrollExecuted, id.EntityPrivateLimited, payload)
	assert.Empty(t, res.Rules)
}
