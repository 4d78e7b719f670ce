package rules

import (
	"encoding/json"
	"fmt"
	"os"

	id "lekha/pkg/domain"
)

// catalogRule is the wire shape of one rule in the JSON catalog. The field
// set is stable; see the authoring docs for the suite. Values are carried
// into ComplianceRule as given, without enum validation, so new catalog
// vocabulary does not break older engines.
type catalogRule struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Category          string            `json:"category"`
	EntityTypes       []string          `json:"entityTypes"`
	TriggerEvent      string            `json:"triggerEvent"`
	TriggerConditions map[string]any    `json:"triggerConditions"`
	Frequency         string            `json:"frequency"`
	DueDateLogic      catalogDueDate    `json:"dueDateLogic"`
	RequiredDocuments []catalogDocument `json:"requiredDocuments"`
	Dependencies      []string          `json:"dependencies"`
	TaskConfiguration catalogTaskConfig `json:"taskConfiguration"`
	Active            bool              `json:"active"`
}

type catalogDueDate struct {
	Type        string `json:"type"`
	DayOfMonth  int    `json:"dayOfMonth"`
	MonthOffset int    `json:"monthOffset"`
	DaysAfter   int    `json:"daysAfter"`
}

type catalogDocument struct {
	DocumentType string `json:"documentType"`
	Mandatory    bool   `json:"mandatory"`
}

type catalogTaskConfig struct {
	Priority         string `json:"priority"`
	RequiresCAReview bool   `json:"requiresCAReview"`
}

// ParseCatalog decodes a JSON rule catalog. Only JSON syntax errors fail;
// unknown enum values pass through untouched and simply never match.
func ParseCatalog(data []byte) ([]ComplianceRule, error) {
	var raw []catalogRule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode rule catalog: %w", err)
	}

	rules := make([]ComplianceRule, 0, len(raw))
	for _, cr := range raw {
		rules = append(rules, cr.toRule())
	}
	return rules, nil
}

// LoadCatalogFile reads and parses a catalog from disk.
func LoadCatalogFile(path string) ([]ComplianceRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule catalog: %w", err)
	}
	return ParseCatalog(data)
}

func (cr catalogRule) toRule() ComplianceRule {
	rule := ComplianceRule{
		ID:           id.RuleID(cr.ID),
		Name:         cr.Name,
		Description:  cr.Description,
		Category:     cr.Category,
		TriggerEvent: id.SystemEventType(cr.TriggerEvent),
		Frequency:    id.ComplianceFrequency(cr.Frequency),
		DueDate: DueDatePolicy{
			Type:        DueDatePolicyType(cr.DueDateLogic.Type),
			DayOfMonth:  cr.DueDateLogic.DayOfMonth,
			MonthOffset: cr.DueDateLogic.MonthOffset,
			DaysAfter:   cr.DueDateLogic.DaysAfter,
		},
		TaskConfig: TaskConfiguration{
			Priority:         id.TaskPriority(cr.TaskConfiguration.Priority),
			RequiresCAReview: cr.TaskConfiguration.RequiresCAReview,
		},
		Active: cr.Active,
	}
	for _, et := range cr.EntityTypes {
		rule.EntityTypes = append(rule.EntityTypes, id.EntityType(et))
	}
	for _, dep := range cr.Dependencies {
		rule.Dependencies = append(rule.Dependencies, id.RuleID(dep))
	}
	for _, doc := range cr.RequiredDocuments {
		rule.RequiredDocuments = append(rule.RequiredDocuments, RequiredDocument{
			DocumentType: doc.DocumentType,
			Mandatory:    doc.Mandatory,
		})
	}
	rule.TriggerConditions = parseConditions(cr.TriggerConditions)
	return rule
}

// parseConditions converts the catalog's field→literal-or-bound map into
// typed predicates. A bare literal means equality; {gte|lte|eq: value}
// selects the operator. An operator map with no recognized key yields an
// equality predicate against the raw map, which never matches; that keeps
// malformed conditions inert rather than fatal.
func parseConditions(raw map[string]any) []Condition {
	if len(raw) == 0 {
		return nil
	}
	conditions := make([]Condition, 0, len(raw))
	for field, v := range raw {
		cond := Condition{Field: field, Op: OpEquals, Value: v}
		if bounds, ok := v.(map[string]any); ok {
			if gte, ok := bounds["gte"]; ok {
				cond = Condition{Field: field, Op: OpGreaterOrEqual, Value: gte}
			} else if lte, ok := bounds["lte"]; ok {
				cond = Condition{Field: field, Op: OpLessOrEqual, Value: lte}
			} else if eq, ok := bounds["eq"]; ok {
				cond = Condition{Field: field, Op: OpEquals, Value: eq}
			}
		}
		conditions = append(conditions, cond)
	}
	return conditions
}
