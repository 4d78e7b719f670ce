package rules

import (
	id "lekha/pkg/domain"
)

// Graph indexes the rule catalog for resolution. Build one at startup and
// inject it wherever rules are needed; there is no package-level instance.
type Graph struct {
	rules []ComplianceRule
	byID  map[id.RuleID]int
	// Inverted indexes over raw catalog values. Malformed entries index as
	// given; they just never intersect with a validated query.
	byEntity map[id.EntityType][]id.RuleID
	byEvent  map[id.SystemEventType][]id.RuleID
}

// CycleEdge records a dependency back-edge skipped during ordering. Callers
// must not rely on cycle members firing in a specific order.
type CycleEdge struct {
	From id.RuleID
	To   id.RuleID
}

// Resolution is the outcome of resolving an event against the graph: the
// surviving rules in dependency order, plus any dependency cycles found
// among them.
type Resolution struct {
	Rules  []ComplianceRule
	Cycles []CycleEdge
}

// NewGraph builds the indexes from a catalog. Catalog order is preserved as
// the tiebreak order everywhere.
func NewGraph(catalog []ComplianceRule) *Graph {
	g := &Graph{
		rules:    catalog,
		byID:     make(map[id.RuleID]int, len(catalog)),
		byEntity: make(map[id.EntityType][]id.RuleID),
		byEvent:  make(map[id.SystemEventType][]id.RuleID),
	}
	for i, r := range catalog {
		g.byID[r.ID] = i
		g.byEvent[r.TriggerEvent] = append(g.byEvent[r.TriggerEvent], r.ID)
		for _, et := range r.EntityTypes {
			g.byEntity[et] = append(g.byEntity[et], r.ID)
		}
	}
	return g
}

// Rule returns the catalog entry for an id.
func (g *Graph) Rule(ruleID id.RuleID) (ComplianceRule, bool) {
	i, ok := g.byID[ruleID]
	if !ok {
		return ComplianceRule{}, false
	}
	return g.rules[i], true
}

// RulesByEntityType returns the active rules applicable to an entity type.
func (g *Graph) RulesByEntityType(entityType id.EntityType) []ComplianceRule {
	return g.activeRules(g.byEntity[entityType])
}

// RulesByEventType returns the active rules triggered by an event type.
func (g *Graph) RulesByEventType(eventType id.SystemEventType) []ComplianceRule {
	return g.activeRules(g.byEvent[eventType])
}

func (g *Graph) activeRules(ids []id.RuleID) []ComplianceRule {
	var out []ComplianceRule
	for _, rid := range ids {
		r := g.rules[g.byID[rid]]
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

// Resolve intersects the entity and event indexes, keeps active rules whose
// trigger conditions hold against the payload, and orders the survivors so
// every dependency precedes its dependents. Dependency cycles are broken by
// skipping the back-edge and reported in the result.
func (g *Graph) Resolve(eventType id.SystemEventType, entityType id.EntityType, payload map[string]any) Resolution {
	inEntity := make(map[id.RuleID]bool, len(g.byEntity[entityType]))
	for _, rid := range g.byEntity[entityType] {
		inEntity[rid] = true
	}

	var candidates []id.RuleID
	for _, rid := range g.byEvent[eventType] {
		if !inEntity[rid] {
			continue
		}
		r := g.rules[g.byID[rid]]
		if !r.Active {
			continue
		}
		if !conditionsHold(r.TriggerConditions, payload) {
			continue
		}
		candidates = append(candidates, rid)
	}

	return g.order(candidates)
}

// conditionsHold evaluates every declared condition against the payload.
// Conditions the rule does not declare are not checked; any failing
// condition excludes the rule. A missing payload field fails.
func conditionsHold(conditions []Condition, payload map[string]any) bool {
	for _, c := range conditions {
		v, ok := payload[c.Field]
		if !ok {
			return false
		}
		switch c.Op {
		case OpGreaterOrEqual:
			pv, pok := asFloat(v)
			cv, cok := asFloat(c.Value)
			if !pok || !cok || pv < cv {
				return false
			}
		case OpLessOrEqual:
			pv, pok := asFloat(v)
			cv, cok := asFloat(c.Value)
			if !pok || !cok || pv > cv {
				return false
			}
		case OpEquals:
			if !looseEqual(v, c.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// looseEqual compares numbers numerically and everything else with ==, so a
// JSON-decoded 25 (float64) equals a catalog-declared 25 (int).
func looseEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
		return false
	}
	return a == b
}

const (
	unvisited = iota
	visiting
	visited
)

// order runs an iterative depth-first traversal over the dependency edges of
// the surviving rules. Dependencies outside the surviving set impose no
// ordering. The visiting marker detects back-edges; each one is skipped and
// reported, so resolution always terminates.
func (g *Graph) order(candidates []id.RuleID) Resolution {
	inSet := make(map[id.RuleID]bool, len(candidates))
	for _, rid := range candidates {
		inSet[rid] = true
	}

	state := make(map[id.RuleID]int, len(candidates))
	var res Resolution

	type frame struct {
		rule id.RuleID
		next int // index into the rule's dependency list
	}

	for _, root := range candidates {
		if state[root] != unvisited {
			continue
		}
		stack := []frame{{rule: root}}
		state[root] = visiting

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.rules[g.byID[top.rule]].Dependencies

			if top.next < len(deps) {
				dep := deps[top.next]
				top.next++
				if !inSet[dep] {
					continue
				}
				switch state[dep] {
				case visiting:
					res.Cycles = append(res.Cycles, CycleEdge{From: top.rule, To: dep})
				case unvisited:
					state[dep] = visiting
					stack = append(stack, frame{rule: dep})
				}
				continue
			}

			state[top.rule] = visited
			res.Rules = append(res.Rules, g.rules[g.byID[top.rule]])
			stack = stack[:len(stack)-1]
		}
	}
	return res
}
