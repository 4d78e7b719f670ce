package memory

import (
	"context"
	"sort"
	"sync"

	"lekha/internal/risk"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
)

// InMemoryStore keeps risk records in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	risks map[id.RiskID]*risk.ComplianceRisk
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{risks: make(map[id.RiskID]*risk.ComplianceRisk)}
}

func (s *InMemoryStore) Create(_ context.Context, r *risk.ComplianceRisk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.risks[r.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *r
	s.risks[r.ID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, riskID id.RiskID) (*risk.ComplianceRisk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.risks[riskID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, r *risk.ComplianceRisk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.risks[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *r
	s.risks[r.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListByFirm(_ context.Context, firmID id.FirmID, filter risk.ListFilter) ([]*risk.ComplianceRisk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*risk.ComplianceRisk
	for _, r := range s.risks {
		if r.FirmID != firmID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Clear empties the store between tests.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.risks = make(map[id.RiskID]*risk.ComplianceRisk)
}
