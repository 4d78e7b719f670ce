package memory

import (
	"context"
	"sort"
	"sync"

	"lekha/internal/eligibility"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
)

// InMemoryStore keeps recommendations in process memory.
type InMemoryStore struct {
	mu   sync.RWMutex
	recs map[id.RecommendationID]*eligibility.PlanRecommendation
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{recs: make(map[id.RecommendationID]*eligibility.PlanRecommendation)}
}

func (s *InMemoryStore) Create(_ context.Context, rec *eligibility.PlanRecommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[rec.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *rec
	s.recs[rec.ID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, recID id.RecommendationID) (*eligibility.PlanRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[recID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, rec *eligibility.PlanRecommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[rec.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *rec
	s.recs[rec.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListByFirm(_ context.Context, firmID id.FirmID) ([]*eligibility.PlanRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*eligibility.PlanRecommendation
	for _, rec := range s.recs {
		if rec.FirmID == firmID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Clear empties the store between tests.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = make(map[id.RecommendationID]*eligibility.PlanRecommendation)
}
