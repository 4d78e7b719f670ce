package memory

import (
	"context"
	"sync"

	"lekha/internal/firm"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
)

// InMemoryStore keeps firm profiles in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.FirmID]*firm.Profile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.FirmID]*firm.Profile)}
}

func (s *InMemoryStore) Get(_ context.Context, firmID id.FirmID) (*firm.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[firmID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *profile
	return &cp, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, profile *firm.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *profile
	s.profiles[profile.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListIDs(_ context.Context) ([]id.FirmID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]id.FirmID, 0, len(s.profiles))
	for firmID := range s.profiles {
		ids = append(ids, firmID)
	}
	return ids, nil
}

// Clear empties the store between tests.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = make(map[id.FirmID]*firm.Profile)
}
