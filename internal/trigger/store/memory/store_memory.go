package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"lekha/internal/trigger"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
)

// InMemoryEventStore keeps compliance events in process memory.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events map[id.EventID]*trigger.ComplianceEvent
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{events: make(map[id.EventID]*trigger.ComplianceEvent)}
}

func (s *InMemoryEventStore) Create(_ context.Context, event *trigger.ComplianceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; ok {
		return sentinel.ErrConflict
	}
	s.events[event.ID] = clone(event)
	return nil
}

func (s *InMemoryEventStore) Get(_ context.Context, eventID id.EventID) (*trigger.ComplianceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(event), nil
}

func (s *InMemoryEventStore) MarkProcessed(_ context.Context, eventID id.EventID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[eventID]
	if !ok {
		return sentinel.ErrNotFound
	}
	event.Processed = true
	event.ProcessedAt = &at
	return nil
}

func (s *InMemoryEventStore) ListByFirm(_ context.Context, firmID id.FirmID, limit int) ([]*trigger.ComplianceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*trigger.ComplianceEvent
	for _, event := range s.events {
		if event.FirmID == firmID {
			out = append(out, clone(event))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func clone(event *trigger.ComplianceEvent) *trigger.ComplianceEvent {
	cp := *event
	if event.Payload != nil {
		// Payload values are JSON scalars; a round-trip copies them safely.
		raw, err := json.Marshal(event.Payload)
		if err == nil {
			var payload map[string]any
			if json.Unmarshal(raw, &payload) == nil {
				cp.Payload = payload
			}
		}
	}
	return &cp
}

// MemoryDeduper is an in-process Deduper for tests and single-node runs.
type MemoryDeduper struct {
	mu   sync.Mutex
	keys map[string]time.Time
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{keys: make(map[string]time.Time)}
}

func (d *MemoryDeduper) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	if expiry, ok := d.keys[key]; ok && expiry.After(now) {
		return false, nil
	}
	d.keys[key] = now.Add(ttl)
	return true, nil
}

func (d *MemoryDeduper) Release(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.keys, key)
	return nil
}
