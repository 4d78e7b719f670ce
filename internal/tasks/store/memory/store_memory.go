package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"

	"lekha/internal/tasks"
)

// InMemoryStore keeps task instances in process memory. Used in tests and
// as the default store when no database is configured.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[id.TaskID]*tasks.Instance
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tasks: make(map[id.TaskID]*tasks.Instance)}
}

func (s *InMemoryStore) Create(_ context.Context, task *tasks.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; ok {
		return sentinel.ErrConflict
	}
	s.tasks[task.ID] = clone(task)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, taskID id.TaskID) (*tasks.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(task), nil
}

func (s *InMemoryStore) Update(_ context.Context, task *tasks.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.tasks[task.ID] = clone(task)
	return nil
}

func (s *InMemoryStore) ListByFirm(_ context.Context, firmID id.FirmID, filter tasks.ListFilter) ([]*tasks.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*tasks.Instance
	for _, task := range s.tasks {
		if task.FirmID != firmID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Category != "" && task.Category != filter.Category {
			continue
		}
		out = append(out, clone(task))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *InMemoryStore) ListOpenDueBefore(_ context.Context, cutoff time.Time) ([]*tasks.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*tasks.Instance
	for _, task := range s.tasks {
		if !task.Status.IsOpen() {
			continue
		}
		if !task.DueDate.Before(cutoff) {
			continue
		}
		out = append(out, clone(task))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

// Clear empties the store between tests.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[id.TaskID]*tasks.Instance)
}

func clone(task *tasks.Instance) *tasks.Instance {
	cp := *task
	if task.Documents != nil {
		cp.Documents = make([]tasks.DocumentSlot, len(task.Documents))
		copy(cp.Documents, task.Documents)
	}
	if task.Filing != nil {
		filing := *task.Filing
		cp.Filing = &filing
	}
	return &cp
}
