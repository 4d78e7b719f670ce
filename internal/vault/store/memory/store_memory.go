package memory

import (
	"context"
	"sort"
	"sync"

	"lekha/internal/vault"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
)

// InMemoryStore keeps document metadata in process memory.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[id.DocumentID]*vault.Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[id.DocumentID]*vault.Document)}
}

func clone(d *vault.Document) *vault.Document {
	cp := *d
	cp.Tags = append([]string(nil), d.Tags...)
	if d.TaskID != nil {
		taskID := *d.TaskID
		cp.TaskID = &taskID
	}
	return &cp
}

func (s *InMemoryStore) Create(_ context.Context, doc *vault.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; ok {
		return sentinel.ErrConflict
	}
	s.docs[doc.ID] = clone(doc)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, docID id.DocumentID) (*vault.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(doc), nil
}

func (s *InMemoryStore) Update(_ context.Context, doc *vault.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.docs[doc.ID] = clone(doc)
	return nil
}

func (s *InMemoryStore) ListByFirm(_ context.Context, firmID id.FirmID, filter vault.ListFilter) ([]*vault.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*vault.Document
	for _, doc := range s.docs {
		if doc.FirmID != firmID {
			continue
		}
		if filter.DocumentType != "" && doc.DocumentType != filter.DocumentType {
			continue
		}
		if filter.Tag != "" && !doc.HasTag(filter.Tag) {
			continue
		}
		out = append(out, clone(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Clear empties the store between tests.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[id.DocumentID]*vault.Document)
}
