package outbox

import (
	"context"
	"sync"
)

// MemoryStore keeps the queue in process memory. Suitable for tests and for
// terminals that rebuild their queue from local storage on start.
type MemoryStore struct {
	mu      sync.Mutex
	order   []string
	entries map[string]Entry
}

// NewMemoryStore constructs MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Enqueue(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	e.Status = StatusPending
	s.entries[e.ID] = e
	return nil
}

func (s *MemoryStore) ListPending(_ context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, id := range s.order {
		e, ok := s.entries[id]
		if !ok || e.Status != StatusPending {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Ack(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrEntryNotFound
	}
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Park(_ context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.Status = StatusParked
	e.LastError = reason
	s.entries[id] = e
	return nil
}

func (s *MemoryStore) MarkAttempt(_ context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.Attempts++
	e.LastError = reason
	s.entries[id] = e
	return nil
}

func (s *MemoryStore) ListParked(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, id := range s.order {
		if e, ok := s.entries[id]; ok && e.Status == StatusParked {
			out = append(out, e)
		}
	}
	return out, nil
}
