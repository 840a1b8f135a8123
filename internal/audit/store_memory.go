package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"dataguard/internal/domain"
)

// MemoryStore keeps the trail in process. It favors clarity over performance
// and is the default for tests and single-node runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, entries ...Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *MemoryStore) ListByDomain(_ context.Context, d domain.Domain) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.Domain == d {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListByRun(_ context.Context, runID uuid.UUID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len reports the total number of appended entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
