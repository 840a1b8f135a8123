package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"dataguard/internal/domain"
)

type versionKey struct {
	domain     domain.Domain
	ingestedAt int64
}

// MemoryDatasetStore keeps dataset versions in process. It intentionally
// favors clarity over performance.
type MemoryDatasetStore struct {
	mu       sync.RWMutex
	datasets map[versionKey]*domain.Dataset
}

func NewMemoryDatasetStore() *MemoryDatasetStore {
	return &MemoryDatasetStore{datasets: make(map[versionKey]*domain.Dataset)}
}

func (s *MemoryDatasetStore) Put(_ context.Context, ds *domain.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[versionKey{domain: ds.Domain, ingestedAt: ds.IngestedAt.UnixNano()}] = ds
	return nil
}

func (s *MemoryDatasetStore) Get(_ context.Context, d domain.Domain, ingestedAt time.Time) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ds, ok := s.datasets[versionKey{domain: d, ingestedAt: ingestedAt.UnixNano()}]; ok {
		return ds, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryDatasetStore) Latest(_ context.Context, d domain.Domain) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *domain.Dataset
	for key, ds := range s.datasets {
		if key.domain != d {
			continue
		}
		if latest == nil || ds.IngestedAt.After(latest.IngestedAt) {
			latest = ds
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (s *MemoryDatasetStore) Versions(_ context.Context, d domain.Domain) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []time.Time
	for key := range s.datasets {
		if key.domain == d {
			out = append(out, time.Unix(0, key.ingestedAt))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}
