package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store. It is safe for concurrent use.
//
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemoryStore returns an empty MemoryStore.
//
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]Run)}
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) SaveRun(_ context.Context, r Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, sweep string) ([]Run, error) {
	s.mu.RLock()
	out := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		if sweep == "" || r.Sweep == sweep {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()
	sortRuns(out)
	return out, nil
}
