package poicache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
)

type entry struct {
	candidates []itinerary.CandidatePOI
	expiresAt  time.Time
}

// MemoryStore is an in-process Store for tests and single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]itinerary.CandidatePOI, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return slices.Clone(e.candidates), true, nil
}

// Set implements Store. A non-positive ttl keeps the entry until restart.
func (s *MemoryStore) Set(_ context.Context, key string, candidates []itinerary.CandidatePOI, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.entries[key] = entry{candidates: slices.Clone(candidates), expiresAt: exp}
	return nil
}

var _ Store = (*MemoryStore)(nil)
