package triprepo

import (
	"context"
	"fmt"
	"sync"

	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
)

// MemoryRepository keeps trips in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	trips map[string]trip.Trip
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{trips: make(map[string]trip.Trip)}
}

// Create implements trip.Repository.
func (r *MemoryRepository) Create(_ context.Context, t trip.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.trips[t.ID]; exists {
		return fmt.Errorf("trip %s already exists", t.ID)
	}
	r.trips[t.ID] = t.Clone()
	return nil
}

// Get implements trip.Repository.
func (r *MemoryRepository) Get(_ context.Context, id string) (trip.Trip, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trips[id]
	if !ok {
		return trip.Trip{}, false, nil
	}
	return t.Clone(), true, nil
}

// Update implements trip.Repository.
func (r *MemoryRepository) Update(_ context.Context, t trip.Trip, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.trips[t.ID]
	if !ok || current.Version != expectedVersion {
		return trip.ErrVersionConflict
	}
	r.trips[t.ID] = t.Clone()
	return nil
}

var _ trip.Repository = (*MemoryRepository)(nil)
