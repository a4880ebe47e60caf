package favoriterepo

import (
	"context"
	"slices"
	"sync"

	"github.com/yanqian/weather-dashboard/internal/domain/favorites"
)

// MemoryRepository provides an in-memory favorites store for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	lists map[string][]string
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{lists: make(map[string][]string)}
}

// List returns a copy of the client's favorites in insertion order.
func (r *MemoryRepository) List(_ context.Context, clientID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.lists[clientID]), nil
}

// Add appends the city unless it is already present.
func (r *MemoryRepository) Add(_ context.Context, clientID, city string, max int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.lists[clientID]
	if slices.Contains(current, city) {
		return nil
	}
	if max > 0 && len(current) >= max {
		return favorites.ErrLimitReached
	}
	r.lists[clientID] = append(current, city)
	return nil
}

// Remove deletes the city; unknown cities are ignored.
func (r *MemoryRepository) Remove(_ context.Context, clientID, city string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.lists[clientID]
	idx := slices.Index(current, city)
	if idx < 0 {
		return nil
	}
	r.lists[clientID] = slices.Delete(slices.Clone(current), idx, idx+1)
	return nil
}

var _ favorites.Repository = (*MemoryRepository)(nil)
