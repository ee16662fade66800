package store

import (
	"context"
	"sync"
	"time"

	"github.com/stagecrew/onboard-engine/internal/models"
)

// MemoryStore is an in-process SolutionStore backed by a mutex-guarded
// map. Solutions are deep-copied on the way in and out, so concurrent
// solve and conflict requests never observe shared mutable state.
type MemoryStore struct {
	mu        sync.RWMutex
	solutions map[string]*models.Solution
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		solutions: make(map[string]*models.Solution),
	}
}

// Put stores a copy of the solution under its id
func (s *MemoryStore) Put(ctx context.Context, sol *models.Solution) error {
	cp := cloneSolution(sol)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.solutions[cp.ID] = cp
	return nil
}

// Get returns a copy of the stored solution or ErrSolutionNotFound
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Solution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sol, ok := s.solutions[id]
	if !ok {
		return nil, ErrSolutionNotFound
	}
	return cloneSolution(sol), nil
}

// List returns copies of all stored solutions
func (s *MemoryStore) List(ctx context.Context) ([]*models.Solution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Solution, 0, len(s.solutions))
	for _, sol := range s.solutions {
		out = append(out, cloneSolution(sol))
	}
	return out, nil
}

// Delete removes a solution; unknown ids are a no-op
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.solutions, id)
	return nil
}

// DeleteOlderThan removes solutions created before the cutoff and
// returns the ids removed. Used by the retention worker.
func (s *MemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, sol := range s.solutions {
		if sol.CreatedAt.Before(cutoff) {
			delete(s.solutions, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

// Ping always succeeds for the in-memory store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
