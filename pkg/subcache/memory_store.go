package subcache

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu     sync.RWMutex
	states map[uuid.UUID]CachedState
}

// NewMemoryStore returns an in-memory Store for tests and single-process
// hosts. States are copied on both Save and Load so callers never share
// memory with the store.
func NewMemoryStore() Store {
	return &memoryStore{states: make(map[uuid.UUID]CachedState)}
}

func (s *memoryStore) Load(ctx context.Context, userID uuid.UUID) (*CachedState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	stateCopy := state
	return &stateCopy, nil
}

func (s *memoryStore) Save(ctx context.Context, userID uuid.UUID, state *CachedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = *state
	return nil
}
