package settings

import (
	"context"
	"sync"
)

// MemoryStore keeps settings in process memory (offline play, tests).
type MemoryStore struct {
	mutex  sync.Mutex
	values map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]int)}
}

func (s *MemoryStore) PreferredStartPos(_ context.Context) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if v, ok := s.values[KeyPreferredStartPos]; ok {
		return v, nil
	}
	return 0, ErrNotSet
}

func (s *MemoryStore) SetPreferredStartPos(_ context.Context, pos int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.values[KeyPreferredStartPos] = pos
	return nil
}
