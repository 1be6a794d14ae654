package memory

import (
	"context"
	"sync"
)

// StateStore keeps the durable game-state mirror in process memory. It
// exists for tests and for running without Redis; nothing survives a
// restart.
type StateStore struct {
	mu   sync.Mutex
	blob []byte
}

func NewStateStore() *StateStore {
	return &StateStore{}
}

func (s *StateStore) Save(_ context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = append([]byte(nil), blob...)
	return nil
}

func (s *StateStore) Load(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blob == nil {
		return nil, false, nil
	}
	return append([]byte(nil), s.blob...), true, nil
}
