// Package sessionstore holds the client-side session persistence backends.
package sessionstore

import (
	"context"
	"sync"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// MemoryStore keeps the session record in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	stored *core.StoredSession
}

var _ ports.SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the held session record
func (s *MemoryStore) Load(context.Context) (core.StoredSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stored == nil {
		return core.StoredSession{}, core.ErrNotFound
	}
	return *s.stored, nil
}

// Save replaces the held session record
func (s *MemoryStore) Save(_ context.Context, stored core.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stored = &stored
	return nil
}

// Delete forgets the held session record
func (s *MemoryStore) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stored = nil
	return nil
}
