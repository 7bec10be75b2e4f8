package store

import (
	"context"
	"sync"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// MemoryStore is an in-memory AuthorizationStore.
// This is primarily intended for testing purposes
type MemoryStore struct {
	records map[string]core.AuthorizationRecord
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(records ...core.AuthorizationRecord) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]core.AuthorizationRecord),
	}
	for _, rec := range records {
		s.records[rec.Identity] = rec
	}
	return s
}

var _ ports.AuthorizationStore = (*MemoryStore)(nil)

// Put adds or replaces the record of an identity
func (s *MemoryStore) Put(rec core.AuthorizationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.Identity] = rec
}

// Remove deletes the record of an identity
func (s *MemoryStore) Remove(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, identity)
}

// LookupAuthorization returns the record of identity
func (s *MemoryStore) LookupAuthorization(ctx context.Context, identity string) (core.AuthorizationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[identity]
	if !ok {
		return core.AuthorizationRecord{}, core.ErrNotFound
	}
	return rec, nil
}

// SetRequestIdentity scopes identity to the returned context
func (s *MemoryStore) SetRequestIdentity(ctx context.Context, identity string) (context.Context, error) {
	return core.WithRequestIdentity(ctx, identity), nil
}
