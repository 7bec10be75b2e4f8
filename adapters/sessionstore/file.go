package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// FileStore keeps the session record as a JSON file, readable only by its
// owner.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ ports.SessionStore = (*FileStore)(nil)

// NewFileStore creates a new file store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the session record from disk
func (s *FileStore) Load(context.Context) (core.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.StoredSession{}, core.ErrNotFound
	}
	if err != nil {
		return core.StoredSession{}, fmt.Errorf("read session file: %w", err)
	}

	var stored core.StoredSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return core.StoredSession{}, fmt.Errorf("%w: %v", core.ErrSessionInvalid, err)
	}
	return stored, nil
}

// Save atomically replaces the session file
func (s *FileStore) Save(_ context.Context, stored core.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Delete removes the session file
func (s *FileStore) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
