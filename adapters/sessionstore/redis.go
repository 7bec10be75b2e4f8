package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the key the session record is stored under.
const DefaultKey = "wallet_auth_session"

// RedisStore keeps the session record in Redis under a single key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a new Redis store. The record expires with the
// maximum session age.
func NewRedisStore(client *redis.Client, key string) ports.SessionStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{
		client: client,
		key:    key,
	}
}

// Load reads the session record from Redis
func (s *RedisStore) Load(ctx context.Context) (core.StoredSession, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.StoredSession{}, core.ErrNotFound
	}
	if err != nil {
		return core.StoredSession{}, fmt.Errorf("failed to load session: %w", err)
	}

	var stored core.StoredSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return core.StoredSession{}, fmt.Errorf("%w: %v", core.ErrSessionInvalid, err)
	}
	return stored, nil
}

// Save writes the session record to Redis
func (s *RedisStore) Save(ctx context.Context, stored core.StoredSession) error {
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, s.key, payload, core.SessionMaxAge).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the session record from Redis
func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
