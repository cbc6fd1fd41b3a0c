package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned by stores that hold no valid token for a key.
var ErrTokenNotFound = errors.New("token not found")

// Store persists tokens by key.
type Store interface {
	Get(ctx context.Context, key string) (*Token, error)
	Set(ctx context.Context, key string, token *Token) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps tokens in process.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Token)}
}

// Get returns the token for key, or ErrTokenNotFound if absent or expired.
func (s *MemoryStore) Get(_ context.Context, key string) (*Token, error) {
	s.mu.RLock()
	token, ok := s.tokens[key]
	s.mu.RUnlock()

	if !ok || token.IsExpired() {
		return nil, ErrTokenNotFound
	}
	return &token, nil
}

// Set stores a copy of token.
func (s *MemoryStore) Set(_ context.Context, key string, token *Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}
	s.mu.Lock()
	s.tokens[key] = *token
	s.mu.Unlock()
	return nil
}

// Delete removes the token for key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.tokens, key)
	s.mu.Unlock()
	return nil
}

// RedisStore shares tokens between processes. Entries expire with the token.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: redisClient}
}

// Get returns the token for key, or ErrTokenNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) (*Token, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode stored token: %w", err)
	}
	if token.IsExpired() {
		_ = s.Delete(ctx, key)
		return nil, ErrTokenNotFound
	}
	return &token, nil
}

// Set stores token with a TTL equal to its remaining lifetime.
// Already expired tokens are not stored.
func (s *RedisStore) Set(ctx context.Context, key string, token *Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}
	ttl := token.TTL()
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the token for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
