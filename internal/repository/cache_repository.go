package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/Ragul198/Event/pkg/errors"
)

const revokedPrefix = "session:revoked:"

// CacheRepository wraps Redis for cached payloads and the session revocation list.
// Without a client, cache reads always miss and revocations are kept in process memory.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger

	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewCacheRepository constructs a cache repository. client may be nil.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger, revoked: make(map[string]time.Time), now: time.Now}
}

// Get retrieves and unmarshals the cached value into dest.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set marshals value and stores it with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern removes cached entries matching pattern.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}
	return nil
}

// Revoke denylists a session key until the given expiry.
func (r *CacheRepository) Revoke(ctx context.Context, key string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if r.client == nil {
		r.mu.Lock()
		r.revoked[key] = until
		r.mu.Unlock()
		return nil
	}
	if err := r.client.Set(ctx, revokedPrefix+key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether a session key is denylisted.
func (r *CacheRepository) IsRevoked(ctx context.Context, key string) (bool, error) {
	if r.client == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		until, ok := r.revoked[key]
		if !ok {
			return false, nil
		}
		if !r.now().Before(until) {
			delete(r.revoked, key)
			return false, nil
		}
		return true, nil
	}
	n, err := r.client.Exists(ctx, revokedPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis check revocation: %w", err)
	}
	return n > 0, nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
