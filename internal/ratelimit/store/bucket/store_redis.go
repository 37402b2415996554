package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fieldgate/internal/ratelimit/models"
)

// RedisStore implements Store with fixed-window counters shared across
// process instances. Keys carry a TTL equal to the window, so redis expiry
// replaces the in-memory sweeper.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a bucket store backed by the given redis client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Allow implements Store. INCR starts a fresh counter when the previous
// window's key has expired, which preserves the replace-not-increment
// invariant without explicit window bookkeeping.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("incr bucket %q: %w", key, err)
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return nil, fmt.Errorf("expire bucket %q: %w", key, err)
		}
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("ttl bucket %q: %w", key, err)
	}
	if ttl < 0 {
		// The key lost its TTL (e.g. expiry raced the INCR). Reinstate it so
		// the counter cannot leak a permanent bucket.
		ttl = window
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return nil, fmt.Errorf("expire bucket %q: %w", key, err)
		}
	}

	now := time.Now()
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	result := &models.Result{
		Allowed:   int(count) <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   now.Add(ttl),
	}
	if !result.Allowed {
		result.RetryAfter = retryAfterSeconds(now, result.ResetAt)
	}
	return result, nil
}

// Reset clears the counter for a key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete bucket %q: %w", key, err)
	}
	return nil
}
