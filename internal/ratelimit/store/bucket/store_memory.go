package bucket

import (
	"context"
	"sync"
	"time"

	"fieldgate/internal/ratelimit/models"
)

// InMemoryStore implements Store with fixed-window counting in process
// memory. Fixed windows trade precision for O(1) memory and O(1) checks:
// pathological alignment permits up to 2N requests across 2W, which is
// acceptable for abuse containment.
//
// Counters are process-local; a horizontally scaled deployment enforces the
// limit per instance. Use RedisStore for global enforcement.
type InMemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*fixedWindow
	now     func() time.Time
}

// fixedWindow is a single counter. Count is only incremented while the
// window is current; an elapsed window is replaced wholesale.
type fixedWindow struct {
	count   int
	resetAt time.Time
}

// NewInMemoryStore creates an empty in-memory bucket store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		buckets: make(map[string]*fixedWindow),
		now:     time.Now,
	}
}

// Allow implements Store.
func (s *InMemoryStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	fw := s.buckets[key]
	if fw == nil || !now.Before(fw.resetAt) {
		fw = &fixedWindow{count: 0, resetAt: now.Add(window)}
		s.buckets[key] = fw
	}
	fw.count++

	remaining := limit - fw.count
	if remaining < 0 {
		remaining = 0
	}

	result := &models.Result{
		Allowed:   fw.count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   fw.resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = retryAfterSeconds(now, fw.resetAt)
	}
	return result, nil
}

// Reset clears the counter for a key.
func (s *InMemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// Sweep discards buckets whose window has elapsed and returns how many were
// removed. Memory stays bounded by the distinct keys seen within roughly one
// sweep interval.
func (s *InMemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, fw := range s.buckets {
		if !now.Before(fw.resetAt) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// Run sweeps on a fixed interval, independent of request traffic, until the
// context is cancelled.
func (s *InMemoryStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len reports the current bucket count. Used by sweeper tests and metrics.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// retryAfterSeconds rounds the remaining window up to whole seconds so the
// Retry-After hint never advises retrying inside the current window.
func retryAfterSeconds(now, resetAt time.Time) int {
	secs := int((resetAt.Sub(now) + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
