// Package bucket provides the rate limit counter stores.
//
// Store is the injection point for multi-instance deployments: the default
// in-memory implementation enforces limits per process, while the redis
// implementation shares counters across instances for exact global
// enforcement. Call sites depend only on the interface.
package bucket

import (
	"context"
	"time"

	"fieldgate/internal/ratelimit/models"
)

// Store counts requests in fixed windows keyed by bucket key.
type Store interface {
	// Allow records one request against the key's current window and
	// reports whether it fits within limit. A bucket whose window has
	// elapsed is replaced with a fresh one, never incremented.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error
}
