// Package service composes bucket keys and enforces the configured limit.
package service

import (
	"context"
	"log/slog"
	"time"

	"fieldgate/internal/ratelimit/models"
	"fieldgate/internal/ratelimit/store/bucket"
)

// recorder is the subset of the metrics type the service needs.
type recorder interface {
	RecordDecision(scope string, allowed bool)
}

// Service applies the per-tenant fixed-window limit through an injected
// bucket store.
type Service struct {
	store   bucket.Store
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics recorder
}

type Option func(*Service)

// WithMetrics records limiter decisions to prometheus.
func WithMetrics(m recorder) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a rate limit service admitting at most limit requests per
// window for each (tenant, client address, scope) triple.
func New(store bucket.Store, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check counts this request against the triple's current window.
func (s *Service) Check(ctx context.Context, tenantID, clientIP string, scope models.Scope) (*models.Result, error) {
	key := models.BucketKey(tenantID, clientIP, scope)
	result, err := s.store.Allow(ctx, key, s.limit, s.window)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordDecision(string(scope), result.Allowed)
	}
	if !result.Allowed {
		s.logger.WarnContext(ctx, "rate limit exceeded",
			"tenant_id", tenantID,
			"scope", scope,
			"retry_after", result.RetryAfter,
		)
	}
	return result, nil
}
