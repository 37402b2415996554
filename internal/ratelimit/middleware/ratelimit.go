// Package middleware enforces the per-tenant rate limit at the HTTP layer.
package middleware

//go:generate mockgen -source=ratelimit.go -destination=mocks/mocks.go -package=mocks RateLimiter

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fieldgate/internal/ratelimit/models"
	"fieldgate/pkg/platform/httputil"
	"fieldgate/pkg/requestcontext"
)

// RateLimiter decides whether a request fits its tenant's current window.
type RateLimiter interface {
	Check(ctx context.Context, tenantID, clientIP string, scope models.Scope) (*models.Result, error)
}

type Middleware struct {
	limiter        RateLimiter
	logger         *slog.Logger
	exemptPrefixes []string
}

type Option func(*Middleware)

// WithExemptPrefixes bypasses the limiter for the unified public-path table.
// The same prefixes are exempt from tenant context enforcement.
func WithExemptPrefixes(prefixes []string) Option {
	return func(m *Middleware) {
		m.exemptPrefixes = prefixes
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{limiter: limiter, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RateLimit returns middleware counting requests against the given scope.
// Store failures fail open: dropping requests because the limiter backend is
// down would turn an availability incident into an outage.
func (m *Middleware) RateLimit(scope models.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			tenantID := requestcontext.TenantID(ctx)
			if tenantID == "" {
				// The tenant resolver runs first and rejects requests without
				// a tenant; reaching here without one means a wiring bug.
				m.logger.ErrorContext(ctx, "rate limiter reached without tenant context",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			result, err := m.limiter.Check(ctx, tenantID, requestcontext.ClientIP(ctx), scope)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed",
					"error", err,
					"tenant_id", tenantID,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			// Headers are reported on every response, admitted or not.
			addRateLimitHeaders(w, result)

			if !result.Allowed {
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) exempt(path string) bool {
	for _, prefix := range m.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests for this tenant. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
