// Package config builds process configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultPublicPathPrefixes is the fixed exemption table shared by the tenant
// context resolver and the rate limiter. Every prefix here is reachable
// without an authenticated principal; review this list whenever a new
// unauthenticated route is added.
var DefaultPublicPathPrefixes = []string{
	"/auth/login",
	"/auth/logout",
	"/auth/invitations/accept",
	"/auth/csrf",
	"/healthz",
	"/metrics",
}

// Server captures process-level configuration for the fieldgate core.
type Server struct {
	Addr          string
	JWTSigningKey string

	// Rate limiter: at most RateLimit requests per RateWindow for each
	// (tenant, client address, scope) triple. Elapsed in-memory buckets are
	// garbage-collected every RateSweepInterval.
	RateLimit         int
	RateWindow        time.Duration
	RateSweepInterval time.Duration

	// RedisURL, when set, switches the rate limiter to the shared redis
	// bucket store so horizontally scaled deployments enforce one global
	// limit. Empty keeps the per-process in-memory store.
	RedisURL string

	// AuditDBDSN, when set, persists audit records to postgres instead of
	// the in-memory store. AuditBuffer sizes the publisher channel.
	AuditDBDSN  string
	AuditBuffer int

	PublicPathPrefixes []string
}

// FromEnv builds a Server config from environment variables, applying
// defaults suitable for local development.
func FromEnv() Server {
	return Server{
		Addr:               envStr("FIELDGATE_ADDR", ":8080"),
		JWTSigningKey:      envStr("FIELDGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		RateLimit:          envInt("FIELDGATE_RATE_LIMIT", 100),
		RateWindow:         envDuration("FIELDGATE_RATE_WINDOW", time.Minute),
		RateSweepInterval:  envDuration("FIELDGATE_RATE_SWEEP_INTERVAL", 5*time.Minute),
		RedisURL:           os.Getenv("FIELDGATE_REDIS_URL"),
		AuditDBDSN:         os.Getenv("FIELDGATE_AUDIT_DB_DSN"),
		AuditBuffer:        envInt("FIELDGATE_AUDIT_BUFFER", 256),
		PublicPathPrefixes: DefaultPublicPathPrefixes,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
