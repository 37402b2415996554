// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services and stores read them without
// importing net/http. Tests can inject values directly:
//
//	ctx = requestcontext.WithTenantID(ctx, "t-1")
//	ctx = requestcontext.WithClientIP(ctx, "198.51.100.7")
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	tenantIDKey  struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
	requestIDKey struct{}
)

// WithTenantID attaches the resolved tenant identifier. Only the tenant
// context resolver may call this; the value is derived from the authenticated
// principal and must never come from client-supplied parameters.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey{}, tenantID)
}

// TenantID returns the resolved tenant identifier, or "" when the request is
// outside a tenant context (public endpoint or unauthenticated).
func TenantID(ctx context.Context) string {
	if v, ok := ctx.Value(tenantIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientIP attaches the client address extracted by the metadata middleware.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the client address, or "" when metadata middleware did not run.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// WithUserAgent attaches the client User-Agent header value.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// UserAgent returns the client User-Agent, or "".
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID attaches the correlation id assigned to this request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id, or "".
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
