// Package principal resolves the authenticated identity of an inbound
// request and makes it available as an immutable request-scoped value.
//
// Downstream components (tenant context resolver, rate limiter, audit) depend
// on the Principal having been validated once, here, at the boundary. They
// never re-check session state and never accept identity fields from request
// parameters.
package principal

import (
	"context"

	dErrors "fieldgate/pkg/domain-errors"
)

// Principal is the authenticated identity for one request. It is created by
// session deserialization and never mutated afterwards.
type Principal struct {
	UserID   string
	TenantID string
	Role     string
	// ImpersonatorID is set when a support operator is acting as UserID.
	// Empty for ordinary sessions.
	ImpersonatorID string
}

// Validate checks the required fields. A principal without a user id is
// rejected outright; a missing tenant id is legal here (reported by the
// tenant context resolver, which distinguishes "never logged in" from
// "broken account record").
func (p *Principal) Validate() error {
	if p == nil || p.UserID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "no authenticated principal")
	}
	return nil
}

type contextKey struct{}

// WithPrincipal attaches a resolved principal to the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal resolved for this request, or nil when
// the request is unauthenticated.
func FromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(contextKey{}).(*Principal); ok {
		return p
	}
	return nil
}
