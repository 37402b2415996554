// Package tenantctx derives the tenant context for a request.
//
// The tenant id is taken solely from the authenticated principal. Request
// body, query string and headers are never consulted, which removes the
// tenant-spoofing vector by construction: no code path exists that could
// substitute a client-supplied tenant id.
package tenantctx

import (
	"log/slog"
	"net/http"
	"strings"

	"fieldgate/internal/principal"
	dErrors "fieldgate/pkg/domain-errors"
	"fieldgate/pkg/platform/httputil"
	"fieldgate/pkg/requestcontext"
)

// Resolver attaches the tenant id to requests on non-exempt paths.
type Resolver struct {
	exemptPrefixes []string
	logger         *slog.Logger
}

// NewResolver creates a Resolver. exemptPrefixes is the unified public-path
// table from config; requests under these prefixes pass through without a
// tenant context.
func NewResolver(exemptPrefixes []string, logger *slog.Logger) *Resolver {
	return &Resolver{exemptPrefixes: exemptPrefixes, logger: logger}
}

// Exempt reports whether the path bypasses tenant context enforcement.
func (t *Resolver) Exempt(path string) bool {
	for _, prefix := range t.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware resolves the tenant context or rejects the request. The two
// failure modes are surfaced distinctly: an absent principal is an ordinary
// authentication failure, while a principal without a tenant id indicates a
// broken account record and is reported as tenant_context_missing so
// operators can tell the two apart.
func (t *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.Exempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		p := principal.FromContext(ctx)
		if err := p.Validate(); err != nil {
			t.logger.WarnContext(ctx, "tenant context requires an authenticated principal",
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteError(w, err)
			return
		}

		tenantID := strings.TrimSpace(p.TenantID)
		if tenantID == "" {
			t.logger.ErrorContext(ctx, "principal has no tenant id",
				"user_id", p.UserID,
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeTenantContextMissing, "account is not associated with a tenant"))
			return
		}

		next.ServeHTTP(w, r.WithContext(requestcontext.WithTenantID(ctx, tenantID)))
	})
}
