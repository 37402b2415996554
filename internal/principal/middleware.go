package principal

import (
	"log/slog"
	"net/http"
	"strings"

	"fieldgate/pkg/requestcontext"
)

// Resolve returns middleware that deserializes the session bearer token into
// a Principal and attaches it to the request context.
//
// Resolution is non-enforcing: a request without a valid session simply
// continues unauthenticated, and the tenant context resolver fails closed on
// every non-exempt path. Enforcement lives in one place so public endpoints
// (login, health) need no special casing here.
func Resolve(resolver Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := resolver.Resolve(token)
			if err != nil {
				// A present-but-invalid token is treated as no session at
				// all; downstream enforcement rejects the request if the
				// path requires one.
				logger.WarnContext(ctx, "session token rejected",
					"error", err,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
		})
	}
}
