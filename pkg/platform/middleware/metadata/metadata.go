// Package metadata extracts per-request client metadata (address, user
// agent, correlation id) and stores it in the request context. Apply this
// middleware first in the chain; the rate limiter and audit annotator both
// read its output.
package metadata

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fieldgate/pkg/requestcontext"
)

// RequestIDHeader is echoed back so callers can correlate logs. Incoming
// values are trusted for correlation only, never for identity.
const RequestIDHeader = "X-Request-Id"

// ClientMetadata populates the request context with client IP, user agent
// and a request correlation id.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithClientIP(ctx, ClientIPFromRequest(r))
		ctx = requestcontext.WithUserAgent(ctx, r.Header.Get("User-Agent"))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the originating client address, preferring
// proxy headers over the socket address. X-Forwarded-For may carry a chain
// (client, proxy1, proxy2); the first entry is the client.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
