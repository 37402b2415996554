package tenantctx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"fieldgate/internal/principal"
	"fieldgate/pkg/requestcontext"
)

func newResolver() *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver([]string{"/auth/login", "/healthz"}, logger)
}

func serve(t *testing.T, r *Resolver, req *http.Request) (*httptest.ResponseRecorder, string, bool) {
	t.Helper()
	var seenTenant string
	reached := false
	handler := r.Middleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		reached = true
		seenTenant = requestcontext.TenantID(req.Context())
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, seenTenant, reached
}

func TestRejectsRequestWithoutPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	w, _, reached := serve(t, newResolver(), req)

	require.False(t, reached)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "unauthorized")
}

func TestRejectsPrincipalWithoutTenantDistinctly(t *testing.T) {
	// "Broken account record" must be distinguishable from "never logged in".
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	ctx := principal.WithPrincipal(req.Context(), &principal.Principal{UserID: "u-1"})
	w, _, reached := serve(t, newResolver(), req.WithContext(ctx))

	require.False(t, reached)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "tenant_context_missing")
}

func TestTenantComesOnlyFromPrincipal(t *testing.T) {
	// The query string and body carry a different tenant id; the resolved
	// context must still match the principal exactly.
	body := strings.NewReader(`{"tenantId":"tenant-evil"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs?tenant_id=tenant-evil", body)
	req.Header.Set("X-Tenant-Id", "tenant-evil")
	ctx := principal.WithPrincipal(req.Context(), &principal.Principal{UserID: "u-1", TenantID: "tenant-1"})

	w, seenTenant, reached := serve(t, newResolver(), req.WithContext(ctx))
	require.True(t, reached)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "tenant-1", seenTenant)
}

func TestWhitespaceTenantIsMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	ctx := principal.WithPrincipal(req.Context(), &principal.Principal{UserID: "u-1", TenantID: "   "})
	w, _, reached := serve(t, newResolver(), req.WithContext(ctx))

	require.False(t, reached)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestExemptPathSkipsEnforcement(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	w, seenTenant, reached := serve(t, newResolver(), req)

	require.True(t, reached)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, seenTenant)
}

func TestExemptMatchesByPrefix(t *testing.T) {
	r := newResolver()
	require.True(t, r.Exempt("/healthz"))
	require.True(t, r.Exempt("/auth/login/sso"))
	require.False(t, r.Exempt("/api/jobs"))
}
