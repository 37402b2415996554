package principal

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func serveResolve(t *testing.T, authorization string) *Principal {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := NewTokenResolver(testSigningKey)

	var seen *Principal
	handler := Resolve(resolver, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return seen
}

func TestResolveAttachesPrincipal(t *testing.T) {
	token := signToken(t, testSigningKey, jwt.MapClaims{
		"sub":       "u-1",
		"tenant_id": "tenant-1",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	p := serveResolve(t, "Bearer "+token)
	require.NotNil(t, p)
	require.Equal(t, "u-1", p.UserID)
	require.Equal(t, "tenant-1", p.TenantID)
}

func TestResolveContinuesWithoutToken(t *testing.T) {
	require.Nil(t, serveResolve(t, ""))
}

func TestResolveTreatsInvalidTokenAsNoSession(t *testing.T) {
	require.Nil(t, serveResolve(t, "Bearer garbage"))
}

func TestResolveIgnoresNonBearerSchemes(t *testing.T) {
	require.Nil(t, serveResolve(t, "Basic dXNlcjpwYXNz"))
}

func TestValidate(t *testing.T) {
	require.Error(t, (*Principal)(nil).Validate())
	require.Error(t, (&Principal{}).Validate())
	require.NoError(t, (&Principal{UserID: "u-1"}).Validate())
}
