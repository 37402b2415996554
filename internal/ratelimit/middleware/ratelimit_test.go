package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fieldgate/internal/ratelimit/middleware/mocks"
	"fieldgate/internal/ratelimit/models"
	"fieldgate/pkg/requestcontext"
)

type MiddlewareSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	limiter *mocks.MockRateLimiter
	mw      *Middleware
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.limiter = mocks.NewMockRateLimiter(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.mw = New(s.limiter, logger, WithExemptPrefixes([]string{"/healthz"}))
}

func (s *MiddlewareSuite) TearDownTest() {
	s.ctrl.Finish()
}

// serve runs a request with tenant and IP context through the middleware and
// reports whether the inner handler ran.
func (s *MiddlewareSuite) serve(path, tenantID string) (*httptest.ResponseRecorder, bool) {
	reachedHandler := false
	handler := s.mw.RateLimit(models.ScopeAPI)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reachedHandler = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	ctx := req.Context()
	if tenantID != "" {
		ctx = requestcontext.WithTenantID(ctx, tenantID)
	}
	ctx = requestcontext.WithClientIP(ctx, "203.0.113.9")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req.WithContext(ctx))
	return w, reachedHandler
}

func (s *MiddlewareSuite) TestAdmittedRequestGetsHeaders() {
	resetAt := time.Now().Add(time.Minute)
	s.limiter.EXPECT().
		Check(gomock.Any(), "tenant-1", "203.0.113.9", models.ScopeAPI).
		Return(&models.Result{Allowed: true, Limit: 100, Remaining: 99, ResetAt: resetAt}, nil)

	w, reached := s.serve("/api/jobs", "tenant-1")
	s.True(reached)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("100", w.Header().Get("X-RateLimit-Limit"))
	s.Equal("99", w.Header().Get("X-RateLimit-Remaining"))
	s.NotEmpty(w.Header().Get("X-RateLimit-Reset"))
}

func (s *MiddlewareSuite) TestRejectedRequestGets429() {
	s.limiter.EXPECT().
		Check(gomock.Any(), "tenant-1", "203.0.113.9", models.ScopeAPI).
		Return(&models.Result{Allowed: false, Limit: 100, Remaining: 0, ResetAt: time.Now().Add(30 * time.Second), RetryAfter: 30}, nil)

	w, reached := s.serve("/api/jobs", "tenant-1")
	s.False(reached)
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Equal("30", w.Header().Get("Retry-After"))
	s.Equal("0", w.Header().Get("X-RateLimit-Remaining"))
	s.Contains(w.Body.String(), "rate_limit_exceeded")
}

func (s *MiddlewareSuite) TestStoreFailureFailsOpen() {
	s.limiter.EXPECT().
		Check(gomock.Any(), "tenant-1", "203.0.113.9", models.ScopeAPI).
		Return(nil, errors.New("backend down"))

	w, reached := s.serve("/api/jobs", "tenant-1")
	s.True(reached, "limiter backend failure must not reject traffic")
	s.Equal(http.StatusOK, w.Code)
}

func (s *MiddlewareSuite) TestExemptPathBypassesLimiter() {
	// No EXPECT: a Check call on an exempt path would fail the test.
	w, reached := s.serve("/healthz", "tenant-1")
	s.True(reached)
	s.Equal(http.StatusOK, w.Code)
	s.Empty(w.Header().Get("X-RateLimit-Limit"))
}

func (s *MiddlewareSuite) TestMissingTenantPassesThrough() {
	w, reached := s.serve("/api/jobs", "")
	s.True(reached)
	s.Equal(http.StatusOK, w.Code)
}
