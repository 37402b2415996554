package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fieldgate/internal/ratelimit/models"
)

// stubStore records the key it was asked about and returns a canned result.
type stubStore struct {
	lastKey    string
	lastLimit  int
	lastWindow time.Duration
	result     *models.Result
	err        error
}

func (s *stubStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	s.lastKey = key
	s.lastLimit = limit
	s.lastWindow = window
	return s.result, s.err
}

func (s *stubStore) Reset(ctx context.Context, key string) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckComposesBucketKey(t *testing.T) {
	store := &stubStore{result: &models.Result{Allowed: true, Limit: 5, Remaining: 4}}
	svc := New(store, 5, time.Minute, discardLogger())

	result, err := svc.Check(context.Background(), "tenant-1", "203.0.113.9", models.ScopeWrite)
	require.NoError(t, err)
	require.True(t, result.Allowed)
	require.Equal(t, "ratelimit:write:tenant-1:203.0.113.9", store.lastKey)
	require.Equal(t, 5, store.lastLimit)
	require.Equal(t, time.Minute, store.lastWindow)
}

func TestCheckPropagatesStoreErrors(t *testing.T) {
	store := &stubStore{err: errors.New("backend down")}
	svc := New(store, 5, time.Minute, discardLogger())

	_, err := svc.Check(context.Background(), "tenant-1", "203.0.113.9", models.ScopeAPI)
	require.Error(t, err)
}

type countingRecorder struct {
	allowed, rejected int
}

func (c *countingRecorder) RecordDecision(scope string, allowed bool) {
	if allowed {
		c.allowed++
	} else {
		c.rejected++
	}
}

func TestCheckRecordsMetrics(t *testing.T) {
	recorder := &countingRecorder{}
	store := &stubStore{result: &models.Result{Allowed: false, RetryAfter: 30}}
	svc := New(store, 5, time.Minute, discardLogger(), WithMetrics(recorder))

	_, err := svc.Check(context.Background(), "tenant-1", "203.0.113.9", models.ScopeAPI)
	require.NoError(t, err)
	require.Equal(t, 0, recorder.allowed)
	require.Equal(t, 1, recorder.rejected)
}
