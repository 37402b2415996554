package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBucketKey(t *testing.T) {
	key := BucketKey("tenant-1", "203.0.113.9", ScopeAPI)
	require.Equal(t, "ratelimit:api:tenant-1:203.0.113.9", key)
}

func TestBucketKeySanitizesSegments(t *testing.T) {
	// An identifier containing the delimiter must not be able to alias an
	// adjacent bucket.
	hostile := BucketKey("tenant:admin", "::1", ScopeAPI)
	legit := BucketKey("tenant", "admin:::1", ScopeAPI)
	require.NotEqual(t, hostile, legit)
	require.Equal(t, "ratelimit:api:tenant_admin:__1", hostile)
}

func TestScopeIsValid(t *testing.T) {
	require.True(t, ScopeAPI.IsValid())
	require.True(t, ScopeWrite.IsValid())
	require.True(t, ScopeSensitive.IsValid())
	require.False(t, Scope("bulk").IsValid())
}
