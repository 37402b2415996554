package models

import (
	"fmt"
	"strings"
)

// SanitizeKeySegment escapes delimiter characters in bucket key segments to
// prevent key collision attacks where an identifier containing ':' could
// manipulate an adjacent bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// BucketKey composes the bucket key for a (tenant, client address, scope)
// triple. All requests sharing this triple count against one window.
func BucketKey(tenantID, clientIP string, scope Scope) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s",
		SanitizeKeySegment(string(scope)),
		SanitizeKeySegment(tenantID),
		SanitizeKeySegment(clientIP),
	)
}
