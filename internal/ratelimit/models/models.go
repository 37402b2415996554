// Package models defines the rate limiting domain types shared by the
// store, service and middleware layers.
package models

import "time"

// Scope separates rate limit buckets for different endpoint groups so a
// burst of reads cannot exhaust the budget for sensitive mutations.
type Scope string

const (
	// ScopeAPI covers general tenant API traffic.
	ScopeAPI Scope = "api"
	// ScopeWrite covers mutating endpoints.
	ScopeWrite Scope = "write"
	// ScopeSensitive covers endpoints touching billing or account data.
	ScopeSensitive Scope = "sensitive"
)

// IsValid checks if the scope is one of the supported enum values.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeAPI, ScopeWrite, ScopeSensitive:
		return true
	}
	return false
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// RateLimitExceededResponse is the JSON body returned with HTTP 429.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}
