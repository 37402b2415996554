// Package audit annotates requests with action labels and ships finished
// request records to the audit sink.
//
// The middleware here never persists anything on the request path and never
// blocks the response; records flow through a buffered publisher to a
// background worker that writes the configured store.
package audit

import (
	"context"
	"time"
)

// Action labels the business operation a request performed. Labels are part
// of the record schema consumed by the downstream logger; keep values stable.
type Action string

const (
	ActionJobStatusChanged     Action = "job_status_changed"
	ActionInvoiceStatusChanged Action = "invoice_status_changed"
	ActionLogin                Action = "login"
	ActionLogout               Action = "logout"
	ActionInvitationAccepted   Action = "invitation_accepted"
)

// Record is one finished request as reported to the audit sink. Field names
// and presence are a contract with the downstream logger; do not rename.
type Record struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	TenantID   string    `json:"tenantId,omitempty"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"statusCode"`
	IP         string    `json:"ip"`
	RequestID  string    `json:"requestId,omitempty"`
}

// Annotation is the mutable per-request slot the recorder middleware injects
// so route middleware and handlers deeper in the chain can label the request.
// One goroutine serves a request, so no locking is needed.
type Annotation struct {
	Action Action
}

type annotationKey struct{}

// withAnnotation attaches the annotation slot; only the recorder middleware
// calls this.
func withAnnotation(ctx context.Context, a *Annotation) context.Context {
	return context.WithValue(ctx, annotationKey{}, a)
}

// annotationFrom returns the request's annotation slot, or nil when the
// recorder middleware did not run.
func annotationFrom(ctx context.Context) *Annotation {
	if a, ok := ctx.Value(annotationKey{}).(*Annotation); ok {
		return a
	}
	return nil
}

// SetAction labels the current request. A no-op outside the recorder
// middleware so services stay callable from non-HTTP contexts.
func SetAction(ctx context.Context, action Action) {
	if a := annotationFrom(ctx); a != nil {
		a.Action = action
	}
}
