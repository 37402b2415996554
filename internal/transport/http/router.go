// Package httptransport wires the request-authorization chain in front of
// the business routes.
//
// Every inbound request passes through, in order: client metadata, principal
// resolution, tenant context enforcement, rate limiting, audit recording.
// Public prefixes (login, health, metrics) are exempt from tenant and rate
// enforcement via the unified exemption table in config. The recorder sits
// last so a request rejected upstream never produces an audit record, and so
// admitted records carry the resolved principal and tenant.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fieldgate/internal/audit"
	"fieldgate/internal/ratelimit/models"
)

// ChainMiddleware bundles the authorization chain for the router. Each field
// is a constructed middleware; the router decides only the order.
type ChainMiddleware struct {
	ClientMetadata func(http.Handler) http.Handler
	AuditRecorder  func(http.Handler) http.Handler
	Principal      func(http.Handler) http.Handler
	TenantContext  func(http.Handler) http.Handler
	RateLimit      func(models.Scope) func(http.Handler) http.Handler
}

// NewRouter assembles the middleware chain and the core routes.
func NewRouter(h *Handler, mw ChainMiddleware) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.ClientMetadata)
	r.Use(mw.Principal)
	r.Use(mw.TenantContext)
	r.Use(mw.RateLimit(models.ScopeAPI))
	r.Use(mw.AuditRecorder)

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Session routes are served by the auth collaborator in deployment; the
	// prefixes are routed here so the exemption table and the collaborator's
	// mount point stay in one reviewable place.
	r.Route("/auth", func(r chi.Router) {
		r.With(audit.Annotate(audit.ActionLogin)).Post("/login", h.handleCollaborator)
		r.With(audit.Annotate(audit.ActionLogout)).Post("/logout", h.handleCollaborator)
		r.With(audit.Annotate(audit.ActionInvitationAccepted)).Post("/invitations/accept", h.handleCollaborator)
		r.Get("/csrf", h.handleCollaborator)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/workflows/{kind}/{status}", h.handleWorkflowNext)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(models.ScopeWrite))
			r.With(audit.Annotate(audit.ActionJobStatusChanged)).
				Post("/jobs/{jobID}/status", h.handleJobStatusChange)
			r.With(audit.Annotate(audit.ActionInvoiceStatusChanged)).
				Post("/invoices/{invoiceID}/status", h.handleInvoiceStatusChange)
		})
	})

	return r
}
