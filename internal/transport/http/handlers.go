package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fieldgate/internal/statusflow"
	dErrors "fieldgate/pkg/domain-errors"
	"fieldgate/pkg/platform/httputil"
	"fieldgate/pkg/requestcontext"
)

// Handler is the thin HTTP layer over the status engine. CRUD persistence
// belongs to external collaborators; these handlers validate transitions and
// report the decision.
type Handler struct {
	logger  *slog.Logger
	session http.Handler
}

type Option func(*Handler)

// WithSessionCollaborator mounts the auth collaborator's handler under the
// public session routes. Without it those routes answer 501.
func WithSessionCollaborator(h http.Handler) Option {
	return func(handler *Handler) {
		handler.session = h
	}
}

func NewHandler(logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCollaborator delegates session routes to the auth collaborator.
func (h *Handler) handleCollaborator(w http.ResponseWriter, r *http.Request) {
	if h.session != nil {
		h.session.ServeHTTP(w, r)
		return
	}
	httputil.WriteJSON(w, http.StatusNotImplemented, map[string]string{
		"error":             "not_implemented",
		"error_description": "session routes are served by the auth service in this deployment",
	})
}

// workflowNextResponse answers "what can happen next from this status".
type workflowNextResponse struct {
	Kind     statusflow.Kind     `json:"kind"`
	Status   statusflow.Status   `json:"status"`
	Next     []statusflow.Status `json:"next"`
	Terminal bool                `json:"terminal"`
}

func (h *Handler) handleWorkflowNext(w http.ResponseWriter, r *http.Request) {
	kind := statusflow.Kind(chi.URLParam(r, "kind"))
	status := statusflow.Status(chi.URLParam(r, "status"))

	next, err := statusflow.Next(kind, status)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, err.Error()))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, workflowNextResponse{
		Kind:     kind,
		Status:   status,
		Next:     next,
		Terminal: len(next) == 0,
	})
}

// statusChangeRequest carries the endpoints of an attempted transition. The
// caller supplies "from" as the status it last read; the persistence layer
// must still guard the write with an optimistic lock.
type statusChangeRequest struct {
	From statusflow.Status `json:"from"`
	To   statusflow.Status `json:"to"`
}

func (h *Handler) handleJobStatusChange(w http.ResponseWriter, r *http.Request) {
	h.handleStatusChange(w, r, statusflow.KindJob, chi.URLParam(r, "jobID"))
}

func (h *Handler) handleInvoiceStatusChange(w http.ResponseWriter, r *http.Request) {
	h.handleStatusChange(w, r, statusflow.KindInvoice, chi.URLParam(r, "invoiceID"))
}

func (h *Handler) handleStatusChange(w http.ResponseWriter, r *http.Request, kind statusflow.Kind, entityID string) {
	var req statusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "request body must be JSON with from and to statuses"))
		return
	}
	if req.From == "" || req.To == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "from and to statuses are required"))
		return
	}

	if err := statusflow.AssertTransition(kind, req.From, req.To); err != nil {
		var terr *statusflow.TransitionError
		if errors.As(err, &terr) {
			h.logger.WarnContext(r.Context(), "status transition rejected",
				"kind", kind,
				"entity_id", entityID,
				"from", terr.From,
				"to", terr.To,
				"tenant_id", requestcontext.TenantID(r.Context()),
			)
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	// The transition is legal. Persisting the new status (with its
	// optimistic lock) is the storage collaborator's job.
	w.WriteHeader(http.StatusNoContent)
}
