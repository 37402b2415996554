// Package statusflow governs the legal transitions of business-entity
// status fields.
//
// Each entity kind has a directed transition graph over its named statuses.
// Encoding legality as declarative adjacency data, rather than conditionals
// scattered through route handlers, keeps the full set of legal workflows
// auditable in one place and makes "what can happen next from state X"
// answerable without tracing call sites.
//
// The engine is a pure decision procedure: it performs no I/O and holds no
// hidden state. Callers that mutate a status field must consult
// AssertTransition before persisting the change. Check-then-persist is not
// atomic end to end; the persistence layer needs an optimistic lock
// (version column or conditional update) so two concurrent writers cannot
// both validate against a stale "from" state. A caller that loses that race
// must re-read the current status and re-validate before retrying, at most
// once, rather than blindly re-submitting.
package statusflow

import "fmt"

// Kind identifies a status-bearing entity type.
type Kind string

const (
	KindJob     Kind = "job"
	KindInvoice Kind = "invoice"
)

// IsValid checks if the kind has a registered transition graph.
func (k Kind) IsValid() bool {
	_, ok := graphs[k]
	return ok
}

// Status is a named workflow state.
type Status string

// Job statuses.
const (
	JobDraft      Status = "draft"
	JobScheduled  Status = "scheduled"
	JobDispatched Status = "dispatched"
	JobEnRoute    Status = "en_route"
	JobOnSite     Status = "on_site"
	JobInProgress Status = "in_progress"
	JobNeedsParts Status = "needs_parts"
	JobOnHold     Status = "on_hold"
	JobCompleted  Status = "completed"
	JobInvoiced   Status = "invoiced"
	JobClosed     Status = "closed"
	JobArchived   Status = "archived"
	JobCancelled  Status = "cancelled"
)

// Invoice statuses.
const (
	InvoiceDraft     Status = "draft"
	InvoicePending   Status = "pending"
	InvoiceSent      Status = "sent"
	InvoicePaid      Status = "paid"
	InvoiceVoid      Status = "void"
	InvoiceCancelled Status = "cancelled"
)

// Graph maps each status to its allowed next statuses. A status mapped to an
// empty set is terminal.
type Graph map[Status][]Status

// graphs is the static configuration: built once here, immutable afterwards.
// Access is read-only and needs no synchronization.
var graphs = map[Kind]Graph{
	KindJob: {
		JobDraft:      {JobScheduled, JobDispatched, JobCancelled},
		JobScheduled:  {JobDispatched, JobEnRoute, JobInProgress, JobOnHold, JobCancelled},
		JobDispatched: {JobEnRoute, JobOnSite, JobInProgress, JobOnHold, JobCancelled},
		JobEnRoute:    {JobOnSite, JobInProgress, JobOnHold, JobCancelled},
		JobOnSite:     {JobInProgress, JobNeedsParts, JobCompleted, JobOnHold, JobCancelled},
		JobInProgress: {JobNeedsParts, JobCompleted, JobOnHold, JobCancelled},
		JobNeedsParts: {JobInProgress, JobOnSite, JobOnHold, JobCancelled},
		JobOnHold:     {JobScheduled, JobDispatched, JobInProgress, JobCancelled},
		JobCompleted:  {JobInvoiced, JobClosed, JobArchived},
		JobInvoiced:   {JobClosed, JobArchived},
		JobClosed:     {JobArchived},
		JobArchived:   {},
		JobCancelled:  {},
	},
	KindInvoice: {
		InvoiceDraft:     {InvoicePending, InvoiceSent, InvoiceCancelled},
		InvoicePending:   {InvoiceSent, InvoiceCancelled},
		InvoiceSent:      {InvoicePaid, InvoicePending, InvoiceCancelled},
		InvoicePaid:      {InvoiceVoid},
		InvoiceVoid:      {},
		InvoiceCancelled: {},
	},
}

// TransitionError reports an illegal status transition. It names both
// endpoints so the caller can decide whether to adjust its own state or
// surface a user-facing message.
type TransitionError struct {
	Kind Kind
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition from %q to %q", e.Kind, e.From, e.To)
}

// AssertTransition decides whether kind may move from one status to another.
//
// A transition to the same status is always admitted, so idempotent
// re-application of a retried write is never an error. Otherwise the target
// must appear in the allowed next set for the current status; if not, a
// *TransitionError is returned and the caller must not persist the change.
func AssertTransition(kind Kind, from, to Status) error {
	graph, ok := graphs[kind]
	if !ok {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	if from == to {
		return nil
	}

	allowed, ok := graph[from]
	if !ok {
		return &TransitionError{Kind: kind, From: from, To: to}
	}
	for _, next := range allowed {
		if next == to {
			return nil
		}
	}
	return &TransitionError{Kind: kind, From: from, To: to}
}

// Next returns the allowed next statuses from the given status. The slice is
// a copy; callers may not mutate the underlying graph.
func Next(kind Kind, from Status) ([]Status, error) {
	graph, ok := graphs[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	allowed, ok := graph[from]
	if !ok {
		return nil, fmt.Errorf("unknown %s status %q", kind, from)
	}
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out, nil
}

// IsTerminal reports whether the status has no outgoing transitions.
func IsTerminal(kind Kind, s Status) bool {
	allowed, err := Next(kind, s)
	return err == nil && len(allowed) == 0
}

// GraphFor returns a deep copy of a kind's transition graph, primarily for
// serialization and exhaustive-enumeration tests.
func GraphFor(kind Kind) (Graph, error) {
	graph, ok := graphs[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	out := make(Graph, len(graph))
	for from, allowed := range graph {
		next := make([]Status, len(allowed))
		copy(next, allowed)
		out[from] = next
	}
	return out, nil
}

// Statuses returns every status reachable in a kind's graph, in no
// particular order.
func Statuses(kind Kind) ([]Status, error) {
	graph, ok := graphs[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	out := make([]Status, 0, len(graph))
	for s := range graph {
		out = append(out, s)
	}
	return out, nil
}
