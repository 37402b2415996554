package audit

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"fieldgate/internal/principal"
	"fieldgate/pkg/requestcontext"
)

// statusWriter captures the response status code so the record can include
// it after the response is finalized.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.status = http.StatusOK
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Recorder returns middleware that injects the annotation slot, serves the
// request, and publishes a record once the response has finished. Only
// labeled requests and mutations are recorded; unlabeled reads pass without
// a record.
func Recorder(publisher Publisher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			annotation := &Annotation{}
			ctx := withAnnotation(r.Context(), annotation)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			if annotation.Action == "" && !mutating(r.Method) {
				return
			}

			record := Record{
				ID:         uuid.NewString(),
				Timestamp:  time.Now().UTC(),
				Action:     string(annotation.Action),
				TenantID:   requestcontext.TenantID(ctx),
				Method:     r.Method,
				Path:       r.URL.Path,
				StatusCode: sw.status,
				IP:         requestcontext.ClientIP(ctx),
				RequestID:  requestcontext.RequestID(ctx),
			}
			if p := principal.FromContext(ctx); p != nil {
				record.UserID = p.UserID
			}
			publisher.Publish(record)
		})
	}
}

// Annotate returns route middleware that labels requests with action before
// the handler runs. Handlers may refine the label via SetAction.
func Annotate(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			SetAction(r.Context(), action)
			next.ServeHTTP(w, r)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
