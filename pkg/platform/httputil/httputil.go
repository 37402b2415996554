// Package httputil centralizes JSON response writing so every handler and
// middleware emits the same envelope shape.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "fieldgate/pkg/domain-errors"
)

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON error envelope: {"error": code, "error_description": msg}.
// error_description is omitted for internal errors so details never leak.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError translates a domain error into the JSON error envelope with the
// matching HTTP status. Non-domain errors are reported as internal errors.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		if de, ok := err.(*dErrors.Error); ok {
			body.ErrorDescription = de.Message
		}
	}
	WriteJSON(w, StatusOf(code), body)
}

// StatusOf maps a domain error code to its HTTP status.
func StatusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeTenantContextMissing:
		return http.StatusForbidden
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
