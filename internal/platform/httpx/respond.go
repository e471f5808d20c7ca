// Package httpx maps service result envelopes onto HTTP responses.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/lodgelist/lodgelist/internal/core"
)

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

// StatusFor maps a ServiceError code to an HTTP status.
func StatusFor(code core.ErrorCode) int {
	switch code {
	case core.CodeValidation:
		return http.StatusBadRequest
	case core.CodeUnauthorized:
		return http.StatusUnauthorized
	case core.CodeForbidden:
		return http.StatusForbidden
	case core.CodeNotFound:
		return http.StatusNotFound
	case core.CodeAlreadyExists:
		return http.StatusConflict
	case core.CodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes a result envelope. Successful results answer with the given
// status; failures answer with the status mapped from the error code. The
// body is always the envelope itself so API callers see a single shape.
func Respond[T any](w http.ResponseWriter, okStatus int, res core.Result[T]) {
	if res.Err != nil {
		JSON(w, StatusFor(res.Err.Code), res)
		return
	}
	JSON(w, okStatus, res)
}

// BadRequest answers a malformed request body before any verb runs.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, core.Fail[struct{}](core.NewError(core.CodeValidation, message)))
}

// Unauthorized answers a failed credential or token check.
func Unauthorized(w http.ResponseWriter, message string) {
	JSON(w, http.StatusUnauthorized, core.Fail[struct{}](core.NewError(core.CodeUnauthorized, message)))
}
