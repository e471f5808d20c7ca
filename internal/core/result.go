// Package core implements the shared service execution kernel: the result
// envelope and error taxonomy, the permission evaluator, the validated
// execution pipeline, and the generic entity service the entity packages
// compose their CRUD surface from.
package core

import "fmt"

// ErrorCode classifies a ServiceError for callers.
type ErrorCode string

const (
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	CodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// ServiceError is the typed failure every verb reports through the envelope.
// Code is the closed taxonomy; Details carries diagnostic payloads (field
// errors, original error text) that never replace the primary message.
type ServiceError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

// Error implements the error interface so hooks and models can return a
// *ServiceError through ordinary error plumbing.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a ServiceError without details.
func NewError(code ErrorCode, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// NewErrorWithDetails builds a ServiceError carrying a details payload.
func NewErrorWithDetails(code ErrorCode, message string, details any) *ServiceError {
	return &ServiceError{Code: code, Message: message, Details: details}
}

// NotFound reports that the named entity could not be resolved.
func NotFound(entity string) *ServiceError {
	return NewError(CodeNotFound, entity+" not found")
}

// Forbidden reports a denied action without leaking entity state.
func Forbidden(message string) *ServiceError {
	return NewError(CodeForbidden, message)
}

// AsServiceError returns err as *ServiceError when it already is one, or
// wraps it as INTERNAL_ERROR preserving the original text under Details.
func AsServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*ServiceError); ok {
		return se
	}
	return NewErrorWithDetails(CodeInternal, "internal error", err.Error())
}

// Result is the uniform outcome envelope: exactly one of Data or Err is set.
// A Result is built once per verb invocation and never mutated afterwards.
type Result[T any] struct {
	Data *T            `json:"data,omitempty"`
	Err  *ServiceError `json:"error,omitempty"`
}

// Ok wraps a successful value.
func Ok[T any](data T) Result[T] {
	return Result[T]{Data: &data}
}

// Fail wraps a ServiceError.
func Fail[T any](err *ServiceError) Result[T] {
	return Result[T]{Err: err}
}

// IsOk reports whether the result carries data.
func (r Result[T]) IsOk() bool {
	return r.Err == nil && r.Data != nil
}
