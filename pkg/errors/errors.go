// Package errors defines custom error types and error handling utilities for the student-risk service.
// This package provides structured error types that map to API error codes and HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code is an API error code
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeInvalidRequest     Code = "invalid_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeRateLimitExceeded  Code = "rate_limit_exceeded"
	CodeInternal           Code = "internal_error"
	CodeServiceUnavailable Code = "service_unavailable"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the API error code
	Code() Code

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        Code
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

func (e *baseError) Code() Code                       { return e.code }
func (e *baseError) HTTPStatus() int                  { return e.httpStatus }
func (e *baseError) Description() string              { return e.description }
func (e *baseError) Unwrap() error                    { return e.cause }
func (e *baseError) Metadata() map[string]interface{} { return e.metadata }

func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// NewError creates a new AppError with the specified parameters
func NewError(code Code, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Validation Error
// ================================================================================

// FieldViolation describes one invalid field
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when configuration or metrics are invalid.
// It is never auto-corrected and always maps to HTTP 400.
type ValidationError struct {
	Violations []FieldViolation
	metadata   map[string]interface{}
	cause      error
}

// NewValidationError builds a ValidationError from field violations
func NewValidationError(violations ...FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Invalid is shorthand for a single-field ValidationError
func Invalid(field, message string) *ValidationError {
	return NewValidationError(FieldViolation{Field: field, Message: message})
}

func (e *ValidationError) Error() string {
	switch len(e.Violations) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s %s", e.Violations[0].Field, e.Violations[0].Message)
	default:
		return fmt.Sprintf("validation failed: %s %s (and %d more)",
			e.Violations[0].Field, e.Violations[0].Message, len(e.Violations)-1)
	}
}

func (e *ValidationError) Code() Code          { return CodeValidation }
func (e *ValidationError) HTTPStatus() int     { return http.StatusBadRequest }
func (e *ValidationError) Description() string { return "One or more fields failed validation" }
func (e *ValidationError) Unwrap() error       { return e.cause }

func (e *ValidationError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

func (e *ValidationError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns the violations keyed by field plus any extra metadata
func (e *ValidationError) Metadata() map[string]interface{} {
	md := make(map[string]interface{}, len(e.Violations)+len(e.metadata))
	for k, v := range e.metadata {
		md[k] = v
	}
	for _, v := range e.Violations {
		md[v.Field] = v.Message
	}
	return md
}

// Fields returns the names of all violated fields, in order
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Field)
	}
	return out
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) AppError {
	return NewError(CodeInvalidRequest, http.StatusBadRequest,
		"The request is malformed or missing a required parameter.", message)
}

// ErrUnauthorized creates an unauthorized error
func ErrUnauthorized(message string) AppError {
	return NewError(CodeUnauthorized, http.StatusUnauthorized,
		"Authentication is required to access this resource.", message)
}

// ErrForbidden creates a forbidden error
func ErrForbidden(message string) AppError {
	return NewError(CodeForbidden, http.StatusForbidden,
		"The authenticated principal may not perform this action.", message)
}

// ErrNotFound creates a not_found error for a resource
func ErrNotFound(resource, id string) AppError {
	return NewError(CodeNotFound, http.StatusNotFound,
		fmt.Sprintf("%s not found", resource),
		fmt.Sprintf("%s not found: %s", resource, id),
	).WithMetadata("resource", resource).WithMetadata("id", id)
}

// ErrConflict creates a conflict error
func ErrConflict(message string) AppError {
	return NewError(CodeConflict, http.StatusConflict,
		"The request conflicts with the current state of the resource.", message)
}

// ErrRateLimitExceeded creates a rate limit exceeded error
func ErrRateLimitExceeded(scope string, limit int) AppError {
	return NewError(CodeRateLimitExceeded, http.StatusTooManyRequests,
		"Rate limit exceeded. Please try again later.",
		fmt.Sprintf("Rate limit exceeded for scope '%s': %d requests", scope, limit),
	).WithMetadata("scope", scope).WithMetadata("limit", limit)
}

// ErrInternal creates an internal_error
func ErrInternal(message string) AppError {
	return NewError(CodeInternal, http.StatusInternalServerError,
		"The server encountered an unexpected condition.", message)
}

// ErrServiceUnavailable creates a service_unavailable error
func ErrServiceUnavailable(message string) AppError {
	return NewError(CodeServiceUnavailable, http.StatusServiceUnavailable,
		"A dependency is temporarily unavailable.", message)
}

// ErrDatabaseOperation is the sentinel wrapped by repository failures
var ErrDatabaseOperation = stderrors.New("database operation failed")

// ErrCacheOperation is the sentinel wrapped by cache failures
var ErrCacheOperation = stderrors.New("cache operation failed")

// ================================================================================
// Error Inspection Utilities
// ================================================================================

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// AsValidationError finds the first ValidationError in err's chain
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if stderrors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	_, ok := AsValidationError(err)
	return ok
}

// IsNotFoundError checks if an error is a not found error.
func IsNotFoundError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == CodeNotFound
	}
	return false
}

// ShouldLogError determines if an error should be logged at error level
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		status := appErr.HTTPStatus()
		return status >= 500 || status == http.StatusTooManyRequests
	}
	return true
}

// Is and As re-export the standard library helpers so callers need one import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error bodies
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ToErrorResponse converts any error to an ErrorResponse
func ToErrorResponse(err error) *ErrorResponse {
	if appErr, ok := AsAppError(err); ok {
		return &ErrorResponse{
			Code:    string(appErr.Code()),
			Message: appErr.Error(),
			Details: appErr.Metadata(),
		}
	}
	return &ErrorResponse{
		Code:    string(CodeInternal),
		Message: "An unexpected error occurred",
	}
}

// StatusOf returns the HTTP status for err, defaulting to 500
func StatusOf(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
