package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType represents the category of an error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// Application errors
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"

	// Infrastructure errors
	ErrorTypeDatabase ErrorType = "DATABASE"
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// Graph error codes. Every rejected graph mutation carries exactly one of these.
const (
	CodeNodeNotFound     = "NODE_NOT_FOUND"
	CodeEdgeNotFound     = "EDGE_NOT_FOUND"
	CodePathNotFound     = "PATH_NOT_FOUND"
	CodeGraphNotFound    = "GRAPH_NOT_FOUND"
	CodeDuplicateID      = "DUPLICATE_ID"
	CodeInvalidEndpoints = "INVALID_ENDPOINTS"
	CodeCycleDetected    = "CYCLE_DETECTED"
	CodeTypeMismatch     = "TYPE_MISMATCH"
	CodeInvalidEntity    = "INVALID_ENTITY"
	CodeLimitExceeded    = "LIMIT_EXCEEDED"
	CodeClosed           = "GRAPH_CLOSED"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetail adds a single detail entry
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// WithStatus overrides the HTTP status
func (e *AppError) WithStatus(status int) *AppError {
	e.HTTPStatus = status
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

func newAppError(errType ErrorType, message string, status int) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return newAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return newAppError(ErrorTypeConflict, message, http.StatusConflict)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newAppError(ErrorTypeUnauthorized, message, http.StatusUnauthorized)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable, fmt.Sprintf("service '%s' is unavailable", service), http.StatusServiceUnavailable)
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, err error) *AppError {
	return newAppError(ErrorTypeDatabase, fmt.Sprintf("database operation '%s' failed", operation), http.StatusInternalServerError).
		WithCause(err)
}

// NewExternalError creates an external service error
func NewExternalError(service string, err error) *AppError {
	return newAppError(ErrorTypeExternal, fmt.Sprintf("external service '%s' error", service), http.StatusBadGateway).
		WithCause(err)
}

// Graph constructors

// NewNodeNotFound reports a node id absent from the graph
func NewNodeNotFound(id string) *AppError {
	return NewNotFoundError(fmt.Sprintf("node '%s'", id)).WithCode(CodeNodeNotFound).WithDetail("id", id)
}

// NewEdgeNotFound reports an edge id absent from the graph
func NewEdgeNotFound(id string) *AppError {
	return NewNotFoundError(fmt.Sprintf("edge '%s'", id)).WithCode(CodeEdgeNotFound).WithDetail("id", id)
}

// NewPathNotFound reports a path id absent from the graph
func NewPathNotFound(id string) *AppError {
	return NewNotFoundError(fmt.Sprintf("path '%s'", id)).WithCode(CodePathNotFound).WithDetail("id", id)
}

// NewGraphNotFound reports a snapshot that does not exist in the store
func NewGraphNotFound(id string) *AppError {
	return NewNotFoundError(fmt.Sprintf("graph '%s'", id)).WithCode(CodeGraphNotFound).WithDetail("id", id)
}

// NewDuplicateID reports an id that is already registered
func NewDuplicateID(kind, id string) *AppError {
	return NewConflictError(fmt.Sprintf("%s '%s' already exists", kind, id)).
		WithCode(CodeDuplicateID).
		WithDetail("kind", kind).
		WithDetail("id", id)
}

// NewInvalidEndpoints reports an edge or path whose endpoints do not line up
func NewInvalidEndpoints(message string) *AppError {
	return NewValidationError(message).WithCode(CodeInvalidEndpoints)
}

// NewCycleDetected reports an edge set that would close a cycle
func NewCycleDetected(message string) *AppError {
	return NewValidationError(message).WithCode(CodeCycleDetected).WithStatus(http.StatusUnprocessableEntity)
}

// NewTypeMismatch reports a node-type pair not allowed for a relationship
func NewTypeMismatch(from, to, relationship string) *AppError {
	return NewValidationError(fmt.Sprintf("%s -> %s is not allowed via %s", from, to, relationship)).
		WithCode(CodeTypeMismatch).
		WithStatus(http.StatusUnprocessableEntity).
		WithDetail("from", from).
		WithDetail("to", to).
		WithDetail("relationship", relationship)
}

// NewInvalidEntity reports an entity that fails its own validation
func NewInvalidEntity(kind, message string) *AppError {
	return NewValidationError(fmt.Sprintf("invalid %s: %s", kind, message)).
		WithCode(CodeInvalidEntity).
		WithDetail("kind", kind)
}

// NewLimitExceeded reports a configured capacity limit being hit
func NewLimitExceeded(resource string, limit int) *AppError {
	return NewConflictError(fmt.Sprintf("maximum %s reached (%d)", resource, limit)).
		WithCode(CodeLimitExceeded).
		WithDetail("limit", limit)
}

// NewClosed reports use of a graph after it was closed
func NewClosed() *AppError {
	return newAppError(ErrorTypeUnavailable, "graph orchestrator is closed", http.StatusServiceUnavailable).
		WithCode(CodeClosed)
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// HasCode checks if an error carries a specific code
func HasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsUnauthorized checks if an error is an unauthorized error
func IsUnauthorized(err error) bool {
	return IsType(err, ErrorTypeUnauthorized)
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return IsType(err, ErrorTypeInternal)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
