package errors

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON envelope written for every failed request
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Code      string                 `json:"code,omitempty"`
	Entity    string                 `json:"entity,omitempty"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Retryable bool                   `json:"retryable,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// codeStatus applies when an AppError reaches the handler without a status,
// for example after being rebuilt from a stored or wrapped error
var codeStatus = map[string]int{
	CodeNodeNotFound:     http.StatusNotFound,
	CodeEdgeNotFound:     http.StatusNotFound,
	CodePathNotFound:     http.StatusNotFound,
	CodeGraphNotFound:    http.StatusNotFound,
	CodeDuplicateID:      http.StatusConflict,
	CodeLimitExceeded:    http.StatusConflict,
	CodeInvalidEndpoints: http.StatusBadRequest,
	CodeInvalidEntity:    http.StatusBadRequest,
	CodeCycleDetected:    http.StatusUnprocessableEntity,
	CodeTypeMismatch:     http.StatusUnprocessableEntity,
	CodeClosed:           http.StatusServiceUnavailable,
}

var typeStatus = map[ErrorType]int{
	ErrorTypeValidation:   http.StatusBadRequest,
	ErrorTypeNotFound:     http.StatusNotFound,
	ErrorTypeConflict:     http.StatusConflict,
	ErrorTypeUnauthorized: http.StatusUnauthorized,
	ErrorTypeUnavailable:  http.StatusServiceUnavailable,
	ErrorTypeExternal:     http.StatusBadGateway,
}

// codeEntity names the graph element a code refers to
var codeEntity = map[string]string{
	CodeNodeNotFound:     "node",
	CodeEdgeNotFound:     "edge",
	CodePathNotFound:     "path",
	CodeGraphNotFound:    "graph",
	CodeInvalidEndpoints: "edge",
	CodeCycleDetected:    "path",
	CodeTypeMismatch:     "path",
	CodeLimitExceeded:    "graph",
	CodeClosed:           "graph",
}

// ErrorHandler turns errors into JSON responses
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes err as an ErrorResponse. Graph errors keep their code and
// the element they refer to; anything else is reported as internal.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	requestID := requestIDFrom(r)

	appErr := GetAppError(err)
	if appErr == nil {
		h.logger.Error("Unhandled error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
		)
		resp := ErrorResponse{
			Error:     true,
			Type:      string(ErrorTypeInternal),
			Message:   "An internal error occurred",
			RequestID: requestID,
		}
		if h.debug {
			resp.Message = err.Error()
		}
		h.sendJSON(w, http.StatusInternalServerError, resp)
		return
	}

	status := StatusFor(appErr)
	resp := ErrorResponse{
		Error:     true,
		Type:      string(appErr.Type),
		Code:      appErr.Code,
		Entity:    entityFor(appErr),
		Message:   appErr.Message,
		Details:   appErr.Details,
		Retryable: isRetryable(appErr),
		RequestID: requestID,
	}
	if h.debug && appErr.StackTrace != "" {
		details := make(map[string]interface{}, len(resp.Details)+1)
		for k, v := range resp.Details {
			details[k] = v
		}
		details["stack_trace"] = appErr.StackTrace
		resp.Details = details
	}

	h.logError(r, appErr, status, requestID)
	if resp.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	h.sendJSON(w, status, resp)
}

// HandleStatus sends an error response with a specific status code
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.logger.Warn("HTTP error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("message", message),
	)
	h.sendJSON(w, status, ErrorResponse{
		Error:     true,
		Type:      statusToErrorType(status),
		Message:   message,
		RequestID: requestIDFrom(r),
	})
}

// StatusFor resolves the HTTP status of an AppError: its own status first,
// then the graph code, then the error type
func StatusFor(err *AppError) int {
	if err.HTTPStatus != 0 {
		return err.HTTPStatus
	}
	if status, ok := codeStatus[err.Code]; ok {
		return status
	}
	if status, ok := typeStatus[err.Type]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func entityFor(err *AppError) string {
	if entity, ok := codeEntity[err.Code]; ok {
		return entity
	}
	// DUPLICATE_ID and INVALID_ENTITY carry the kind they were raised for
	if kind, ok := err.Details["kind"].(string); ok {
		return kind
	}
	return ""
}

// isRetryable marks store and upstream failures. A closed graph stays closed.
func isRetryable(err *AppError) bool {
	switch err.Type {
	case ErrorTypeDatabase, ErrorTypeExternal:
		return true
	case ErrorTypeUnavailable:
		return err.Code != CodeClosed
	}
	return false
}

func (h *ErrorHandler) logError(r *http.Request, err *AppError, status int, requestID string) {
	fields := []zap.Field{
		zap.String("error_type", string(err.Type)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", requestID),
	}
	if err.Code != "" {
		fields = append(fields, zap.String("error_code", err.Code))
	}
	if id, ok := err.Details["id"]; ok {
		fields = append(fields, zap.Any("entity_id", id))
	}
	if err.Cause != nil {
		fields = append(fields, zap.Error(err.Cause))
	}

	switch {
	case status >= 500:
		h.logger.Error(err.Message, fields...)
	case status == http.StatusNotFound:
		h.logger.Debug(err.Message, fields...)
	default:
		h.logger.Warn(err.Message, fields...)
	}
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// requestIDFrom prefers the id assigned by the RequestID middleware
func requestIDFrom(r *http.Request) string {
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

func statusToErrorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(ErrorTypeValidation)
	case http.StatusUnauthorized:
		return string(ErrorTypeUnauthorized)
	case http.StatusNotFound:
		return string(ErrorTypeNotFound)
	case http.StatusConflict:
		return string(ErrorTypeConflict)
	case http.StatusServiceUnavailable:
		return string(ErrorTypeUnavailable)
	case http.StatusBadGateway:
		return string(ErrorTypeExternal)
	default:
		return string(ErrorTypeInternal)
	}
}
