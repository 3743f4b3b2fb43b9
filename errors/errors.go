// Package errors provides the error handling system for the Theo webhook
// relay. It includes structured error types, the fixed status/message JSON
// envelope the webhook contract requires, request ID tracking, and
// integrated logging with Uber's zap logger.
//
// The package is designed to be used throughout the relay codebase to
// provide consistent error handling and reporting:
//
//   - Structured errors carrying a type, HTTP status code, and cause
//   - The webhook's status/message JSON envelope for every error response
//   - Request ID propagation for error correlation
//   - Integrated logging with zap
//
// Basic usage:
//
//	// Simple error response
//	errors.Error(w, "Internal server error", http.StatusInternalServerError)
//
//	// Type-specific error
//	errors.ErrorWithType(w, "Request must be JSON", errors.BadRequestError, http.StatusBadRequest)
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLogger is the default zap logger instance used throughout the
// package. It is initialized to a production configuration but can be
// overridden using SetLogger.
var DefaultLogger *zap.Logger

func init() {
	var err error
	DefaultLogger, err = zap.NewProduction()
	if err != nil {
		DefaultLogger = zap.NewNop()
	}
}

// SetLogger allows setting a custom zap logger instance.
// If nil is provided, the function will do nothing to prevent
// accidentally disabling logging.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// ErrorType represents different categories of errors that can occur while
// relaying a message. Each type corresponds to one failure kind of the relay
// contract and carries an appropriate HTTP status code.
type ErrorType string

const (
	// BadRequestError represents a malformed inbound payload (non-JSON body)
	BadRequestError ErrorType = "bad_request"

	// UnavailableError represents a completion client that failed to
	// configure at startup and cannot serve requests
	UnavailableError ErrorType = "service_unavailable"

	// UpstreamError represents a failed completion API call
	UpstreamError ErrorType = "upstream_failure"

	// SendError represents a failed outbound delivery. It is logged only
	// and never changes the HTTP status of the webhook response
	SendError ErrorType = "send_failure"

	// ConfigError represents configuration-related errors
	ConfigError ErrorType = "config_error"

	// RateLimitError represents rate limiting errors
	RateLimitError ErrorType = "rate_limit_error"

	// InternalError represents unexpected internal server errors
	InternalError ErrorType = "internal_error"
)

// RelayError is our custom error type that implements the error interface
// and provides additional context about the error. On the wire it is always
// rendered as the webhook's status/message envelope; the extra fields exist
// for logging and error matching.
type RelayError struct {
	// Type categorizes the error for logging and metrics
	Type ErrorType `json:"-"`

	// Message is the human-readable description that goes on the wire
	Message string `json:"message"`

	// Code is the HTTP status code (not exposed in JSON)
	Code int `json:"-"`

	// RequestID links the error to a specific request
	RequestID string `json:"-"`

	// Details contains additional error context for logs
	Details map[string]interface{} `json:"-"`

	// err is the underlying error (not exposed in JSON)
	err error
}

// Error implements the error interface. It returns a string that
// combines the error type, message, and underlying error (if any).
func (e *RelayError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, implementing the unwrap
// interface for error chains.
func (e *RelayError) Unwrap() error {
	return e.err
}

// Is implements error matching for errors.Is, allowing type-based
// error matching while ignoring other fields.
func (e *RelayError) Is(target error) bool {
	t, ok := target.(*RelayError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WriteError formats and writes a RelayError to an http.ResponseWriter.
// It sets the content type and status code, then writes the webhook's
// status/message error envelope as JSON.
func WriteError(w http.ResponseWriter, err *RelayError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	if encErr := json.NewEncoder(w).Encode(Response{
		Status:  StatusError,
		Message: err.Message,
	}); encErr != nil {
		DefaultLogger.Error("failed to encode error response",
			zap.Error(encErr),
			zap.String("request_id", err.RequestID),
		)
	}
}

// Error is a drop-in replacement for http.Error that creates and writes
// a RelayError with the InternalError type. It automatically includes
// the request ID from the response headers if available.
func Error(w http.ResponseWriter, message string, code int) {
	requestID := w.Header().Get("X-Request-ID")
	err := &RelayError{
		Type:      InternalError,
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
	WriteError(w, err)
}

// ErrorWithType is like Error but allows specifying the error type.
// This is useful when you want to indicate specific error categories
// in logs and metrics while maintaining the simple interface of http.Error.
func ErrorWithType(w http.ResponseWriter, message string, errType ErrorType, code int) {
	requestID := w.Header().Get("X-Request-ID")
	err := &RelayError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
	WriteError(w, err)
}
