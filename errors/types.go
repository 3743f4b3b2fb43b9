package errors

import (
	"net/http"
)

// NewError creates a new RelayError with the given parameters.
// It is a general-purpose constructor that allows full control over
// the error's fields. For most cases, you should use one of the
// specialized constructors below.
//
// Example:
//
//	err := NewError(InternalError, "unexpected failure", 500, "req_123", nil, cause)
func NewError(errType ErrorType, message string, code int, requestID string, details map[string]interface{}, err error) *RelayError {
	return &RelayError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Details:   details,
		err:       err,
	}
}

// NewBadRequestError creates a bad request error with appropriate defaults.
// Use this for malformed inbound payloads, such as:
//   - Non-JSON request bodies
//   - Undecodable JSON
//
// Example:
//
//	err := NewBadRequestError("req_123", "Request must be JSON")
func NewBadRequestError(requestID, message string) *RelayError {
	return &RelayError{
		Type:      BadRequestError,
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
	}
}

// NewUnavailableError creates a service unavailable error with appropriate
// defaults. Use this when the completion client failed to configure at
// startup and a chat message cannot be processed.
//
// Example:
//
//	err := NewUnavailableError("req_123", configErr)
func NewUnavailableError(requestID string, err error) *RelayError {
	return &RelayError{
		Type:      UnavailableError,
		Message:   "Model not configured",
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}

// NewUpstreamError creates an upstream failure error with appropriate
// defaults. Use this when the completion API call fails, such as:
//   - Network or transport errors
//   - Quota exhaustion
//   - Malformed or empty completions
//
// Example:
//
//	err := NewUpstreamError("req_123", "completion failed", apiErr)
func NewUpstreamError(requestID string, message string, err error) *RelayError {
	return &RelayError{
		Type:      UpstreamError,
		Message:   message,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}

// NewSendError creates a send failure error. Send failures are logged only
// and never written to the webhook caller, so this constructor exists for
// structured logging rather than response writing.
//
// Example:
//
//	errors.LogError(logger, errors.NewSendError("req_123", "628123", sendErr), "req_123")
func NewSendError(requestID, target string, err error) *RelayError {
	return &RelayError{
		Type:      SendError,
		Message:   "Failed to deliver reply",
		Code:      http.StatusBadGateway,
		RequestID: requestID,
		err:       err,
		Details: map[string]interface{}{
			"target": target,
		},
	}
}

// NewRateLimitError creates a rate limit error with appropriate defaults.
// Use this when a client has exceeded the webhook rate limit.
//
// Example:
//
//	err := NewRateLimitError("req_123", 30)
func NewRateLimitError(requestID string, retryAfter int) *RelayError {
	return &RelayError{
		Type:      RateLimitError,
		Message:   "Rate limit exceeded",
		Code:      http.StatusTooManyRequests,
		RequestID: requestID,
		Details: map[string]interface{}{
			"retry_after": retryAfter,
		},
	}
}

// NewInternalError creates an internal server error with appropriate
// defaults. Use this for unexpected errors that are not covered by other
// error types, such as panics.
//
// Example:
//
//	err := NewInternalError("req_123", cause)
func NewInternalError(requestID string, err error) *RelayError {
	return &RelayError{
		Type:      InternalError,
		Message:   "Internal server error",
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}
