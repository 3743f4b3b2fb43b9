// Package errors provides error response utilities.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

const RequestIDKey = "request_id"

// Status values used by the webhook's JSON envelope. The messaging platform
// only ever sees these three strings.
const (
	StatusSuccess = "success"
	StatusOK      = "ok"
	StatusError   = "error"
)

// Response is the fixed JSON envelope returned by every webhook endpoint:
//
//	{"status": "success", "message": "..."}
//
// Message is omitted when empty (the bare success response carries none).
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// WriteResponse writes a Response envelope with the given HTTP status code.
// It is the success-side counterpart to WriteError.
func WriteResponse(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		DefaultLogger.Error("failed to encode response", zap.Error(err))
	}
}

// As is a wrapper around errors.As for better error type assertion
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
