package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteResponse(t *testing.T) {
	tests := []struct {
		name         string
		code         int
		resp         Response
		expectedBody string
	}{
		{
			name:         "success with message",
			code:         http.StatusOK,
			resp:         Response{Status: StatusSuccess, Message: "Webhook is active and ready for POST requests."},
			expectedBody: `{"status":"success","message":"Webhook is active and ready for POST requests."}`,
		},
		{
			name:         "ok acknowledgement",
			code:         http.StatusOK,
			resp:         Response{Status: StatusOK, Message: "Status update received"},
			expectedBody: `{"status":"ok","message":"Status update received"}`,
		},
		{
			name:         "bare success omits message",
			code:         http.StatusOK,
			resp:         Response{Status: StatusSuccess},
			expectedBody: `{"status":"success"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteResponse(rec, tt.code, tt.resp)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}
