package handlers

import (
	"net/http"
)

// livenessMessage is the plain-text response of the root endpoint.
const livenessMessage = "Backend Chatbot THT Aktif!"

// Root serves the plain-text liveness endpoint at /.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(livenessMessage))
	}
}
