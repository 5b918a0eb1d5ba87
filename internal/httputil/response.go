// Package httputil contains JSON response helpers shared by all
// handlers.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// ErrorEnvelope is the uniform failure response shape across every
// endpoint, so clients parse errors the same way regardless of which
// operation produced them.
type ErrorEnvelope struct {
	Status    int      `json:"status"`
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Details   []string `json:"details,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// WriteError writes the uniform error envelope.
func WriteError(w http.ResponseWriter, status int, message string, details ...string) {
	WriteJSON(w, status, ErrorEnvelope{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
