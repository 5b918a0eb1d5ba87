package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eventflow-systems/eventflow-ingest/internal/handlers"
	"github.com/eventflow-systems/eventflow-ingest/internal/middleware"
)

// NewRouter constructs a ServeMux with the ingestion API routes
// registered.
func NewRouter(h *handlers.EventsHandler) http.Handler {
	mux := http.NewServeMux()

	// Event ingestion endpoints
	mux.HandleFunc("/api/v1/events", h.HandleIngest)
	mux.HandleFunc("/api/v1/events/batch", h.HandleBatch)
	mux.HandleFunc("/api/v1/events/stream", h.HandleStream)

	// Statistics and health
	mux.HandleFunc("/api/v1/events/stats", h.HandleStats)
	mux.HandleFunc("/api/v1/events/stats/stream", h.HandleStatsStream)
	mux.HandleFunc("/api/v1/events/health", h.HandleHealth)

	// Orchestration probes
	mux.HandleFunc("/healthz", h.HandleHealth)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
