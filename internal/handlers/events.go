// Package handlers implements the ingestion HTTP API.
package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/eventflow-systems/eventflow-ingest/internal/httputil"
	"github.com/eventflow-systems/eventflow-ingest/internal/logging"
	"github.com/eventflow-systems/eventflow-ingest/internal/metrics"
	"github.com/eventflow-systems/eventflow-ingest/internal/models"
	"github.com/eventflow-systems/eventflow-ingest/internal/validator"
)

// maxStreamLineBytes bounds a single NDJSON line; events above the size
// limit fail validation anyway.
const maxStreamLineBytes = 2 << 20

// IngestionService is the pipeline surface the handlers depend on.
type IngestionService interface {
	Ingest(ctx context.Context, event *models.Event) error
	IngestBatch(ctx context.Context, events []*models.Event) models.BatchResult
	Statistics() models.Statistics
	HealthCheck(ctx context.Context) models.HealthStatus
}

// EventsHandler serves the /api/v1/events endpoints.
type EventsHandler struct {
	service       IngestionService
	validate      *validator.Validator
	logger        *logging.Logger
	maxBatchSize  int
	statsInterval time.Duration
}

// NewEventsHandler constructs the handler. maxBatchSize caps batch
// submissions; statsInterval drives the SSE statistics push.
func NewEventsHandler(service IngestionService, v *validator.Validator, logger *logging.Logger, maxBatchSize int, statsInterval time.Duration) *EventsHandler {
	if maxBatchSize <= 0 {
		maxBatchSize = 1000
	}
	if statsInterval <= 0 {
		statsInterval = 5 * time.Second
	}
	return &EventsHandler{
		service:       service,
		validate:      v,
		logger:        logger,
		maxBatchSize:  maxBatchSize,
		statsInterval: statsInterval,
	}
}

// HandleIngest accepts a single event.
func (h *EventsHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Malformed JSON request body")
		return
	}
	event.ApplyDefaults()

	if result := h.validate.Validate(&event); !result.Valid {
		h.logger.WithContext(r.Context()).Warn("event validation failed",
			logging.EventID(event.EventID))
		metrics.ValidationFailures.WithLabelValues(event.EventType).Inc()
		httputil.WriteError(w, http.StatusBadRequest, "Validation failed", result.Errors...)
		return
	}

	if err := h.service.Ingest(r.Context(), &event); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "Event ingestion failed, event sent to dead-letter channel")
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, models.AcceptedResponse{
		EventID: event.EventID,
		Status:  "accepted",
		Message: "Event queued for processing",
	})
}

// HandleBatch accepts up to maxBatchSize events in one request. The cap
// is enforced here, before any event is processed. Events failing
// validation are reported in the failed-id list without entering the
// pipeline.
func (h *EventsHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var events []*models.Event
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Malformed JSON request body")
		return
	}
	if len(events) > h.maxBatchSize {
		httputil.WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Batch too large: %d events, maximum is %d", len(events), h.maxBatchSize))
		return
	}
	// A JSON null element decodes to a nil pointer without a decode error.
	for _, event := range events {
		if event == nil {
			httputil.WriteError(w, http.StatusBadRequest, "Malformed JSON request body")
			return
		}
	}

	valid := make([]*models.Event, 0, len(events))
	var invalid models.BatchResult
	for _, event := range events {
		event.ApplyDefaults()
		if result := h.validate.Validate(event); !result.Valid {
			metrics.ValidationFailures.WithLabelValues(event.EventType).Inc()
			invalid.FailureCount++
			invalid.FailedIDs = append(invalid.FailedIDs, event.EventID)
			continue
		}
		valid = append(valid, event)
	}

	result := h.service.IngestBatch(r.Context(), valid)
	result.FailureCount += invalid.FailureCount
	result.FailedIDs = append(result.FailedIDs, invalid.FailedIDs...)

	httputil.WriteJSON(w, http.StatusAccepted, models.BatchResponse{
		TotalEvents:  len(events),
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
		FailedIDs:    result.FailedIDs,
		Status:       "accepted",
	})
}

// HandleStream ingests a newline-delimited event stream. Invalid lines
// and invalid events are silently filtered; the response reports how
// many events were accepted once the stream ends.
func (h *EventsHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 64*1024), maxStreamLineBytes)

	var processed int64
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event models.Event
		if err := json.Unmarshal(line, &event); err != nil {
			h.logger.WithContext(r.Context()).Debug("skipping malformed stream line")
			continue
		}
		event.ApplyDefaults()

		if result := h.validate.Validate(&event); !result.Valid {
			h.logger.WithContext(r.Context()).Debug("skipping invalid event",
				logging.EventID(event.EventID))
			continue
		}
		if err := h.service.Ingest(r.Context(), &event); err != nil {
			continue
		}
		processed++
	}
	// A read error (for example a line over the buffer limit) ends the
	// stream early. Events accepted before the error are already in the
	// pipeline, so the count is reported rather than discarded.
	if err := scanner.Err(); err != nil {
		h.logger.WithContext(r.Context()).Warn("event stream ended early",
			logging.Err(err))
		httputil.WriteJSON(w, http.StatusAccepted, models.StreamResponse{
			ProcessedEvents: processed,
			Status:          "truncated",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, models.StreamResponse{
		ProcessedEvents: processed,
		Status:          "completed",
	})
}

// HandleStats returns the current statistics snapshot.
func (h *EventsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.Statistics())
}

// HandleStatsStream pushes a statistics snapshot over Server-Sent Events
// on a fixed interval until the caller disconnects. The loop only reads
// counters, so there is no backpressure concern.
func (h *EventsHandler) HandleStatsStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.statsInterval)
	defer ticker.Stop()

	var seq int64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			data, err := json.Marshal(h.service.Statistics())
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: stats\ndata: %s\n\n", seq, data)
			flusher.Flush()
			seq++
		}
	}
}

// HandleHealth reports overall and per-dependency status; 503 when any
// dependency probe fails.
func (h *EventsHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	health := h.service.HealthCheck(r.Context())
	status := http.StatusOK
	if !health.Healthy() {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, health)
}

// Ready reports process liveness for orchestration probes.
func (h *EventsHandler) Ready(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
