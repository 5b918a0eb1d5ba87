// Package models defines the event data model and the response shapes
// exposed by the ingestion API.
package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default provenance values applied when the producer omits them.
const (
	DefaultSource        = "api"
	DefaultSchemaVersion = "1.0"
)

// Event is the unit flowing through the ingestion pipeline. It is created
// at the API boundary and discarded after publish; the broker owns any
// persistence beyond that point.
type Event struct {
	// EventID is globally unique. Generated if absent on input and
	// immutable afterwards.
	EventID string `json:"eventId"`

	// EventType is dot-separated lowercase (category.subtype[.subtype]).
	// The first segment is the routing category.
	EventType string `json:"eventType"`

	// SubjectID identifies the originating actor. It is also the publish
	// partition key, so all events for one subject keep relative order.
	SubjectID string `json:"subjectId"`

	Timestamp time.Time `json:"timestamp"`

	// Payload is an optional object-shaped document. Required fields
	// depend on EventType for the well-known types.
	Payload json.RawMessage `json:"payload,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`

	// CorrelationID is used for tracing; defaults to EventID.
	CorrelationID string `json:"correlationId,omitempty"`

	Source        string `json:"source,omitempty"`
	SchemaVersion string `json:"schemaVersion,omitempty"`
}

// ApplyDefaults fills system-applied fields on a freshly decoded event.
// After it returns, EventID, Timestamp, CorrelationID, Source and
// SchemaVersion are never empty.
func (e *Event) ApplyDefaults() {
	if strings.TrimSpace(e.EventID) == "" {
		e.EventID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if strings.TrimSpace(e.CorrelationID) == "" {
		e.CorrelationID = e.EventID
	}
	if strings.TrimSpace(e.Source) == "" {
		e.Source = DefaultSource
	}
	if strings.TrimSpace(e.SchemaVersion) == "" {
		e.SchemaVersion = DefaultSchemaVersion
	}
}

// Category returns the first dot-segment of the event type.
func (e *Event) Category() string {
	if i := strings.IndexByte(e.EventType, '.'); i > 0 {
		return e.EventType[:i]
	}
	return e.EventType
}

// criticalPrefixes route ahead of category routing regardless of category.
var criticalPrefixes = []string{"error.", "security.", "fraud."}

// IsCritical reports whether the event requires urgent-channel handling.
func (e *Event) IsCritical() bool {
	for _, p := range criticalPrefixes {
		if strings.HasPrefix(e.EventType, p) {
			return true
		}
	}
	return false
}

// BatchResult tallies one IngestBatch call.
type BatchResult struct {
	SuccessCount int      `json:"successCount"`
	FailureCount int      `json:"failureCount"`
	FailedIDs    []string `json:"failedEventIds,omitempty"`
}

// Statistics is a read-only snapshot materialized on demand from the live
// counters; it is never stored.
type Statistics struct {
	TotalReceived   int64            `json:"totalReceived"`
	TotalProcessed  int64            `json:"totalProcessed"`
	TotalFailed     int64            `json:"totalFailed"`
	TotalDuplicated int64            `json:"totalDuplicated"`
	SuccessRate     float64          `json:"successRate"`
	EventsByType    map[string]int64 `json:"eventsByType"`
	UptimeSeconds   int64            `json:"uptimeSeconds"`
}

// HealthStatus reports overall and per-dependency health.
type HealthStatus struct {
	Status          string `json:"status"`
	Broker          string `json:"broker"`
	DedupStore      string `json:"dedupStore"`
	EventsProcessed int64  `json:"eventsProcessed"`
	Uptime          string `json:"uptime"`
}

// Healthy reports whether both dependency probes succeeded.
func (h HealthStatus) Healthy() bool {
	return h.Status == "UP"
}
