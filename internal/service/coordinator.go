// Package service orchestrates the ingestion pipeline: dedup check, mark
// seen, route, publish, counters, with failures forwarded to the
// dead-letter channel.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eventflow-systems/eventflow-ingest/internal/dedup"
	"github.com/eventflow-systems/eventflow-ingest/internal/dlq"
	"github.com/eventflow-systems/eventflow-ingest/internal/metrics"
	"github.com/eventflow-systems/eventflow-ingest/internal/models"
	"github.com/eventflow-systems/eventflow-ingest/internal/publisher"
	"github.com/eventflow-systems/eventflow-ingest/internal/routing"
	"github.com/eventflow-systems/eventflow-ingest/internal/stats"
)

// ErrIngestFailed is returned to callers when a pipeline step fails after
// validation. The underlying cause is logged, not leaked.
var ErrIngestFailed = errors.New("event ingestion failed")

// Router maps an event to its destination channel.
type Router func(event *models.Event) string

// Coordinator drives a single event through the pipeline. Collaborators
// are injected; the coordinator holds no broker- or store-specific code.
type Coordinator struct {
	deduper dedup.Deduplicator
	route   Router
	pub     publisher.Publisher
	dead    *dlq.Writer
	stats   *stats.Aggregator
	logger  *slog.Logger
}

// NewCoordinator wires the pipeline. It registers itself as the
// publisher's failure handler so unacknowledged deliveries are counted
// and dead-lettered like synchronous failures.
func NewCoordinator(deduper dedup.Deduplicator, route Router, pub publisher.Publisher, dead *dlq.Writer, agg *stats.Aggregator, logger *slog.Logger) *Coordinator {
	if route == nil {
		route = routing.Route
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		deduper: deduper,
		route:   route,
		pub:     pub,
		dead:    dead,
		stats:   agg,
		logger:  logger,
	}
	pub.OnFailure(c.handleAsyncPublishFailure)
	return c
}

// Ingest runs one validated event through dedup, routing and publish.
// A duplicate is a counted no-op, not an error. Any step failure after
// the duplicate check increments the failure counter, best-effort
// dead-letters the event and returns ErrIngestFailed.
//
// Callers validate before invoking Ingest; invalid events reaching this
// point are a caller bug, so only the cheap defaulting invariants are
// re-checked here.
func (c *Coordinator) Ingest(ctx context.Context, event *models.Event) error {
	c.stats.RecordReceived()
	start := time.Now()
	defer func() {
		metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	if event.EventID == "" {
		// Normally set at the API boundary before validation.
		event.ApplyDefaults()
	}

	isDup, err := c.deduper.IsDuplicate(ctx, event.EventID)
	if err != nil {
		return c.fail(ctx, event, fmt.Errorf("duplicate check: %w", err))
	}
	if isDup {
		c.stats.RecordDuplicated()
		metrics.EventsDuplicated.Inc()
		c.logger.Info("duplicate event skipped", slog.String("event_id", event.EventID))
		return nil
	}

	if err := c.deduper.MarkSeen(ctx, event.EventID); err != nil {
		return c.fail(ctx, event, fmt.Errorf("mark seen: %w", err))
	}

	channel := c.route(event)

	// Keyed by subject id, not event id, so all events for one subject
	// keep relative order within a partition.
	if err := c.pub.Publish(ctx, channel, event.SubjectID, event); err != nil {
		return c.fail(ctx, event, fmt.Errorf("publish to %s: %w", channel, err))
	}

	c.stats.RecordProcessed(event.EventType)
	metrics.EventsIngested.Inc()
	c.logger.Debug("event ingested",
		slog.String("event_id", event.EventID),
		slog.String("event_type", event.EventType),
		slog.String("channel", channel))
	return nil
}

// IngestBatch applies Ingest to each event independently; one failure
// never aborts the rest. The caller enforces the batch size cap.
func (c *Coordinator) IngestBatch(ctx context.Context, events []*models.Event) models.BatchResult {
	var result models.BatchResult
	for _, event := range events {
		if err := c.Ingest(ctx, event); err != nil {
			result.FailureCount++
			result.FailedIDs = append(result.FailedIDs, event.EventID)
			c.logger.Error("batch: event failed",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()))
			continue
		}
		result.SuccessCount++
	}
	return result
}

// Statistics materializes the current counters.
func (c *Coordinator) Statistics() models.Statistics {
	return c.stats.Snapshot()
}

// HealthCheck probes both dependencies. A probe error means DOWN for that
// dependency and is never propagated.
func (c *Coordinator) HealthCheck(ctx context.Context) models.HealthStatus {
	status := models.HealthStatus{
		Broker:          "UP",
		DedupStore:      "UP",
		EventsProcessed: c.stats.Processed(),
		Uptime:          c.stats.Uptime().Round(time.Second).String(),
	}
	if !c.pub.Healthy(ctx) {
		status.Broker = "DOWN"
	}
	if err := c.deduper.Ping(ctx); err != nil {
		c.logger.Error("dedup store health check failed", slog.String("error", err.Error()))
		status.DedupStore = "DOWN"
	}
	if status.Broker == "UP" && status.DedupStore == "UP" {
		status.Status = "UP"
	} else {
		status.Status = "DOWN"
	}
	return status
}

// fail records the failure, best-effort forwards the event to the
// dead-letter channel and reports a generic error to the caller.
func (c *Coordinator) fail(ctx context.Context, event *models.Event, cause error) error {
	c.stats.RecordFailed()
	metrics.EventsFailed.Inc()
	c.logger.Error("failed to ingest event",
		slog.String("event_id", event.EventID),
		slog.String("error", cause.Error()))
	if c.dead != nil {
		c.dead.Write(ctx, event, cause)
	}
	return ErrIngestFailed
}

// handleAsyncPublishFailure treats an unacknowledged delivery like any
// other pipeline failure. The caller already got a success response by
// then; the dead-letter channel is the recovery path. The event was
// counted as processed when the publish was initiated, so that count is
// reversed before it is recorded as failed.
func (c *Coordinator) handleAsyncPublishFailure(event *models.Event, channel string, err error) {
	c.stats.ReverseProcessed(event.EventType)
	_ = c.fail(context.Background(), event, fmt.Errorf("delivery to %s: %w", channel, err))
}
