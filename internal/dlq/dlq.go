// Package dlq forwards events that failed a pipeline step to the
// dead-letter channel for offline reprocessing.
package dlq

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/eventflow-systems/eventflow-ingest/internal/messaging"
	"github.com/eventflow-systems/eventflow-ingest/internal/metrics"
	"github.com/eventflow-systems/eventflow-ingest/internal/models"
	"github.com/eventflow-systems/eventflow-ingest/internal/publisher"
)

// Writer publishes failed events to the dead-letter channel. Writes are
// best-effort: a secondary failure here is logged and swallowed so the
// failure path cannot cascade.
type Writer struct {
	pub     publisher.Publisher
	logger  *slog.Logger
	written atomic.Uint64
}

// NewWriter creates a dead-letter writer over the shared publisher.
func NewWriter(pub publisher.Publisher, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{pub: pub, logger: logger}
}

// Write forwards the original event to the dead-letter channel, keyed by
// its event id. The cause travels in a header so reprocessing jobs can
// triage without decoding bodies.
func (w *Writer) Write(ctx context.Context, event *models.Event, cause error) {
	// Bound the forward independently of the failed operation's context.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	dead := *event
	if dead.Metadata == nil {
		dead.Metadata = map[string]string{}
	} else {
		meta := make(map[string]string, len(event.Metadata)+1)
		for k, v := range event.Metadata {
			meta[k] = v
		}
		dead.Metadata = meta
	}
	dead.Metadata[messaging.HeaderFailureReason] = cause.Error()

	if err := w.pub.PublishSync(ctx, messaging.ChannelDeadLetter, event.EventID, &dead); err != nil {
		w.logger.Error("dead-letter forward failed",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()))
		return
	}

	w.written.Add(1)
	metrics.DeadLettered.Inc()
	w.logger.Info("event dead-lettered",
		slog.String("event_id", event.EventID),
		slog.String("reason", cause.Error()))
}

// Written returns how many events this instance has dead-lettered.
func (w *Writer) Written() uint64 {
	return w.written.Load()
}
