package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/eventflow-systems/eventflow-ingest/internal/messaging"
	natsclient "github.com/eventflow-systems/eventflow-ingest/internal/messaging/nats"
	"github.com/eventflow-systems/eventflow-ingest/internal/metrics"
	"github.com/eventflow-systems/eventflow-ingest/internal/models"
)

// DefaultAckTimeout bounds how long a delivery may wait for a broker
// acknowledgment before it is treated as a publish failure.
const DefaultAckTimeout = 10 * time.Second

// JetStreamPublisher implements Publisher over a shared JetStream client.
type JetStreamPublisher struct {
	client     *natsclient.Client
	ackTimeout time.Duration
	logger     *slog.Logger

	mu        sync.RWMutex
	onFailure FailureHandler

	inflight sync.WaitGroup
}

// NewJetStream creates a publisher over the given client. A non-positive
// ackTimeout falls back to DefaultAckTimeout.
func NewJetStream(client *natsclient.Client, ackTimeout time.Duration, logger *slog.Logger) *JetStreamPublisher {
	if ackTimeout <= 0 {
		ackTimeout = DefaultAckTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JetStreamPublisher{
		client:     client,
		ackTimeout: ackTimeout,
		logger:     logger,
	}
}

func (p *JetStreamPublisher) OnFailure(handler FailureHandler) {
	p.mu.Lock()
	p.onFailure = handler
	p.mu.Unlock()
}

// Publish initiates an async delivery and watches the acknowledgment in
// the background. The request goroutine is never stalled on the broker.
func (p *JetStreamPublisher) Publish(ctx context.Context, channel, key string, event *models.Event) error {
	future, err := p.send(ctx, channel, key, event)
	if err != nil {
		return err
	}

	p.inflight.Add(1)
	metrics.PublishesInFlight.Inc()
	go func() {
		defer p.inflight.Done()
		defer metrics.PublishesInFlight.Dec()

		if err := p.await(future); err != nil {
			p.logger.Error("publish not acknowledged",
				slog.String("channel", channel),
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()))
			p.notifyFailure(event, channel, err)
		}
	}()

	return nil
}

// PublishSync delivers and waits for the acknowledgment. Used by the
// dead-letter path and by tests.
func (p *JetStreamPublisher) PublishSync(ctx context.Context, channel, key string, event *models.Event) error {
	future, err := p.send(ctx, channel, key, event)
	if err != nil {
		return err
	}
	return p.await(future)
}

func (p *JetStreamPublisher) send(ctx context.Context, channel, key string, event *models.Event) (jetstream.PubAckFuture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", event.EventID, err)
	}

	msg := &nats.Msg{
		Subject: channel,
		Data:    data,
		Header:  buildHeaders(key, event),
	}

	future, err := p.client.PublishMsgAsync(msg)
	if err != nil {
		return nil, fmt.Errorf("publish to %s: %w", channel, err)
	}
	return future, nil
}

func (p *JetStreamPublisher) await(future jetstream.PubAckFuture) error {
	select {
	case <-future.Ok():
		return nil
	case err := <-future.Err():
		return fmt.Errorf("broker rejected publish: %w", err)
	case <-time.After(p.ackTimeout):
		return fmt.Errorf("no broker acknowledgment within %s", p.ackTimeout)
	}
}

func (p *JetStreamPublisher) notifyFailure(event *models.Event, channel string, err error) {
	p.mu.RLock()
	handler := p.onFailure
	p.mu.RUnlock()
	if handler != nil {
		handler(event, channel, err)
	}
}

// Healthy probes the broker without sending event data.
func (p *JetStreamPublisher) Healthy(ctx context.Context) bool {
	if err := p.client.CheckHealth(ctx); err != nil {
		p.logger.Error("broker health check failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// Flush waits for every in-flight send to be acknowledged or the context
// to expire.
func (p *JetStreamPublisher) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("flush interrupted: %w", ctx.Err())
	}

	select {
	case <-p.client.PublishAsyncComplete():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush interrupted: %w", ctx.Err())
	}
}

// buildHeaders enriches the outgoing record with tracing metadata without
// touching the event body. Nats-Msg-Id enables broker-side duplicate
// suppression within the stream's dedup window.
func buildHeaders(key string, event *models.Event) nats.Header {
	h := nats.Header{}
	h.Set(nats.MsgIdHdr, event.EventID)
	h.Set(messaging.HeaderPartitionKey, key)
	h.Set(messaging.HeaderCorrelationID, event.CorrelationID)
	h.Set(messaging.HeaderEventType, event.EventType)
	if event.Source != "" {
		h.Set(messaging.HeaderSource, event.Source)
	}
	if event.SchemaVersion != "" {
		h.Set(messaging.HeaderSchemaVersion, event.SchemaVersion)
	}
	return h
}
