// Package publisher delivers events to channels on the message bus.
package publisher

import (
	"context"

	"github.com/eventflow-systems/eventflow-ingest/internal/models"
)

// FailureHandler is invoked when an asynchronously initiated publish is
// not acknowledged within the delivery timeout.
type FailureHandler func(event *models.Event, channel string, err error)

// Publisher delivers events to a named channel. Implementations share one
// long-lived broker connection and are safe for concurrent use.
type Publisher interface {
	// Publish initiates delivery keyed by the partition key and returns
	// once the send is handed to the broker client; it does not wait for
	// the broker acknowledgment. Acknowledgment failures are reported to
	// the registered FailureHandler.
	Publish(ctx context.Context, channel, key string, event *models.Event) error

	// PublishSync delivers the event and blocks until the broker
	// acknowledges it or the delivery timeout elapses.
	PublishSync(ctx context.Context, channel, key string, event *models.Event) error

	// OnFailure registers the handler for asynchronous delivery failures.
	// Must be called before the first Publish.
	OnFailure(handler FailureHandler)

	// Healthy probes the broker with a lightweight metadata request.
	Healthy(ctx context.Context) bool

	// Flush blocks until all in-flight sends are acknowledged. Used at
	// controlled shutdown, never on the hot path.
	Flush(ctx context.Context) error
}
