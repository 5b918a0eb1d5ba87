// Package nats provides the NATS JetStream implementation of the message
// bus used by the ingestion pipeline.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Config holds NATS client configuration.
type Config struct {
	// URL is the NATS server URL (e.g. "nats://localhost:4222").
	URL string

	// Name identifies the connection on the server.
	Name string

	// MaxReconnects is the maximum number of reconnection attempts.
	// Use -1 for infinite reconnects.
	MaxReconnects int

	// ReconnectWait is the time to wait between reconnection attempts.
	ReconnectWait time.Duration

	// Timeout is the connection timeout.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "eventflow-ingest",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Client wraps a NATS connection with a JetStream context.
type Client struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// NewClient connects to NATS and initializes JetStream.
func NewClient(cfg Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("NATS reconnected")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return &Client{conn: conn, js: js}, nil
}

// StreamConfig defines a JetStream stream backing a set of channels.
type StreamConfig struct {
	Name     string
	Subjects []string
	MaxAge   time.Duration
	MaxBytes int64
}

// EnsureStream creates or updates a stream. Called once at startup for
// each pre-provisioned stream.
func (c *Client) EnsureStream(ctx context.Context, cfg StreamConfig) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		MaxAge:    cfg.MaxAge,
		MaxBytes:  cfg.MaxBytes,
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("create/update stream %s: %w", cfg.Name, err)
	}
	return nil
}

// PublishMsgAsync hands a message to JetStream without waiting for the
// broker acknowledgment. The returned future resolves when the ack (or a
// publish error) arrives.
func (c *Client) PublishMsgAsync(msg *nats.Msg) (jetstream.PubAckFuture, error) {
	return c.js.PublishMsgAsync(msg)
}

// PublishAsyncComplete returns a channel that closes once every pending
// async publish has been acknowledged. Used to drain at shutdown.
func (c *Client) PublishAsyncComplete() <-chan struct{} {
	return c.js.PublishAsyncComplete()
}

// CheckHealth probes the broker with a lightweight metadata request,
// sending no event data.
func (c *Client) CheckHealth(ctx context.Context) error {
	if !c.conn.IsConnected() {
		return fmt.Errorf("not connected to message broker")
	}
	if _, err := c.js.AccountInfo(ctx); err != nil {
		return fmt.Errorf("broker metadata probe: %w", err)
	}
	return nil
}

// IsConnected reports whether the underlying connection is up.
func (c *Client) IsConnected() bool {
	return c.conn.IsConnected()
}

// Drain gracefully closes the connection, allowing in-flight messages to
// complete.
func (c *Client) Drain() error {
	return c.conn.Drain()
}

// Close releases the connection immediately.
func (c *Client) Close() {
	c.conn.Close()
}
