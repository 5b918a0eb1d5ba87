// Package dedup provides idempotent-ingestion support backed by a shared,
// time-windowed key-value store.
package dedup

import "context"

// Deduplicator checks and records event ids against the dedup window.
//
// IsDuplicate followed by MarkSeen is not atomic: two concurrent ingestions
// of the same id can both observe "not seen" before either marks it. That
// race is an accepted tradeoff favouring latency over a distributed lock.
type Deduplicator interface {
	// IsDuplicate reports whether the event id was seen within the window.
	IsDuplicate(ctx context.Context, eventID string) (bool, error)

	// MarkSeen records the event id unconditionally (last write wins),
	// refreshing the window TTL.
	MarkSeen(ctx context.Context, eventID string) error

	// Ping probes the underlying store for health checks.
	Ping(ctx context.Context) error
}
