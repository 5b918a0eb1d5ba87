// Package stats aggregates live ingestion counters.
package stats

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eventflow-systems/eventflow-ingest/internal/models"
)

// Aggregator holds the pipeline's running counters. All methods are safe
// for many concurrent writers; readers see an eventually-consistent view
// of the per-type breakdown.
type Aggregator struct {
	received   atomic.Int64
	processed  atomic.Int64
	failed     atomic.Int64
	duplicated atomic.Int64

	// byType maps event type -> *atomic.Int64. LoadOrStore gives
	// insert-if-absent-then-increment without a lock over the whole map.
	byType sync.Map

	startTime time.Time
}

// New creates an Aggregator; uptime is measured from this call.
func New() *Aggregator {
	return &Aggregator{startTime: time.Now()}
}

func (a *Aggregator) RecordReceived()   { a.received.Add(1) }
func (a *Aggregator) RecordFailed()     { a.failed.Add(1) }
func (a *Aggregator) RecordDuplicated() { a.duplicated.Add(1) }

// RecordProcessed counts a successful publish and its type breakdown.
func (a *Aggregator) RecordProcessed(eventType string) {
	a.processed.Add(1)
	counter, _ := a.byType.LoadOrStore(eventType, &atomic.Int64{})
	counter.(*atomic.Int64).Add(1)
}

// ReverseProcessed reclassifies an event already counted as processed
// whose broker acknowledgment failed afterwards, so the success rate
// does not count it on both sides.
func (a *Aggregator) ReverseProcessed(eventType string) {
	a.processed.Add(-1)
	if counter, ok := a.byType.Load(eventType); ok {
		counter.(*atomic.Int64).Add(-1)
	}
}

// Processed returns the successful-publish count.
func (a *Aggregator) Processed() int64 {
	return a.processed.Load()
}

// Uptime returns how long the aggregator has been live.
func (a *Aggregator) Uptime() time.Duration {
	return time.Since(a.startTime)
}

// Snapshot materializes a read-only statistics view from the live
// counters.
func (a *Aggregator) Snapshot() models.Statistics {
	byType := make(map[string]int64)
	a.byType.Range(func(key, value any) bool {
		byType[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	received := a.received.Load()
	processed := a.processed.Load()

	return models.Statistics{
		TotalReceived:   received,
		TotalProcessed:  processed,
		TotalFailed:     a.failed.Load(),
		TotalDuplicated: a.duplicated.Load(),
		SuccessRate:     successRate(processed, received),
		EventsByType:    byType,
		UptimeSeconds:   int64(a.Uptime().Seconds()),
	}
}

// successRate is processed/received as a percentage rounded to two
// decimals. With nothing received it reports 100 rather than a
// misleading 0.
func successRate(processed, received int64) float64 {
	if received == 0 {
		return 100.0
	}
	return math.Round(float64(processed)*10000.0/float64(received)) / 100.0
}
