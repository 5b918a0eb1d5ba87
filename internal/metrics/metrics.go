package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline outcome counters
	EventsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventflow_ingest_events_total",
			Help: "Total number of events published to the bus",
		},
	)

	EventsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventflow_ingest_events_failed_total",
			Help: "Total number of events that failed a pipeline step",
		},
	)

	EventsDuplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventflow_ingest_events_duplicated_total",
			Help: "Total number of events rejected as duplicates",
		},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_ingest_validation_failures_total",
			Help: "Total number of events rejected by validation",
		},
		[]string{"event_type"},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventflow_ingest_duration_seconds",
			Help:    "Duration of single-event ingestion in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Publisher metrics
	PublishesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventflow_ingest_publishes_in_flight",
			Help: "Publishes awaiting broker acknowledgment",
		},
	)

	DeadLettered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventflow_ingest_dead_lettered_total",
			Help: "Total number of events forwarded to the dead-letter channel",
		},
	)
)
