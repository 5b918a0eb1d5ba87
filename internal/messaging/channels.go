// Package messaging defines the channel names and stream layout of the
// EventFlow message bus, plus broker-agnostic message types.
package messaging

// Channel subjects on the bus. The set is fixed and pre-provisioned; the
// pipeline never creates channels dynamically.
const (
	ChannelUser        = "events.user"
	ChannelTransaction = "events.transaction"
	ChannelAnalytics   = "events.analytics"
	ChannelSystem      = "events.system"

	// ChannelCritical receives error./security./fraud. events ahead of
	// category routing.
	ChannelCritical = "events.critical"

	// ChannelRaw receives events whose category has no dedicated channel.
	ChannelRaw = "events.raw"

	// ChannelDeadLetter receives events that failed a pipeline step after
	// validation.
	ChannelDeadLetter = "events.dlq"
)

// Stream names backing the channels.
const (
	StreamEvents     = "EVENTS"
	StreamDeadLetter = "EVENTS_DLQ"
)

// Header names attached to every published record for downstream
// filtering and tracing.
const (
	HeaderCorrelationID = "correlationId"
	HeaderEventType     = "eventType"
	HeaderSource        = "source"
	HeaderSchemaVersion = "schemaVersion"

	// HeaderPartitionKey carries the ordering key (the subject id) so
	// consumers can re-partition without decoding the body.
	HeaderPartitionKey = "partitionKey"

	// HeaderFailureReason is set on dead-letter records.
	HeaderFailureReason = "failureReason"
)
