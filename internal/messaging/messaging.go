package messaging

import "time"

// Message represents a record sent to the message bus.
type Message struct {
	// Subject is the channel the message is published to.
	Subject string

	// Key is the partition key. Records sharing a key keep relative order
	// on their channel.
	Key string

	// Data is the serialized payload.
	Data []byte

	// Headers carries optional key-value metadata for downstream
	// filtering without decoding the body.
	Headers map[string]string

	// Timestamp is when the message was created.
	Timestamp time.Time
}
