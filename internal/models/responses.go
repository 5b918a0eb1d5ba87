package models

// AcceptedResponse is returned when a single event is queued for delivery.
type AcceptedResponse struct {
	EventID string `json:"eventId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// BatchResponse is returned for a batch submission.
type BatchResponse struct {
	TotalEvents  int      `json:"totalEvents"`
	SuccessCount int      `json:"successCount"`
	FailureCount int      `json:"failureCount"`
	FailedIDs    []string `json:"failedEventIds,omitempty"`
	Status       string   `json:"status"`
}

// StreamResponse is returned once an NDJSON stream has been drained.
type StreamResponse struct {
	ProcessedEvents int64  `json:"processedEvents"`
	Status          string `json:"status"`
}
