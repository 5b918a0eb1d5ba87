package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService   = "service"
	FieldEventID   = "event_id"
	FieldEventType = "event_type"
	FieldChannel   = "channel"
	FieldSubjectID = "subject_id"
	FieldError     = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// EventID returns a slog attribute for the event id.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// EventType returns a slog attribute for the event type.
func EventType(t string) slog.Attr {
	return slog.String(FieldEventType, t)
}

// Channel returns a slog attribute for the destination channel.
func Channel(ch string) slog.Attr {
	return slog.String(FieldChannel, ch)
}

// Err returns a slog attribute for an error value.
func Err(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
