// Package validator checks events against format rules and business
// constraints before they are admitted to the pipeline.
package validator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/eventflow-systems/eventflow-ingest/internal/models"
)

var (
	eventTypePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(\.[a-z][a-z0-9_]*)+$`)
	subjectIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_@.-]{1,128}$`)
)

const (
	maxEventSizeBytes = 1 << 20 // 1 MiB
	maxTimestampDrift = 24 * time.Hour
)

// businessRuleTypes lists the well-known types whose payloads carry
// required fields. The type space itself is intentionally open: an
// unrecognised type that matches the format pattern is accepted with no
// field requirements and routes to the raw channel, so new producers do
// not need a deployment here.
var businessRuleTypes = map[string][]string{
	"user.signup":               {"email", "source"},
	"user.login":                nil,
	"user.logout":               nil,
	"user.profile.updated":      nil,
	"transaction.created":       {"amount", "currency"},
	"transaction.completed":     {"amount", "currency"},
	"transaction.failed":        {"amount", "currency"},
	"analytics.page.view":       nil,
	"analytics.page_view":       nil,
	"analytics.button.click":    nil,
	"analytics.form.submit":     nil,
	"system.error":              nil,
	"system.warning":            nil,
	"fraud.detected":            {"riskScore", "reason"},
	"security.breach.attempted": {"ip", "reason"},
}

// Result carries the outcome of one Validate call. Errors are ordered in
// check order and the caller consumes the result immediately.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validator is a pure event validator with no external dependencies.
// now is swappable for tests and defaults to time.Now.
type Validator struct {
	now func() time.Time
}

// New returns a Validator using the wall clock.
func New() *Validator {
	return &Validator{now: time.Now}
}

// NewWithClock returns a Validator with an injected clock.
func NewWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// Validate runs every field check and collects all errors; business rules
// run only when the field checks pass. The input is never mutated.
func (v *Validator) Validate(event *models.Event) Result {
	var errs []string

	errs = v.checkEventID(event, errs)
	errs = v.checkEventType(event, errs)
	errs = v.checkSubjectID(event, errs)
	errs = v.checkTimestamp(event, errs)
	errs = v.checkPayload(event, errs)
	errs = v.checkSize(event, errs)

	if len(errs) == 0 {
		errs = v.checkBusinessRules(event, errs)
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func (v *Validator) checkEventID(event *models.Event, errs []string) []string {
	if event.EventID == "" {
		errs = append(errs, "eventId is required")
	}
	return errs
}

func (v *Validator) checkEventType(event *models.Event, errs []string) []string {
	if event.EventType == "" {
		return append(errs, "eventType is required")
	}
	if !eventTypePattern.MatchString(event.EventType) {
		errs = append(errs, "eventType must be lowercase dot-separated (e.g. user.login, analytics.page.view)")
	}
	return errs
}

func (v *Validator) checkSubjectID(event *models.Event, errs []string) []string {
	if event.SubjectID == "" {
		return append(errs, "subjectId is required")
	}
	if !subjectIDPattern.MatchString(event.SubjectID) {
		errs = append(errs, "subjectId contains invalid characters (allowed: a-z A-Z 0-9 _ @ . -, max 128)")
	}
	return errs
}

func (v *Validator) checkTimestamp(event *models.Event, errs []string) []string {
	if event.Timestamp.IsZero() {
		return append(errs, "timestamp is required")
	}
	drift := v.now().Sub(event.Timestamp)
	if drift < 0 {
		drift = -drift
	}
	if drift > maxTimestampDrift {
		errs = append(errs, fmt.Sprintf("timestamp drift is %d hours, maximum allowed is %d hours",
			int64(drift.Hours()), int64(maxTimestampDrift.Hours())))
	}
	return errs
}

func (v *Validator) checkPayload(event *models.Event, errs []string) []string {
	if !payloadIsObjectOrAbsent(event.Payload) {
		errs = append(errs, "payload must be a JSON object")
	}
	return errs
}

// checkSize only rejects on a clear violation; a sizing failure must not
// raise secondary errors.
func (v *Validator) checkSize(event *models.Event, errs []string) []string {
	raw, err := json.Marshal(event)
	if err != nil {
		return errs
	}
	if len(raw) > maxEventSizeBytes {
		errs = append(errs, fmt.Sprintf("event size %d bytes exceeds maximum %d bytes (1 MiB)",
			len(raw), maxEventSizeBytes))
	}
	return errs
}

func (v *Validator) checkBusinessRules(event *models.Event, errs []string) []string {
	required, known := businessRuleTypes[event.EventType]
	if !known || len(required) == 0 {
		return errs
	}

	fields, ok := payloadFields(event.Payload)
	if !ok {
		return append(errs, event.EventType+" requires a payload")
	}
	for _, f := range required {
		if _, present := fields[f]; !present {
			errs = append(errs, event.EventType+" requires payload."+f)
		}
	}
	return errs
}

// payloadIsObjectOrAbsent reports whether the raw payload is absent, JSON
// null, or an object. Scalars and arrays fail.
func payloadIsObjectOrAbsent(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	switch probe.(type) {
	case nil, map[string]any:
		return true
	default:
		return false
	}
}

func payloadFields(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}
