package validator_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow-systems/eventflow-ingest/internal/models"
	"github.com/eventflow-systems/eventflow-ingest/internal/validator"
)

func validEvent() *models.Event {
	return &models.Event{
		EventID:       "evt-001",
		EventType:     "user.login",
		SubjectID:     "user_001",
		Timestamp:     time.Now(),
		CorrelationID: "evt-001",
		Source:        "api",
		SchemaVersion: "1.0",
	}
}

func TestValidate_ValidEvent(t *testing.T) {
	v := validator.New()

	result := v.Validate(validEvent())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_RequiredFields(t *testing.T) {
	v := validator.New()

	t.Run("missing event id", func(t *testing.T) {
		event := validEvent()
		event.EventID = ""

		result := v.Validate(event)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "eventId is required")
	})

	t.Run("missing event type", func(t *testing.T) {
		event := validEvent()
		event.EventType = ""

		result := v.Validate(event)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "eventType is required")
	})

	t.Run("missing subject id", func(t *testing.T) {
		event := validEvent()
		event.SubjectID = ""

		result := v.Validate(event)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "subjectId is required")
	})

	t.Run("missing timestamp", func(t *testing.T) {
		event := validEvent()
		event.Timestamp = time.Time{}

		result := v.Validate(event)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "timestamp is required")
	})

	t.Run("all errors collected, not short-circuited", func(t *testing.T) {
		event := &models.Event{}

		result := v.Validate(event)

		assert.False(t, result.Valid)
		assert.Len(t, result.Errors, 4)
	})
}

func TestValidate_EventTypeFormat(t *testing.T) {
	v := validator.New()

	invalid := []string{
		"User.Login",    // uppercase
		"user",          // no dot
		"user.",         // empty segment
		".login",        // leading dot
		"user..login",   // double dot
		"1user.login",   // leading digit
		"user.login!",   // punctuation
		"user login",    // space
		"user.Login",    // uppercase segment
		"_user.login",   // leading underscore
	}
	for _, typ := range invalid {
		t.Run(typ, func(t *testing.T) {
			event := validEvent()
			event.EventType = typ

			result := v.Validate(event)

			assert.False(t, result.Valid)
		})
	}

	valid := []string{
		"user.login",
		"analytics.page.view",
		"analytics.page_view",
		"order2.shipped",
		"custom.brand_new.event_type",
	}
	for _, typ := range valid {
		t.Run(typ, func(t *testing.T) {
			event := validEvent()
			event.EventType = typ

			result := v.Validate(event)

			assert.True(t, result.Valid, "errors: %v", result.Errors)
		})
	}
}

func TestValidate_SubjectID(t *testing.T) {
	v := validator.New()

	t.Run("allowed characters", func(t *testing.T) {
		event := validEvent()
		event.SubjectID = "user_01@example.com-x"

		result := v.Validate(event)

		assert.True(t, result.Valid)
	})

	t.Run("disallowed characters", func(t *testing.T) {
		event := validEvent()
		event.SubjectID = "user 01!"

		result := v.Validate(event)

		assert.False(t, result.Valid)
	})

	t.Run("over length limit", func(t *testing.T) {
		event := validEvent()
		event.SubjectID = strings.Repeat("a", 129)

		result := v.Validate(event)

		assert.False(t, result.Valid)
	})

	t.Run("at length limit", func(t *testing.T) {
		event := validEvent()
		event.SubjectID = strings.Repeat("a", 128)

		result := v.Validate(event)

		assert.True(t, result.Valid)
	})
}

func TestValidate_TimestampDrift(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	v := validator.NewWithClock(func() time.Time { return now })

	t.Run("within window", func(t *testing.T) {
		event := validEvent()
		event.Timestamp = now.Add(-23 * time.Hour)

		result := v.Validate(event)

		assert.True(t, result.Valid)
	})

	t.Run("too far in the past", func(t *testing.T) {
		event := validEvent()
		event.Timestamp = now.Add(-25 * time.Hour)

		result := v.Validate(event)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors[0], "timestamp drift")
	})

	t.Run("too far in the future", func(t *testing.T) {
		event := validEvent()
		event.Timestamp = now.Add(25 * time.Hour)

		result := v.Validate(event)

		assert.False(t, result.Valid)
	})
}

func TestValidate_PayloadShape(t *testing.T) {
	v := validator.New()

	t.Run("object accepted", func(t *testing.T) {
		event := validEvent()
		event.Payload = json.RawMessage(`{"k":"v"}`)

		result := v.Validate(event)

		assert.True(t, result.Valid)
	})

	t.Run("null accepted", func(t *testing.T) {
		event := validEvent()
		event.Payload = json.RawMessage(`null`)

		result := v.Validate(event)

		assert.True(t, result.Valid)
	})

	t.Run("array rejected", func(t *testing.T) {
		event := validEvent()
		event.Payload = json.RawMessage(`[1,2]`)

		result := v.Validate(event)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "payload must be a JSON object")
	})

	t.Run("scalar rejected", func(t *testing.T) {
		event := validEvent()
		event.Payload = json.RawMessage(`42`)

		result := v.Validate(event)

		assert.False(t, result.Valid)
	})
}

func TestValidate_EventSize(t *testing.T) {
	v := validator.New()

	event := validEvent()
	big, err := json.Marshal(map[string]string{"blob": strings.Repeat("x", 1<<20)})
	require.NoError(t, err)
	event.Payload = big

	result := v.Validate(event)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1, "sizing must not raise secondary errors")
	assert.Contains(t, result.Errors[0], "event size")
}

func TestValidate_BusinessRules(t *testing.T) {
	v := validator.New()

	t.Run("transaction missing amount and currency", func(t *testing.T) {
		event := validEvent()
		event.EventType = "transaction.created"
		event.Payload = json.RawMessage(`{}`)

		result := v.Validate(event)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "transaction.created requires payload.amount")
		assert.Contains(t, result.Errors, "transaction.created requires payload.currency")
	})

	t.Run("transaction with no payload at all", func(t *testing.T) {
		event := validEvent()
		event.EventType = "transaction.completed"

		result := v.Validate(event)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "transaction.completed requires a payload")
	})

	t.Run("fraud detected with required fields", func(t *testing.T) {
		event := validEvent()
		event.EventType = "fraud.detected"
		event.Payload = json.RawMessage(`{"riskScore":0.9,"reason":"velocity"}`)

		result := v.Validate(event)

		assert.True(t, result.Valid, "errors: %v", result.Errors)
	})

	t.Run("signup requires email and source", func(t *testing.T) {
		event := validEvent()
		event.EventType = "user.signup"
		event.Payload = json.RawMessage(`{"email":"a@b.co"}`)

		result := v.Validate(event)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "user.signup requires payload.source")
	})

	t.Run("known type without field requirements", func(t *testing.T) {
		event := validEvent()
		event.EventType = "user.login"

		result := v.Validate(event)

		assert.True(t, result.Valid)
	})

	t.Run("unknown but format-valid type accepted regardless of payload", func(t *testing.T) {
		event := validEvent()
		event.EventType = "inventory.restocked"
		event.Payload = json.RawMessage(`{"whatever":true}`)

		result := v.Validate(event)

		assert.True(t, result.Valid)
	})

	t.Run("business rules skipped when field checks fail", func(t *testing.T) {
		event := validEvent()
		event.EventType = "transaction.created"
		event.SubjectID = ""
		event.Payload = json.RawMessage(`{}`)

		result := v.Validate(event)

		assert.False(t, result.Valid)
		for _, e := range result.Errors {
			assert.NotContains(t, e, "requires payload")
		}
	})
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	v := validator.New()

	event := validEvent()
	before := *event
	_ = v.Validate(event)

	assert.Equal(t, before, *event)
}
