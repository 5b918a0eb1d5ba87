package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eventflow-systems/eventflow-ingest/internal/models"
)

func TestApplyDefaults(t *testing.T) {
	t.Run("fills blank fields", func(t *testing.T) {
		event := &models.Event{EventType: "user.login", SubjectID: "u1"}

		event.ApplyDefaults()

		assert.NotEmpty(t, event.EventID)
		assert.False(t, event.Timestamp.IsZero())
		assert.Equal(t, event.EventID, event.CorrelationID)
		assert.Equal(t, models.DefaultSource, event.Source)
		assert.Equal(t, models.DefaultSchemaVersion, event.SchemaVersion)
	})

	t.Run("keeps supplied fields", func(t *testing.T) {
		ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
		event := &models.Event{
			EventID:       "evt-42",
			EventType:     "user.login",
			SubjectID:     "u1",
			Timestamp:     ts,
			CorrelationID: "trace-7",
			Source:        "mobile",
			SchemaVersion: "2.1",
		}

		event.ApplyDefaults()

		assert.Equal(t, "evt-42", event.EventID)
		assert.Equal(t, ts, event.Timestamp)
		assert.Equal(t, "trace-7", event.CorrelationID)
		assert.Equal(t, "mobile", event.Source)
		assert.Equal(t, "2.1", event.SchemaVersion)
	})

	t.Run("whitespace-only id is replaced", func(t *testing.T) {
		event := &models.Event{EventID: "   "}

		event.ApplyDefaults()

		assert.NotEqual(t, "   ", event.EventID)
		assert.NotEmpty(t, event.CorrelationID)
	})
}

func TestCategory(t *testing.T) {
	tests := []struct {
		eventType string
		category  string
	}{
		{"user.login", "user"},
		{"analytics.page.view", "analytics"},
		{"transaction.created", "transaction"},
		{"single", "single"},
	}
	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			event := &models.Event{EventType: tt.eventType}
			assert.Equal(t, tt.category, event.Category())
		})
	}
}

func TestIsCritical(t *testing.T) {
	critical := []string{"error.database.down", "security.breach.attempted", "fraud.detected"}
	for _, typ := range critical {
		event := &models.Event{EventType: typ}
		assert.True(t, event.IsCritical(), typ)
	}

	ordinary := []string{"user.login", "transaction.created", "errors.misc", "frauds.other"}
	for _, typ := range ordinary {
		event := &models.Event{EventType: typ}
		assert.False(t, event.IsCritical(), typ)
	}
}
