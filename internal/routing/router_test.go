package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventflow-systems/eventflow-ingest/internal/messaging"
	"github.com/eventflow-systems/eventflow-ingest/internal/models"
	"github.com/eventflow-systems/eventflow-ingest/internal/routing"
)

func TestRoute_Categories(t *testing.T) {
	tests := []struct {
		eventType string
		channel   string
	}{
		{"user.login", messaging.ChannelUser},
		{"user.profile.updated", messaging.ChannelUser},
		{"transaction.created", messaging.ChannelTransaction},
		{"analytics.page.view", messaging.ChannelAnalytics},
		{"system.warning", messaging.ChannelSystem},
	}
	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			got := routing.Route(&models.Event{EventType: tt.eventType})
			assert.Equal(t, tt.channel, got)
		})
	}
}

func TestRoute_CriticalOverridesCategory(t *testing.T) {
	// fraud.detected has the "fraud" category, but the critical prefix
	// wins so urgent events never queue behind category volume.
	tests := []string{
		"fraud.detected",
		"security.breach.attempted",
		"error.database.connection",
	}
	for _, typ := range tests {
		t.Run(typ, func(t *testing.T) {
			got := routing.Route(&models.Event{EventType: typ})
			assert.Equal(t, messaging.ChannelCritical, got)
		})
	}
}

func TestRoute_SystemErrorStaysOnSystemChannel(t *testing.T) {
	// system.error is a system-category event; only the error. prefix is
	// critical, not every type containing "error".
	got := routing.Route(&models.Event{EventType: "system.error"})
	assert.Equal(t, messaging.ChannelSystem, got)
}

func TestRoute_UnknownCategoryFallsThrough(t *testing.T) {
	tests := []string{"inventory.restocked", "custom.brand_new.event_type", "iot.sensor.reading"}
	for _, typ := range tests {
		t.Run(typ, func(t *testing.T) {
			got := routing.Route(&models.Event{EventType: typ})
			assert.Equal(t, messaging.ChannelRaw, got)
		})
	}
}

func TestRoute_Deterministic(t *testing.T) {
	a := &models.Event{EventID: "a", EventType: "user.login", SubjectID: "u1"}
	b := &models.Event{EventID: "b", EventType: "user.login", SubjectID: "u2"}

	assert.Equal(t, routing.Route(a), routing.Route(b))
}
