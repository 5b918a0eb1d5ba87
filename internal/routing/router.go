// Package routing selects the destination channel for an event.
package routing

import (
	"github.com/eventflow-systems/eventflow-ingest/internal/messaging"
	"github.com/eventflow-systems/eventflow-ingest/internal/models"
)

// categoryChannels maps an event's category (first dot-segment of the
// type) to its channel. Categories outside this set fall through to the
// raw channel rather than being rejected, so new categories degrade
// gracefully.
var categoryChannels = map[string]string{
	"user":        messaging.ChannelUser,
	"transaction": messaging.ChannelTransaction,
	"analytics":   messaging.ChannelAnalytics,
	"system":      messaging.ChannelSystem,
}

// Route returns the destination channel for the event. It is a pure,
// total function of the event type: critical type prefixes override
// category routing so urgent events never compete with default-category
// volume on the same channel.
func Route(event *models.Event) string {
	if event.IsCritical() {
		return messaging.ChannelCritical
	}
	if ch, ok := categoryChannels[event.Category()]; ok {
		return ch
	}
	return messaging.ChannelRaw
}
