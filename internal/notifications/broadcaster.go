package notifications

import (
	"context"
	"log/slog"

	"livefeed/internal/observability"
)

// FeedBroadcaster routes feed events to connected clients. With Redis
// configured it publishes to the shared channel and lets each process's hub
// wiring deliver locally; without Redis it pushes straight to the local hub.
// Publishing is fire and forget, a failed push never fails the request that
// caused it.
type FeedBroadcaster struct {
	hub      *Hub
	notifier *Notifier
	log      *slog.Logger
}

// NewFeedBroadcaster creates a broadcaster over the given hub and notifier.
func NewFeedBroadcaster(hub *Hub, notifier *Notifier, log *slog.Logger) *FeedBroadcaster {
	return &FeedBroadcaster{hub: hub, notifier: notifier, log: log}
}

// Publish encodes and delivers one feed event.
func (b *FeedBroadcaster) Publish(ctx context.Context, ev FeedEvent) {
	data, err := EncodeFeedEvent(ev)
	if err != nil {
		b.log.ErrorContext(ctx, "encoding feed event", "action", ev.Action, "error", err)
		return
	}

	observability.FeedEventsTotal.WithLabelValues(ev.Action).Inc()

	if b.notifier != nil && b.notifier.Enabled() {
		if err := b.notifier.PublishFeed(ctx, string(data)); err != nil {
			b.log.ErrorContext(ctx, "publishing feed event", "action", ev.Action, "error", err)
		}
		return
	}

	b.hub.BroadcastAll(data)
}
