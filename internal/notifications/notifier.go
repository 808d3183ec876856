package notifications

import (
	"context"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// FeedChannel is the Redis channel feed events are published on.
const FeedChannel = "feed:posts"

// Notifier publishes feed events into Redis so that every server process
// can forward them to its own websocket connections. A nil Redis client
// turns every method into a no-op, single-process deployments run without
// Redis at all.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether a Redis backend is configured.
func (n *Notifier) Enabled() bool {
	return n.rdb != nil
}

// PublishFeed sends an encoded feed event to the shared channel.
func (n *Notifier) PublishFeed(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, FeedChannel, payload).Err()
}

// StartFeedSubscriber subscribes to the feed channel and calls onMessage for
// each incoming message until ctx is cancelled.
func (n *Notifier) StartFeedSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, FeedChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in FeedSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
