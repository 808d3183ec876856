// Package observability defines the Prometheus metrics exported by the
// application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livefeed_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livefeed_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// FeedEventsTotal counts feed events pushed to clients by action.
	FeedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livefeed_feed_events_total",
		Help: "Total number of feed events published by action",
	}, []string{"action"})

	// ImageBytesWritten counts bytes written to the image store.
	ImageBytesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livefeed_image_bytes_written_total",
		Help: "Total number of image bytes written to disk",
	})
)
