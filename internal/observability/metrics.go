// Package observability holds the Prometheus collectors and OpenTelemetry tracer.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records read-model query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidtube_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ToggleOutcomes counts like/subscription toggles by kind and outcome.
	ToggleOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_toggle_outcomes_total",
		Help: "Like and subscription toggles by kind and outcome",
	}, []string{"kind", "outcome"})

	// UploadsTotal counts object storage uploads by asset kind and result.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_uploads_total",
		Help: "Object storage uploads by asset kind and result",
	}, []string{"kind", "result"})

	// UploadBytes records uploaded object sizes by asset kind.
	UploadBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidtube_upload_bytes",
		Help:    "Size of uploaded objects in bytes",
		Buckets: prometheus.ExponentialBuckets(16*1024, 4, 10),
	}, []string{"kind"})

	// WebSocketConnections is the gauge of open activity stream connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidtube_websocket_connections",
		Help: "Number of active activity stream connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})

	// ActivityEventsPublished counts activity events by type and result.
	ActivityEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_activity_events_total",
		Help: "Activity events published to Redis by type and result",
	}, []string{"event_type", "result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
