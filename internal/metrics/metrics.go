package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	ChangeEventsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_change_events_relayed_total",
			Help: "Row change events relayed from the database to the broker",
		},
		[]string{"table", "type"},
	)

	ChangeEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskboard_change_events_dropped_total",
			Help: "Change events dropped because a subscriber was not keeping up",
		},
	)

	OpenStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskboard_open_change_streams",
			Help: "Number of connected change stream clients",
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementChangeRelayed(table, eventType string) {
	ChangeEventsRelayed.WithLabelValues(table, eventType).Inc()
}
