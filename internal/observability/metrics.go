package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal counts API requests by method, route and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_api_requests_total",
		Help: "Total number of API requests issued by the client",
	}, []string{"method", "route", "status"})

	// APIRequestDuration records API request latency by method and route.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_api_request_duration_seconds",
		Help:    "API request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// SessionEventsTotal counts session store events by type.
	SessionEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_session_events_total",
		Help: "Total session store events by type",
	}, []string{"event"})

	// FeedCommentFetchFailures counts per-post comment fetches that failed.
	FeedCommentFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_feed_comment_fetch_failures_total",
		Help: "Total number of per-post comment fetches that failed",
	})
)

// Session event labels.
const (
	SessionEventRestore = "restore"
	SessionEventSet     = "set"
	SessionEventClear   = "clear"
	SessionEventError   = "storage_error"
)

// RecordAPIRequest records one finished request. Status 0 marks a transport failure.
func RecordAPIRequest(method, route string, status int, start time.Time) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// RecordSessionEvent increments the session events counter for the event.
func RecordSessionEvent(event string) {
	SessionEventsTotal.WithLabelValues(event).Inc()
}
