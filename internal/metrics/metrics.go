// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projects_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	ProjectMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projects_mutations_total",
			Help: "Project create, update and delete operations",
		},
		[]string{"operation", "success"},
	)

	DashboardCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projects_dashboard_cache_total",
			Help: "Dashboard stats cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projects_events_published_total",
			Help: "Change events handed to the broker",
		},
		[]string{"routing_key", "success"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projects_job_duration_seconds",
			Help:    "Scheduled job run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"job", "success"},
	)
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func RecordProjectMutation(operation string, success bool) {
	ProjectMutations.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
}

func RecordCacheResult(result string) {
	DashboardCacheResults.WithLabelValues(result).Inc()
}

func RecordEventPublished(routingKey string, success bool) {
	EventsPublished.WithLabelValues(routingKey, strconv.FormatBool(success)).Inc()
}

func RecordJobRun(job string, success bool, duration time.Duration) {
	JobDuration.WithLabelValues(job, strconv.FormatBool(success)).Observe(duration.Seconds())
}
