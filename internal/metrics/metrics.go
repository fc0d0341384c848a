package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stingbook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stingbook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stingbook_bookings_total",
			Help: "Total number of booking writes",
		},
		[]string{"operation", "status"},
	)

	CapacityConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stingbook_capacity_conflicts_total",
			Help: "Total number of bookings rejected because a slot was full or closed",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stingbook_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	RolloverRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stingbook_rollover_runs_total",
			Help: "Total number of advance-config rollover runs",
		},
		[]string{"status"},
	)

	ActivityLogWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stingbook_activity_log_writes_total",
			Help: "Total number of activity log writes",
		},
		[]string{"status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(operation, status string) {
	BookingsTotal.WithLabelValues(operation, status).Inc()
}

func RecordCapacityConflict() {
	CapacityConflictsTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordRolloverRun(status string) {
	RolloverRunsTotal.WithLabelValues(status).Inc()
}

func RecordActivityLogWrite(status string) {
	ActivityLogWritesTotal.WithLabelValues(status).Inc()
}
