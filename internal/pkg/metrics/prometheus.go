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
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Scheduler Metrics
	ScheduleFiringsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronflow_schedule_firings_total",
			Help: "Total number of schedule firings",
		},
		[]string{"action_type", "status", "trigger"},
	)

	ScheduleFiringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronflow_schedule_firing_duration_seconds",
			Help:    "Schedule firing duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"action_type"},
	)

	SchedulerPollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chronflow_scheduler_poll_duration_seconds",
			Help:    "Duration of one poll tick in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	SchedulesRecoveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronflow_schedules_recovered_total",
			Help: "Total number of stale schedules advanced without firing",
		},
	)

	RunRecordsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronflow_run_records_pruned_total",
			Help: "Total number of run history records pruned",
		},
	)

	// Queue Metrics
	QueueTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronflow_queue_tasks_total",
			Help: "Total number of tasks enqueued",
		},
		[]string{"task_type"},
	)

	// Rate Limiting Metrics
	RateLimitHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronflow_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"endpoint"},
	)
)

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware records HTTP metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := r.URL.Path

		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecordFiring records one schedule firing
func RecordFiring(actionType, status, trigger string, durationSeconds float64) {
	ScheduleFiringsTotal.WithLabelValues(actionType, status, trigger).Inc()
	if durationSeconds > 0 {
		ScheduleFiringDuration.WithLabelValues(actionType).Observe(durationSeconds)
	}
}

// RecordPoll records the duration of one scheduler tick
func RecordPoll(durationSeconds float64) {
	SchedulerPollDuration.Observe(durationSeconds)
}

// RecordRecovered records stale schedules advanced without firing
func RecordRecovered(n int64) {
	SchedulesRecoveredTotal.Add(float64(n))
}

// RecordPruned records run history rows removed by retention cleanup
func RecordPruned(n int64) {
	RunRecordsPrunedTotal.Add(float64(n))
}

// RecordEnqueued records one task handed to the delivery queue
func RecordEnqueued(taskType string) {
	QueueTasksTotal.WithLabelValues(taskType).Inc()
}

// RecordRateLimitHit records rate limit hits
func RecordRateLimitHit(endpoint string) {
	RateLimitHitsTotal.WithLabelValues(endpoint).Inc()
}
