package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	reviewOutcomesTotal   *prometheus.CounterVec
	reviewScores          prometheus.Histogram
	loginAttemptsTotal    *prometheus.CounterVec
	notificationFailTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "review_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0, 30.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		reviewOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_pipeline_outcomes_total",
			Help: "Submission pipeline outcomes partitioned by result and upload kind.",
		}, []string{"result", "kind"})

		reviewScores = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "review_pipeline_scores",
			Help:    "Distribution of extracted review scores.",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		})

		loginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_login_attempts_total",
			Help: "Login attempts partitioned by result.",
		}, []string{"result"})

		notificationFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "review_notification_failures_total",
			Help: "Result notifications that could not be delivered.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			reviewOutcomesTotal,
			reviewScores,
			loginAttemptsTotal,
			notificationFailTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ReviewOutcomes exposes the pipeline outcome counter.
func ReviewOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewOutcomesTotal
}

// ReviewScores exposes the score histogram.
func ReviewScores() prometheus.Histogram {
	RegisterMetrics()
	return reviewScores
}

// LoginAttempts exposes the login attempt counter.
func LoginAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return loginAttemptsTotal
}

// NotificationFailures exposes the notification failure counter.
func NotificationFailures() prometheus.Counter {
	RegisterMetrics()
	return notificationFailTotal
}
