package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

var (
	// Recorded by middleware, so handler code cannot skew them.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by path and status code",
		},
		[]string{"path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_submissions_total",
			Help: "Lead submissions by outcome code (ACCEPTED or a rejection code)",
		},
		[]string{"outcome"},
	)

	sinkFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_sink_failures_total",
			Help: "Failed writes to downstream sinks",
		},
		[]string{"sink"},
	)
)

// RecordSubmission counts one submission outcome. Accepted submissions
// pass "ACCEPTED"; rejections pass their rejection code.
func RecordSubmission(outcome string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordSinkFailure counts one failed sink write (postgres, csv, email,
// webhook).
func RecordSinkFailure(sink string) {
	sinkFailuresTotal.WithLabelValues(sink).Inc()
}

// Middleware records request counts and durations per path.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		httpRequestsTotal.WithLabelValues(path, strconv.Itoa(wrapped.Status())).Inc()
		httpRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}
