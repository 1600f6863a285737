package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Metrics returns a middleware that collects Prometheus metrics
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.status)

			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
		})
	}
}

// AnalyzerMetrics holds Prometheus metrics for the analysis engine
type AnalyzerMetrics struct {
	AnalysesTotal    *prometheus.CounterVec
	RowsAnalyzed     prometheus.Histogram
	AnalysisDuration prometheus.Histogram
}

// NewAnalyzerMetrics creates new analyzer metrics
func NewAnalyzerMetrics() *AnalyzerMetrics {
	return &AnalyzerMetrics{
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_analyses_total",
			Help: "Total number of analysis requests by outcome",
		}, []string{"outcome"}),
		RowsAnalyzed: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyzer_rows_analyzed",
			Help:    "Number of CSV rows per analysis",
			Buckets: []float64{10, 100, 1000, 10000, 100000},
		}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyzer_analysis_duration_seconds",
			Help:    "Time taken to run one analysis",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}),
	}
}
