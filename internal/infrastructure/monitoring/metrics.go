package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "student_risk"

// Metrics manages the Prometheus metrics.
type Metrics struct {
	Evaluations        *prometheus.CounterVec
	EvaluationLatency  prometheus.Histogram
	ValidationFailures *prometheus.CounterVec
	BatchSize          prometheus.Histogram
	BatchFailures      prometheus.Counter
	BatchLatency       prometheus.Histogram
	UploadRows         *prometheus.CounterVec
	Alerts             *prometheus.CounterVec
	CacheAccess        *prometheus.CounterVec
	RateLimitHits      *prometheus.CounterVec
	DBQueryLatency     *prometheus.HistogramVec
	EventsPublished    *prometheus.CounterVec

	HTTPRequests       *prometheus.CounterVec
	HTTPLatency        *prometheus.HistogramVec
	HTTPActiveRequests prometheus.Gauge
}

// NewMetrics creates the Prometheus metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of student evaluations by resulting risk level.",
			},
			[]string{"level"},
		),
		EvaluationLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Latency of a single student evaluation.",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005},
			},
		),
		ValidationFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Total number of rejected configs, metrics and uploads.",
			},
			[]string{"source"},
		),
		BatchSize: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_size",
				Help:      "Number of students per evaluated batch.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		BatchFailures: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_item_failures_total",
				Help:      "Total number of batch items rejected during evaluation.",
			},
		),
		BatchLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Latency of batch evaluations.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		UploadRows: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_rows_total",
				Help:      "Rows read from uploaded files by type and outcome.",
			},
			[]string{"type", "result"},
		),
		Alerts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_total",
				Help:      "Notification attempts by channel and outcome.",
			},
			[]string{"channel", "result"},
		),
		CacheAccess: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_access_total",
				Help:      "Settings cache lookups by cache layer and outcome.",
			},
			[]string{"cache", "result"},
		),
		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Total number of rate limit hits.",
			},
			[]string{"scope"},
		),
		DBQueryLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Latency of database operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Domain events handed to the broker by type and outcome.",
			},
			[]string{"type", "result"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status.",
			},
			[]string{"path", "method", "status"},
		),
		HTTPLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and method.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		HTTPActiveRequests: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_active_requests",
				Help:      "Requests currently being served.",
			},
		),
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// ActiveRequestsInc marks a request as in flight.
func (m *Metrics) ActiveRequestsInc() { m.HTTPActiveRequests.Inc() }

// ActiveRequestsDec marks a request as finished.
func (m *Metrics) ActiveRequestsDec() { m.HTTPActiveRequests.Dec() }

// ObserveRequest records one served request. path is the route template,
// never the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(path, method string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}
