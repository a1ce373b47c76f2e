// Package monitoring provides adapters to connect the domain's metrics interface with a concrete implementation like Prometheus.
package monitoring

import (
	"time"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
)

// MetricsAdapter implements the domain's service.Metrics interface, sending metrics to a Prometheus backend.
// This adapter translates the domain-specific metric calls into the appropriate Prometheus client calls.
// MetricsAdapter 实现了域的 service.Metrics 接口，将指标发送到 Prometheus 后端。
type MetricsAdapter struct {
	metrics *Metrics
}

// NewMetricsAdapter creates a new adapter that wraps a concrete Prometheus Metrics object,
// satisfying the domain's Metrics interface.
// NewMetricsAdapter 创建一个包装具体 Prometheus Metrics 对象的新适配器。
func NewMetricsAdapter(metrics *Metrics) service.Metrics {
	return &MetricsAdapter{metrics: metrics}
}

// RecordEvaluation counts one evaluation and observes its latency.
// RecordEvaluation 记录一次学生风险评估。
func (a *MetricsAdapter) RecordEvaluation(level string, duration time.Duration) {
	a.metrics.Evaluations.WithLabelValues(level).Inc()
	a.metrics.EvaluationLatency.Observe(duration.Seconds())
}

// RecordValidationFailure counts a rejected payload.
func (a *MetricsAdapter) RecordValidationFailure(source string) {
	a.metrics.ValidationFailures.WithLabelValues(source).Inc()
}

// RecordBatch observes batch size, failures and latency.
// RecordBatch 记录批量评估的规模、失败数和耗时。
func (a *MetricsAdapter) RecordBatch(size, failed int, duration time.Duration) {
	a.metrics.BatchSize.Observe(float64(size))
	a.metrics.BatchFailures.Add(float64(failed))
	a.metrics.BatchLatency.Observe(duration.Seconds())
}

// RecordUpload counts processed and skipped rows of an ingested file.
func (a *MetricsAdapter) RecordUpload(uploadType string, processed, skipped int) {
	a.metrics.UploadRows.WithLabelValues(uploadType, "processed").Add(float64(processed))
	a.metrics.UploadRows.WithLabelValues(uploadType, "skipped").Add(float64(skipped))
}

// RecordAlert counts a notification attempt.
func (a *MetricsAdapter) RecordAlert(channel string, success bool) {
	a.metrics.Alerts.WithLabelValues(channel, result(success)).Inc()
}

// RecordCacheAccess delegates the call to the underlying Prometheus Metrics object.
// RecordCacheAccess 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordCacheAccess(cacheType string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	a.metrics.CacheAccess.WithLabelValues(cacheType, outcome).Inc()
}

// RecordRateLimitHit delegates the call to the underlying Prometheus Metrics object.
// RecordRateLimitHit 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordRateLimitHit(scope string) {
	a.metrics.RateLimitHits.WithLabelValues(scope).Inc()
}

// RecordDBQuery delegates the call to the underlying Prometheus Metrics object.
// RecordDBQuery 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordDBQuery(operation string, duration time.Duration) {
	a.metrics.DBQueryLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordEventPublish counts a domain event handed to the broker.
func (a *MetricsAdapter) RecordEventPublish(eventType string, success bool) {
	a.metrics.EventsPublished.WithLabelValues(eventType, result(success)).Inc()
}
