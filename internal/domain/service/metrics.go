// Package service holds the risk rule and the interfaces for domain services.
package service

import (
	"time"
)

// Metrics defines the interface for collecting business metrics.
// This abstraction allows the application layer to remain independent of the specific monitoring implementation (e.g., Prometheus).
// Metrics 定义了收集业务指标的接口。
type Metrics interface {
	// RecordEvaluation records one student evaluation and its resulting level.
	RecordEvaluation(level string, duration time.Duration)

	// RecordValidationFailure records a rejected config or metrics payload.
	RecordValidationFailure(source string)

	// RecordBatch records the size and outcome of a batch evaluation.
	RecordBatch(size, failed int, duration time.Duration)

	// RecordUpload records an ingested file.
	RecordUpload(uploadType string, processed, skipped int)

	// RecordAlert records a notification attempt.
	RecordAlert(channel string, success bool)

	// RecordCacheAccess records a cache hit or miss.
	// RecordCacheAccess 记录缓存命中或未命中。
	RecordCacheAccess(cacheType string, hit bool)

	// RecordRateLimitHit records an event when a rate limit is triggered.
	RecordRateLimitHit(scope string)

	// RecordDBQuery records the duration of a database query.
	RecordDBQuery(operation string, duration time.Duration)

	// RecordEventPublish records a published (or failed) domain event.
	RecordEventPublish(eventType string, success bool)
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

func (NoopMetrics) RecordEvaluation(string, time.Duration) {}
func (NoopMetrics) RecordValidationFailure(string)         {}
func (NoopMetrics) RecordBatch(int, int, time.Duration)    {}
func (NoopMetrics) RecordUpload(string, int, int)          {}
func (NoopMetrics) RecordAlert(string, bool)               {}
func (NoopMetrics) RecordCacheAccess(string, bool)         {}
func (NoopMetrics) RecordRateLimitHit(string)              {}
func (NoopMetrics) RecordDBQuery(string, time.Duration)    {}
func (NoopMetrics) RecordEventPublish(string, bool)        {}
