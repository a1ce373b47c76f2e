// Package constants defines system-wide constants for the student-risk service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type used for values stored in a context.Context
type ContextKey string

const (
	// ContextKeyRequestID carries the request correlation ID
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID carries the OpenTelemetry trace ID
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyLogger carries a request-scoped logger
	ContextKeyLogger ContextKey = "logger"

	// ContextKeyClaims carries verified admin token claims
	ContextKeyClaims ContextKey = "claims"
)

// ================================================================================
// Upload Types
// ================================================================================

// UploadType identifies the kind of metrics file being ingested
type UploadType string

const (
	// UploadTypeAttendance is a per-day presence file
	UploadTypeAttendance UploadType = "attendance"

	// UploadTypeExamResults is a per-exam score file
	UploadTypeExamResults UploadType = "exam_results"

	// UploadTypeFeePayments is a per-invoice fee file
	UploadTypeFeePayments UploadType = "fee_payments"
)

// Valid reports whether t is a known upload type.
func (t UploadType) Valid() bool {
	switch t {
	case UploadTypeAttendance, UploadTypeExamResults, UploadTypeFeePayments:
		return true
	}
	return false
}

// ================================================================================
// Event Types
// ================================================================================

// EventType names a domain event published to the message bus
type EventType string

const (
	EventRiskEvaluated   EventType = "risk.evaluated"
	EventSettingsUpdated EventType = "settings.updated"
	EventAlertSent       EventType = "alert.sent"
	EventUploadProcessed EventType = "upload.processed"
)

// ================================================================================
// Contact Types
// ================================================================================

// ContactType distinguishes who receives an alert for a student
type ContactType string

const (
	ContactTypeParent ContactType = "parent"
	ContactTypeMentor ContactType = "mentor"
)

// ================================================================================
// Defaults
// ================================================================================

const (
	// DefaultBatchWorkers bounds parallel evaluations per batch
	DefaultBatchWorkers = 8

	// DefaultSettingsCacheTTL is how long the active thresholds stay cached
	DefaultSettingsCacheTTL = 5 * time.Minute

	// ReportTopN is the number of students listed in the at-risk report table
	ReportTopN = 15

	// MaxUploadBytes caps a single uploaded file
	MaxUploadBytes = 16 << 20

	// AdminRole is the role claim required on admin endpoints
	AdminRole = "admin"

	// ServiceName is used for tracing and metrics namespaces
	ServiceName = "student-risk"
)
