package service

import (
	"context"
	"time"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
)

//go:generate mockery --name EventPublisher --output mocks --outpkg mocks
// EventPublisher delivers domain events to the message bus.
// EventPublisher 将领域事件投递到消息总线。
type EventPublisher interface {
	// Publish sends one event. Implementations must be safe for concurrent use.
	Publish(ctx context.Context, event models.Event) error

	// Close flushes pending events and releases the underlying connection.
	Close() error
}

// Delivery channels. A notifier's channel decides which contact address it uses.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// AlertMessage is a single notification addressed to one contact.
type AlertMessage struct {
	StudentID string
	ToName    string
	ToEmail   string
	ToPhone   string
	Subject   string
	Body      string
	// Text is the short form sent where a full body does not fit (SMS).
	Text string
}

// Recipient returns the address msg is delivered to on channel, or "" when
// the contact has none for it.
func (m AlertMessage) Recipient(channel string) string {
	switch channel {
	case ChannelEmail:
		return m.ToEmail
	case ChannelSMS:
		return m.ToPhone
	}
	return ""
}

//go:generate mockery --name Notifier --output mocks --outpkg mocks
// Notifier sends an alert message over one channel.
type Notifier interface {
	Notify(ctx context.Context, msg AlertMessage) error
	// Channel is ChannelEmail or ChannelSMS.
	Channel() string
}

// Tracer wraps an application operation in a span.
type Tracer interface {
	Trace(ctx context.Context, operation string, attrs map[string]interface{}, fn func(context.Context) error) error
}

// NoopTracer runs the operation without recording a span.
type NoopTracer struct{}

func (NoopTracer) Trace(ctx context.Context, _ string, _ map[string]interface{}, fn func(context.Context) error) error {
	return fn(ctx)
}

//go:generate mockery --name SettingsCache --output mocks --outpkg mocks
// SettingsCache caches the active ThresholdConfig.
type SettingsCache interface {
	// Get returns the cached config and true, or false on a miss.
	Get(ctx context.Context) (*models.ThresholdConfig, bool, error)
	Set(ctx context.Context, cfg models.ThresholdConfig) error
	Invalidate(ctx context.Context) error
}

//go:generate mockery --name RateLimitService --output mocks --outpkg mocks
// RateLimitService defines the interface for checking rate limits.
type RateLimitService interface {
	// Allow consumes one request from the bucket identified by scope and identifier.
	// It returns whether the request is allowed, the remaining budget and when the bucket is full again.
	Allow(ctx context.Context, scope, identifier string, limitPerMinute int) (bool, int, time.Time, error)

	// ResetLimit clears the bucket for an identifier.
	ResetLimit(ctx context.Context, scope, identifier string) error
}
