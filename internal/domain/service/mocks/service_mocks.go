package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
)

// MockEventPublisher is a mock implementation of service.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockNotifier is a mock implementation of service.Notifier
// ChannelName defaults to e-mail.
type MockNotifier struct {
	mock.Mock
	ChannelName string
}

func (m *MockNotifier) Notify(ctx context.Context, msg service.AlertMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockNotifier) Channel() string {
	if m.ChannelName == "" {
		return service.ChannelEmail
	}
	return m.ChannelName
}

// MockSettingsCache is a mock implementation of service.SettingsCache
type MockSettingsCache struct {
	mock.Mock
}

func (m *MockSettingsCache) Get(ctx context.Context) (*models.ThresholdConfig, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.ThresholdConfig), args.Bool(1), args.Error(2)
}

func (m *MockSettingsCache) Set(ctx context.Context, cfg models.ThresholdConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockSettingsCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRateLimitService is a mock implementation of service.RateLimitService
type MockRateLimitService struct {
	mock.Mock
}

func (m *MockRateLimitService) Allow(ctx context.Context, scope, identifier string, limitPerMinute int) (bool, int, time.Time, error) {
	args := m.Called(ctx, scope, identifier, limitPerMinute)
	return args.Bool(0), args.Int(1), args.Get(2).(time.Time), args.Error(3)
}

func (m *MockRateLimitService) ResetLimit(ctx context.Context, scope, identifier string) error {
	args := m.Called(ctx, scope, identifier)
	return args.Error(0)
}

var (
	_ service.EventPublisher   = (*MockEventPublisher)(nil)
	_ service.Notifier         = (*MockNotifier)(nil)
	_ service.SettingsCache    = (*MockSettingsCache)(nil)
	_ service.RateLimitService = (*MockRateLimitService)(nil)
)
