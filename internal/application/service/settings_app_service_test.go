package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	repomocks "github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository/mocks"
	svcmocks "github.com/Aditya-max148/student-risk-dashboard/internal/domain/service/mocks"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

func storedSettings(cfg models.ThresholdConfig, version int64) *models.Settings {
	return &models.Settings{Thresholds: cfg, Version: version, UpdatedBy: "admin", UpdatedAt: time.Now()}
}

func TestSettingsAppService_GetThresholds_InstallsDefaults(t *testing.T) {
	repo := new(repomocks.MockSettingsRepository)
	repo.On("Get", mock.Anything).Return(nil, nil).Once()
	repo.On("Replace", mock.Anything, models.DefaultThresholds(), "system").
		Return(storedSettings(models.DefaultThresholds(), 1), nil).Once()

	svc := NewSettingsAppService(repo, nil, nil, nil, logger.NewNoopLogger())
	cfg, err := svc.GetThresholds(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.DefaultThresholds(), cfg)
	repo.AssertExpectations(t)
}

func TestSettingsAppService_GetThresholds_CacheHit(t *testing.T) {
	repo := new(repomocks.MockSettingsRepository)
	cache := new(svcmocks.MockSettingsCache)
	cached := models.DefaultThresholds()
	cached.AttendanceMedium = 80
	cache.On("Get", mock.Anything).Return(&cached, true, nil).Once()

	svc := NewSettingsAppService(repo, cache, nil, nil, logger.NewNoopLogger())
	cfg, err := svc.GetThresholds(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 80.0, cfg.AttendanceMedium)
	repo.AssertNotCalled(t, "Get", mock.Anything)
	cache.AssertExpectations(t)
}

func TestSettingsAppService_GetThresholds_CacheMissFillsCache(t *testing.T) {
	repo := new(repomocks.MockSettingsRepository)
	cache := new(svcmocks.MockSettingsCache)
	stored := models.DefaultThresholds()
	stored.ScoreMedium = 65

	cache.On("Get", mock.Anything).Return(nil, false, nil).Once()
	repo.On("Get", mock.Anything).Return(storedSettings(stored, 4), nil).Once()
	cache.On("Set", mock.Anything, stored).Return(nil).Once()

	svc := NewSettingsAppService(repo, cache, nil, nil, logger.NewNoopLogger())
	cfg, err := svc.GetThresholds(context.Background())

	require.NoError(t, err)
	assert.Equal(t, stored, cfg)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSettingsAppService_GetThresholds_CacheErrorFallsBack(t *testing.T) {
	repo := new(repomocks.MockSettingsRepository)
	cache := new(svcmocks.MockSettingsCache)

	cache.On("Get", mock.Anything).Return(nil, false, stderrors.New("redis down")).Once()
	cache.On("Set", mock.Anything, mock.Anything).Return(stderrors.New("redis down")).Once()
	repo.On("Get", mock.Anything).Return(storedSettings(models.DefaultThresholds(), 2), nil).Once()

	svc := NewSettingsAppService(repo, cache, nil, nil, logger.NewNoopLogger())
	cfg, err := svc.GetThresholds(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.DefaultThresholds(), cfg)
}

func TestSettingsAppService_GetThresholds_StoreError(t *testing.T) {
	repo := new(repomocks.MockSettingsRepository)
	repo.On("Get", mock.Anything).Return(nil, stderrors.New("connection refused")).Once()

	svc := NewSettingsAppService(repo, nil, nil, nil, logger.NewNoopLogger())
	_, err := svc.GetThresholds(context.Background())

	require.Error(t, err)
	assert.Equal(t, 500, errors.StatusOf(err))
}

func TestSettingsAppService_ReplaceThresholds_RejectsInvalid(t *testing.T) {
	repo := new(repomocks.MockSettingsRepository)
	cache := new(svcmocks.MockSettingsCache)
	publisher := new(svcmocks.MockEventPublisher)

	cfg := models.DefaultThresholds()
	cfg.AttendanceLow = 80
	cfg.AttendanceMedium = 60

	svc := NewSettingsAppService(repo, cache, publisher, nil, logger.NewNoopLogger())
	_, err := svc.ReplaceThresholds(context.Background(), cfg, "admin")

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	repo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSettingsAppService_ReplaceThresholds_Success(t *testing.T) {
	repo := new(repomocks.MockSettingsRepository)
	cache := new(svcmocks.MockSettingsCache)
	publisher := new(svcmocks.MockEventPublisher)

	cfg := models.DefaultThresholds()
	cfg.FeeDaysOverdueHigh = 45

	repo.On("Replace", mock.Anything, cfg, "admin").Return(storedSettings(cfg, 7), nil).Once()
	cache.On("Invalidate", mock.Anything).Return(nil).Once()
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e models.Event) bool {
		return e.Type == constants.EventSettingsUpdated
	})).Return(nil).Once()

	svc := NewSettingsAppService(repo, cache, publisher, nil, logger.NewNoopLogger())
	settings, err := svc.ReplaceThresholds(context.Background(), cfg, "admin")

	require.NoError(t, err)
	assert.Equal(t, int64(7), settings.Version)
	assert.Equal(t, 45.0, settings.Thresholds.FeeDaysOverdueHigh)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSettingsAppService_ReplaceThresholds_PublishFailureIsNotFatal(t *testing.T) {
	repo := new(repomocks.MockSettingsRepository)
	publisher := new(svcmocks.MockEventPublisher)

	cfg := models.DefaultThresholds()
	repo.On("Replace", mock.Anything, cfg, "admin").Return(storedSettings(cfg, 2), nil).Once()
	publisher.On("Publish", mock.Anything, mock.Anything).Return(stderrors.New("broker unavailable")).Once()

	svc := NewSettingsAppService(repo, nil, publisher, nil, logger.NewNoopLogger())
	_, err := svc.ReplaceThresholds(context.Background(), cfg, "admin")

	assert.NoError(t, err)
}

// gatedSettingsRepo blocks the first Get until release is closed.
type gatedSettingsRepo struct {
	mu      sync.Mutex
	current *models.Settings
	gets    int
	entered chan struct{}
	release chan struct{}
}

func (r *gatedSettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	r.mu.Lock()
	r.gets++
	first := r.gets == 1
	snapshot := *r.current
	r.mu.Unlock()
	if first {
		close(r.entered)
		<-r.release
	}
	return &snapshot, nil
}

func (r *gatedSettingsRepo) Replace(ctx context.Context, cfg models.ThresholdConfig, updatedBy string) (*models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = storedSettings(cfg, r.current.Version+1)
	out := *r.current
	return &out, nil
}

// memorySettingsCache is a single-slot in-process cache.
type memorySettingsCache struct {
	mu  sync.Mutex
	cfg *models.ThresholdConfig
}

func (c *memorySettingsCache) Get(ctx context.Context) (*models.ThresholdConfig, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg == nil {
		return nil, false, nil
	}
	out := *c.cfg
	return &out, true, nil
}

func (c *memorySettingsCache) Set(ctx context.Context, cfg models.ThresholdConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = &cfg
	return nil
}

func (c *memorySettingsCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = nil
	return nil
}

func TestSettingsAppService_ReplaceDuringLoadIsNotUndone(t *testing.T) {
	repo := &gatedSettingsRepo{
		current: storedSettings(models.DefaultThresholds(), 1),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	cache := &memorySettingsCache{}
	svc := NewSettingsAppService(repo, cache, nil, nil, logger.NewNoopLogger())
	ctx := context.Background()

	done := make(chan models.ThresholdConfig)
	go func() {
		cfg, err := svc.GetThresholds(ctx)
		assert.NoError(t, err)
		done <- cfg
	}()
	<-repo.entered

	updated := models.DefaultThresholds()
	updated.AttendanceMedium = 90
	updated.AttendanceLow = 80
	_, err := svc.ReplaceThresholds(ctx, updated, "admin")
	require.NoError(t, err)

	close(repo.release)
	stale := <-done
	assert.Equal(t, 75.0, stale.AttendanceMedium, "the load that started first still sees the old config")

	cfg, err := svc.GetThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90.0, cfg.AttendanceMedium)

	cached, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 90.0, cached.AttendanceMedium)
}
