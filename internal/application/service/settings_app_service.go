package service

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// SettingsAppService owns the active ThresholdConfig.
// SettingsAppService 阈值配置应用服务接口。
type SettingsAppService interface {
	// GetThresholds returns the active config, installing the defaults on first use.
	// GetThresholds 获取当前生效的阈值配置。
	GetThresholds(ctx context.Context) (models.ThresholdConfig, error)

	// GetSettings returns the stored settings with version metadata, bypassing the cache.
	GetSettings(ctx context.Context) (*models.Settings, error)

	// ReplaceThresholds validates cfg and stores it as the complete new config.
	// ReplaceThresholds 校验并整体替换阈值配置。
	ReplaceThresholds(ctx context.Context, cfg models.ThresholdConfig, updatedBy string) (*models.Settings, error)
}

type settingsAppServiceImpl struct {
	repo      repository.SettingsRepository
	cache     service.SettingsCache
	publisher service.EventPublisher
	metrics   service.Metrics
	logger    logger.Logger
	group     singleflight.Group

	// mu orders cache fills against replacements. generation is bumped on
	// every replace so a fill that read the store before it is dropped.
	mu         sync.Mutex
	generation uint64
}

// NewSettingsAppService creates a new SettingsAppService. cache and publisher may be nil.
func NewSettingsAppService(
	repo repository.SettingsRepository,
	cache service.SettingsCache,
	publisher service.EventPublisher,
	metrics service.Metrics,
	log logger.Logger,
) SettingsAppService {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	return &settingsAppServiceImpl{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		logger:    log.WithComponent("settings"),
	}
}

func (s *settingsAppServiceImpl) GetThresholds(ctx context.Context) (models.ThresholdConfig, error) {
	if s.cache != nil {
		cfg, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn(ctx, "settings cache read failed, falling back to store", logger.Fields{"error": err.Error()})
		} else if ok {
			s.metrics.RecordCacheAccess("settings", true)
			return *cfg, nil
		}
		s.metrics.RecordCacheAccess("settings", false)
	}

	// Concurrent misses share a single store round trip.
	v, err, _ := s.group.Do("thresholds", func() (interface{}, error) {
		s.mu.Lock()
		gen := s.generation
		s.mu.Unlock()

		settings, err := s.loadOrInstallDefaults(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.fillCache(ctx, gen, settings.Thresholds)
		}
		return settings.Thresholds, nil
	})
	if err != nil {
		return models.ThresholdConfig{}, err
	}
	return v.(models.ThresholdConfig), nil
}

// fillCache stores cfg unless a replace happened since gen was taken.
func (s *settingsAppServiceImpl) fillCache(ctx context.Context, gen uint64, cfg models.ThresholdConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug(ctx, "thresholds replaced during load, not caching stale config")
		return
	}
	if err := s.cache.Set(ctx, cfg); err != nil {
		s.logger.Warn(ctx, "settings cache write failed", logger.Fields{"error": err.Error()})
	}
}

func (s *settingsAppServiceImpl) GetSettings(ctx context.Context) (*models.Settings, error) {
	return s.loadOrInstallDefaults(ctx)
}

func (s *settingsAppServiceImpl) loadOrInstallDefaults(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to load settings", err)
		return nil, internalError("failed to load settings", err)
	}
	if settings != nil {
		return settings, nil
	}

	s.logger.Info(ctx, "no settings stored, installing defaults")
	settings, err = s.repo.Replace(ctx, models.DefaultThresholds(), "system")
	if err != nil {
		s.logger.Error(ctx, "failed to install default settings", err)
		return nil, internalError("failed to install default settings", err)
	}
	return settings, nil
}

func (s *settingsAppServiceImpl) ReplaceThresholds(ctx context.Context, cfg models.ThresholdConfig, updatedBy string) (*models.Settings, error) {
	if err := service.ValidateThresholds(cfg); err != nil {
		s.metrics.RecordValidationFailure("settings")
		s.logger.Info(ctx, "rejected threshold update", logger.Fields{"error": err.Error(), "updated_by": updatedBy})
		return nil, err
	}

	settings, err := s.repo.Replace(ctx, cfg, updatedBy)
	if err != nil {
		s.logger.Error(ctx, "failed to store settings", err, logger.Fields{"updated_by": updatedBy})
		return nil, internalError("failed to store settings", err)
	}

	s.mu.Lock()
	s.generation++
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn(ctx, "settings cache invalidation failed", logger.Fields{"error": err.Error()})
		}
	}
	s.mu.Unlock()
	s.group.Forget("thresholds")

	publish(ctx, s.publisher, s.metrics, s.logger,
		models.NewEvent(constants.EventSettingsUpdated, "settings", settings))

	s.logger.Info(ctx, "thresholds replaced", logger.Fields{
		"version":    settings.Version,
		"updated_by": updatedBy,
	})
	return settings, nil
}

// internalError keeps AppErrors intact and wraps anything else as internal_error.
func internalError(message string, err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	return errors.ErrInternal(message).WithCause(err)
}

// publish sends an event if a publisher is configured. Failures are logged
// and counted but never fail the calling operation.
func publish(ctx context.Context, p service.EventPublisher, m service.Metrics, log logger.Logger, event models.Event) {
	if p == nil {
		return
	}
	err := p.Publish(ctx, event)
	m.RecordEventPublish(string(event.Type), err == nil)
	if err != nil {
		log.Warn(ctx, "failed to publish event", logger.Fields{
			"event_type": string(event.Type),
			"event_id":   event.ID,
			"error":      err.Error(),
		})
	}
}
