package postgres

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

const settingsRowID = 1

type settingsRepository struct {
	db  *gorm.DB
	log logger.Logger
}

// NewSettingsRepository creates the single-row settings store.
func NewSettingsRepository(db *gorm.DB, log logger.Logger) repository.SettingsRepository {
	return &settingsRepository{
		db:  db,
		log: log.WithComponent("settings_repo"),
	}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var rec settingsRecord
	err := r.db.WithContext(ctx).Where("id = ?", settingsRowID).First(&rec).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // nothing stored yet; the caller installs defaults
		}
		r.log.Error(ctx, "Failed to load settings", err)
		return nil, mapDBErr(err, "settings")
	}
	return rec.toModel(), nil
}

// Replace overwrites every threshold and bumps the version under a row lock.
func (r *settingsRepository) Replace(ctx context.Context, cfg models.ThresholdConfig, updatedBy string) (*models.Settings, error) {
	var saved settingsRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current settingsRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", settingsRowID).
			First(&current).Error
		if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		saved = settingsRecord{
			ID:                   settingsRowID,
			AttendanceLow:        cfg.AttendanceLow,
			AttendanceMedium:     cfg.AttendanceMedium,
			ScoreLow:             cfg.ScoreLow,
			ScoreMedium:          cfg.ScoreMedium,
			FeeDaysOverdueMedium: cfg.FeeDaysOverdueMedium,
			FeeDaysOverdueHigh:   cfg.FeeDaysOverdueHigh,
			Version:              current.Version + 1,
			UpdatedBy:            updatedBy,
		}
		return tx.Save(&saved).Error
	})
	if err != nil {
		r.log.Error(ctx, "Failed to replace settings", err, logger.Fields{"updated_by": updatedBy})
		return nil, mapDBErr(err, "settings")
	}

	r.log.Info(ctx, "Settings replaced", logger.Fields{"version": saved.Version, "updated_by": updatedBy})
	return saved.toModel(), nil
}
