package postgres

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// CounselorRepoImpl implements CounselorRepository using gorm.
type CounselorRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewCounselorRepository creates a new gorm-based counselor repository instance.
func NewCounselorRepository(db *gorm.DB, log logger.Logger) repository.CounselorRepository {
	return &CounselorRepoImpl{
		db:     db,
		logger: log.WithComponent("counselor_repo"),
	}
}

// Create inserts a new counselor. A duplicate e-mail is a conflict.
func (r *CounselorRepoImpl) Create(ctx context.Context, counselor *models.Counselor) error {
	if err := r.db.WithContext(ctx).Create(newCounselorRecord(counselor)).Error; err != nil {
		r.logger.Error(ctx, "Failed to create counselor", err, logger.Fields{"counselor_id": counselor.ID})
		return mapDBErr(err, "counselor")
	}
	return nil
}

// FindByID retrieves a counselor by its identifier.
func (r *CounselorRepoImpl) FindByID(ctx context.Context, id string) (*models.Counselor, error) {
	var rec counselorRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound("counselor", id)
		}
		return nil, mapDBErr(err, "counselor")
	}
	return rec.toModel(), nil
}

// List returns all counselors ordered by name.
func (r *CounselorRepoImpl) List(ctx context.Context) ([]*models.Counselor, error) {
	var recs []counselorRecord
	if err := r.db.WithContext(ctx).Order("name").Find(&recs).Error; err != nil {
		return nil, mapDBErr(err, "counselors")
	}
	out := make([]*models.Counselor, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out, nil
}

// Update modifies an existing counselor record.
func (r *CounselorRepoImpl) Update(ctx context.Context, counselor *models.Counselor) error {
	result := r.db.WithContext(ctx).
		Model(&counselorRecord{}).
		Where("id = ?", counselor.ID).
		Updates(map[string]interface{}{
			"name":       counselor.Name,
			"email":      counselor.Email,
			"phone":      counselor.Phone,
			"department": counselor.Department,
			"updated_at": counselor.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Error(ctx, "Failed to update counselor", result.Error, logger.Fields{"counselor_id": counselor.ID})
		return mapDBErr(result.Error, "counselor")
	}
	if result.RowsAffected == 0 {
		r.logger.Warn(ctx, "Counselor not found for update", logger.Fields{"counselor_id": counselor.ID})
		return errors.ErrNotFound("counselor", counselor.ID)
	}
	return nil
}

// Delete removes a counselor record.
func (r *CounselorRepoImpl) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&counselorRecord{})
	if result.Error != nil {
		r.logger.Error(ctx, "Failed to delete counselor", result.Error, logger.Fields{"counselor_id": id})
		return mapDBErr(result.Error, "counselor")
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound("counselor", id)
	}
	return nil
}
