package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
)

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates the upload history store.
func NewUploadRepository(db *gorm.DB) repository.UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Save(ctx context.Context, batch *models.UploadBatch) error {
	rec := uploadRecord{
		BatchID:    batch.BatchID,
		Type:       string(batch.Type),
		Processed:  batch.Processed,
		Skipped:    batch.Skipped,
		Students:   batch.Students,
		UploadedAt: batch.UploadedAt,
	}
	return mapDBErr(r.db.WithContext(ctx).Create(&rec).Error, "upload batch")
}

func (r *uploadRepository) ListRecent(ctx context.Context, limit int) ([]*models.UploadBatch, error) {
	var recs []uploadRecord
	if err := r.db.WithContext(ctx).Order("uploaded_at desc").Limit(limit).Find(&recs).Error; err != nil {
		return nil, mapDBErr(err, "upload batches")
	}
	out := make([]*models.UploadBatch, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out, nil
}
