package repository

import (
	"context"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
)

//go:generate mockery --name SettingsRepository --output mocks --outpkg mocks
type SettingsRepository interface {
	// Get returns the stored settings. If none were ever saved it returns
	// (nil, nil) so the service layer can install the defaults.
	Get(ctx context.Context) (*models.Settings, error)

	// Replace stores cfg as the complete new configuration and bumps the version.
	Replace(ctx context.Context, cfg models.ThresholdConfig, updatedBy string) (*models.Settings, error)
}

//go:generate mockery --name UploadRepository --output mocks --outpkg mocks
type UploadRepository interface {
	Save(ctx context.Context, batch *models.UploadBatch) error
	// ListRecent returns the latest batches, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.UploadBatch, error)
}

// CounselorRepository 定义辅导员仓储接口
//
//go:generate mockery --name CounselorRepository --output mocks --outpkg mocks
type CounselorRepository interface {
	Create(ctx context.Context, counselor *models.Counselor) error
	FindByID(ctx context.Context, id string) (*models.Counselor, error)
	List(ctx context.Context) ([]*models.Counselor, error)
	Update(ctx context.Context, counselor *models.Counselor) error
	Delete(ctx context.Context, id string) error
}
