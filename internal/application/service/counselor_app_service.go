package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/utils"
)

// CounselorAppService manages counselors through the repository.
// CounselorAppService 辅导员管理应用服务接口。
type CounselorAppService interface {
	Create(ctx context.Context, counselor *models.Counselor) (*models.Counselor, error)
	Get(ctx context.Context, id string) (*models.Counselor, error)
	List(ctx context.Context) ([]*models.Counselor, error)
	// Update replaces every editable field of the counselor.
	Update(ctx context.Context, id string, counselor *models.Counselor) (*models.Counselor, error)
	Delete(ctx context.Context, id string) error
}

type counselorAppServiceImpl struct {
	repo   repository.CounselorRepository
	logger logger.Logger
}

// NewCounselorAppService creates a new CounselorAppService.
func NewCounselorAppService(repo repository.CounselorRepository, log logger.Logger) CounselorAppService {
	return &counselorAppServiceImpl{repo: repo, logger: log.WithComponent("counselors")}
}

func (s *counselorAppServiceImpl) Create(ctx context.Context, counselor *models.Counselor) (*models.Counselor, error) {
	normalizeCounselor(counselor)
	if err := utils.ValidateStruct(counselor); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	counselor.ID = uuid.NewString()
	counselor.CreatedAt = now
	counselor.UpdatedAt = now

	if err := s.repo.Create(ctx, counselor); err != nil {
		s.logger.Error(ctx, "failed to create counselor", err)
		return nil, internalError("failed to create counselor", err)
	}
	s.logger.Info(ctx, "counselor created", logger.Fields{"counselor_id": counselor.ID})
	return counselor, nil
}

func (s *counselorAppServiceImpl) Get(ctx context.Context, id string) (*models.Counselor, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Invalid("id", "must be a valid UUID")
	}
	counselor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, internalError("failed to get counselor", err)
	}
	return counselor, nil
}

func (s *counselorAppServiceImpl) List(ctx context.Context) ([]*models.Counselor, error) {
	counselors, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError("failed to list counselors", err)
	}
	return counselors, nil
}

func (s *counselorAppServiceImpl) Update(ctx context.Context, id string, counselor *models.Counselor) (*models.Counselor, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	normalizeCounselor(counselor)
	if err := utils.ValidateStruct(counselor); err != nil {
		return nil, err
	}

	existing.Name = counselor.Name
	existing.Email = counselor.Email
	existing.Phone = counselor.Phone
	existing.Department = counselor.Department
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error(ctx, "failed to update counselor", err, logger.Fields{"counselor_id": id})
		return nil, internalError("failed to update counselor", err)
	}
	return existing, nil
}

func (s *counselorAppServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Invalid("id", "must be a valid UUID")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError("failed to delete counselor", err)
	}
	s.logger.Info(ctx, "counselor deleted", logger.Fields{"counselor_id": id})
	return nil
}

func normalizeCounselor(c *models.Counselor) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Department = strings.TrimSpace(c.Department)
}
