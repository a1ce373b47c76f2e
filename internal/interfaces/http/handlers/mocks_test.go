package handlers

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
)

type MockSettingsAppService struct {
	mock.Mock
}

func (m *MockSettingsAppService) GetThresholds(ctx context.Context) (models.ThresholdConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.ThresholdConfig), args.Error(1)
}

func (m *MockSettingsAppService) GetSettings(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

func (m *MockSettingsAppService) ReplaceThresholds(ctx context.Context, cfg models.ThresholdConfig, updatedBy string) (*models.Settings, error) {
	args := m.Called(ctx, cfg, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

type MockRiskAppService struct {
	mock.Mock
}

func (m *MockRiskAppService) EvaluateBatch(ctx context.Context, metrics []models.StudentMetrics) (*dto.EvaluateResponse, error) {
	args := m.Called(ctx, metrics)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.EvaluateResponse), args.Error(1)
}

func (m *MockRiskAppService) ListRisks(ctx context.Context, filter models.StudentFilter) ([]models.StudentRisk, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudentRisk), args.Error(1)
}

func (m *MockRiskAppService) GetStudent(ctx context.Context, studentID string) (*models.StudentDetails, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudentDetails), args.Error(1)
}

type MockUploadAppService struct {
	mock.Mock
}

func (m *MockUploadAppService) Ingest(ctx context.Context, uploadType constants.UploadType, r io.Reader) (*models.UploadBatch, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, uploadType, string(body))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadBatch), args.Error(1)
}

func (m *MockUploadAppService) RecentBatches(ctx context.Context, limit int) ([]*models.UploadBatch, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UploadBatch), args.Error(1)
}

type MockReportAppService struct {
	mock.Mock
}

func (m *MockReportAppService) Summary(ctx context.Context) (*models.RiskReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RiskReport), args.Error(1)
}

func (m *MockReportAppService) Weekly(ctx context.Context) ([]models.WeeklyReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WeeklyReport), args.Error(1)
}

func (m *MockReportAppService) ExportCSV(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	if s, ok := args.Get(0).(string); ok && args.Error(1) == nil {
		_, _ = io.WriteString(w, s)
	}
	return args.Error(1)
}

type MockAlertAppService struct {
	mock.Mock
}

func (m *MockAlertAppService) SendAlerts(ctx context.Context) (*models.AlertSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AlertSummary), args.Error(1)
}

func (m *MockAlertAppService) AddContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	args := m.Called(ctx, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockAlertAppService) RemoveContact(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCounselorAppService struct {
	mock.Mock
}

func (m *MockCounselorAppService) Create(ctx context.Context, counselor *models.Counselor) (*models.Counselor, error) {
	args := m.Called(ctx, counselor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Counselor), args.Error(1)
}

func (m *MockCounselorAppService) Get(ctx context.Context, id string) (*models.Counselor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Counselor), args.Error(1)
}

func (m *MockCounselorAppService) List(ctx context.Context) ([]*models.Counselor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Counselor), args.Error(1)
}

func (m *MockCounselorAppService) Update(ctx context.Context, id string, counselor *models.Counselor) (*models.Counselor, error) {
	args := m.Called(ctx, id, counselor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Counselor), args.Error(1)
}

func (m *MockCounselorAppService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
