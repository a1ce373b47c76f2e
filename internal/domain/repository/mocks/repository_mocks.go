package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
)

// MockStudentRepository is a mock implementation of StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) ApplyUpdates(ctx context.Context, updates []repository.StudentUpdate) (int, error) {
	args := m.Called(ctx, updates)
	return args.Int(0), args.Error(1)
}

func (m *MockStudentRepository) FindByID(ctx context.Context, studentID string) (*models.Student, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Student), args.Error(1)
}

func (m *MockStudentRepository) UpdateRisk(ctx context.Context, results []models.RiskResult) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockStudentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockContactRepository is a mock implementation of ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Save(ctx context.Context, contact *models.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.Contact, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Contact), args.Error(1)
}

func (m *MockContactRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Replace(ctx context.Context, cfg models.ThresholdConfig, updatedBy string) (*models.Settings, error) {
	args := m.Called(ctx, cfg, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

// MockUploadRepository is a mock implementation of UploadRepository
type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) Save(ctx context.Context, batch *models.UploadBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockUploadRepository) ListRecent(ctx context.Context, limit int) ([]*models.UploadBatch, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UploadBatch), args.Error(1)
}

// MockCounselorRepository is a mock implementation of CounselorRepository
type MockCounselorRepository struct {
	mock.Mock
}

func (m *MockCounselorRepository) Create(ctx context.Context, counselor *models.Counselor) error {
	args := m.Called(ctx, counselor)
	return args.Error(0)
}

func (m *MockCounselorRepository) FindByID(ctx context.Context, id string) (*models.Counselor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Counselor), args.Error(1)
}

func (m *MockCounselorRepository) List(ctx context.Context) ([]*models.Counselor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Counselor), args.Error(1)
}

func (m *MockCounselorRepository) Update(ctx context.Context, counselor *models.Counselor) error {
	args := m.Called(ctx, counselor)
	return args.Error(0)
}

func (m *MockCounselorRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	_ repository.StudentRepository   = (*MockStudentRepository)(nil)
	_ repository.ContactRepository   = (*MockContactRepository)(nil)
	_ repository.SettingsRepository  = (*MockSettingsRepository)(nil)
	_ repository.UploadRepository    = (*MockUploadRepository)(nil)
	_ repository.CounselorRepository = (*MockCounselorRepository)(nil)
)

// MockObservationRepository is a mock implementation of ObservationRepository
type MockObservationRepository struct {
	mock.Mock
}

func (m *MockObservationRepository) SaveObservations(ctx context.Context, observations []models.Observation) error {
	args := m.Called(ctx, observations)
	return args.Error(0)
}

func (m *MockObservationRepository) ListSince(ctx context.Context, since time.Time) ([]models.Observation, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Observation), args.Error(1)
}
