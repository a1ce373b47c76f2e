package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// newTestDB opens a private in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func ptr[T any](v T) *T { return &v }

func TestNewDBConnection_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:      "sqlite",
		SQLitePath:  fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxConns:    4,
		AutoMigrate: true,
	}
	conn, err := NewDBConnection(context.Background(), cfg, logger.NewNoopLogger())
	require.NoError(t, err)
	defer conn.Close()

	info, err := conn.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", info["status"])
	assert.True(t, conn.DB().Migrator().HasTable(&studentRecord{}))
}

func TestNewDBConnection_UnsupportedDriver(t *testing.T) {
	_, err := NewDBConnection(context.Background(), &config.DatabaseConfig{Driver: "oracle"}, logger.NewNoopLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDatabaseOperation)
}

func TestStudentRepository_ApplyUpdatesMergesFields(t *testing.T) {
	repo := NewStudentRepository(newTestDB(t), nil, logger.NewNoopLogger())
	ctx := context.Background()

	n, err := repo.ApplyUpdates(ctx, []repository.StudentUpdate{
		{StudentID: "S1", Name: "Asha", ClassName: ptr("10A"), AttendancePct: ptr(82.5)},
		{StudentID: "S2", Name: "Ben", AttendancePct: ptr(40.0)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A later exam upload must not clobber attendance.
	n, err = repo.ApplyUpdates(ctx, []repository.StudentUpdate{
		{StudentID: "S1", AvgScore: ptr(71.0)},
		{StudentID: "S3", Name: "Chen", FeeOverdueDays: ptr(12)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	s1, err := repo.FindByID(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", s1.Name)
	assert.Equal(t, "10A", s1.ClassName)
	require.NotNil(t, s1.AttendancePct)
	assert.Equal(t, 82.5, *s1.AttendancePct)
	require.NotNil(t, s1.AvgScore)
	assert.Equal(t, 71.0, *s1.AvgScore)
	assert.Nil(t, s1.FeeOverdueDays, "fee signal was never ingested")

	s3, err := repo.FindByID(ctx, "S3")
	require.NoError(t, err)
	assert.Nil(t, s3.AttendancePct)
	assert.Nil(t, s3.AvgScore)
	require.NotNil(t, s3.FeeOverdueDays)
	assert.Equal(t, 12, *s3.FeeOverdueDays)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestStudentRepository_FindByID_NotFound(t *testing.T) {
	repo := NewStudentRepository(newTestDB(t), nil, logger.NewNoopLogger())
	_, err := repo.FindByID(context.Background(), "nobody")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestStudentRepository_ListAndUpdateRisk(t *testing.T) {
	repo := NewStudentRepository(newTestDB(t), nil, logger.NewNoopLogger())
	ctx := context.Background()

	_, err := repo.ApplyUpdates(ctx, []repository.StudentUpdate{
		{StudentID: "S2", Name: "Ben", ClassName: ptr("10A")},
		{StudentID: "S1", Name: "Asha", ClassName: ptr("10A")},
		{StudentID: "S3", Name: "Chen", ClassName: ptr("10B")},
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateRisk(ctx, []models.RiskResult{
		{StudentID: "S1", RiskLevel: models.RiskLevelHigh, RiskScore: 0.8},
		{StudentID: "S2", RiskLevel: models.RiskLevelLow, RiskScore: 0.1},
	}))

	list, err := repo.List(ctx, models.StudentFilter{ClassName: "10A"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "S1", list[0].StudentID)
	assert.Equal(t, models.RiskLevelHigh, list[0].RiskLevel)
	assert.Equal(t, 0.8, list[0].RiskScore)

	high, err := repo.List(ctx, models.StudentFilter{RiskLevel: models.RiskLevelHigh})
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "S1", high[0].StudentID)
}

func TestSettingsRepository_GetReplace(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), logger.NewNoopLogger())
	ctx := context.Background()

	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	first, err := repo.Replace(ctx, models.DefaultThresholds(), "system")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)

	cfg := models.DefaultThresholds()
	cfg.ScoreMedium = 65
	second, err := repo.Replace(ctx, cfg, "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, cfg, stored.Thresholds)
	assert.Equal(t, "admin", stored.UpdatedBy)
	assert.Equal(t, int64(2), stored.Version)
}

func TestContactRepository(t *testing.T) {
	repo := NewContactRepository(newTestDB(t), logger.NewNoopLogger())
	ctx := context.Background()

	c := &models.Contact{ID: uuid.NewString(), StudentID: "S1", Type: constants.ContactTypeParent, Name: "Parent", Email: "p@example.com", CreatedAt: time.Now()}
	require.NoError(t, repo.Save(ctx, c))

	list, err := repo.ListByStudent(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, constants.ContactTypeParent, list[0].Type)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.True(t, errors.IsNotFoundError(repo.Delete(ctx, c.ID)))
}

func TestCounselorRepository_CRUD(t *testing.T) {
	repo := NewCounselorRepository(newTestDB(t), logger.NewNoopLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	c := &models.Counselor{ID: uuid.NewString(), Name: "Meera", Email: "meera@school.edu", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, c))

	dup := &models.Counselor{ID: uuid.NewString(), Name: "Other", Email: "meera@school.edu", CreatedAt: now, UpdatedAt: now}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, 409, errors.StatusOf(err))

	c.Department = "Guidance"
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Guidance", got.Department)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.FindByID(ctx, c.ID)
	assert.True(t, errors.IsNotFoundError(err))
	assert.True(t, errors.IsNotFoundError(repo.Update(ctx, c)))
}

func TestUploadRepository_ListRecent(t *testing.T) {
	repo := NewUploadRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, &models.UploadBatch{
			BatchID:    uuid.NewString(),
			Type:       constants.UploadTypeAttendance,
			Processed:  i,
			UploadedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 2, recent[0].Processed)
	assert.Equal(t, 1, recent[1].Processed)
}

func TestObservationRepository_ListSince(t *testing.T) {
	repo := NewObservationRepository(newTestDB(t))
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, repo.SaveObservations(ctx, []models.Observation{
		{StudentID: "S1", Signal: models.SignalAttendance, Date: day(20), Value: 1},
		{StudentID: "S1", Signal: models.SignalAttendance, Date: day(25), Value: 0},
		{StudentID: "S1", Signal: models.SignalExam, Date: day(28), Value: 64},
		{StudentID: "S2", Signal: models.SignalExam, Date: day(24), Value: 80},
	}))
	require.NoError(t, repo.SaveObservations(ctx, nil))

	got, err := repo.ListSince(ctx, day(24))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "S1", got[0].StudentID)
	assert.Equal(t, day(25), got[0].Date)
	assert.Equal(t, models.SignalExam, got[1].Signal)
	assert.Equal(t, 64.0, got[1].Value)
	assert.Equal(t, "S2", got[2].StudentID)
}
