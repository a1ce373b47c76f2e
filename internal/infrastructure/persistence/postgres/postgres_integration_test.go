//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

func TestRepositories_Postgres(t *testing.T) {
	if os.Getenv("SKIP_DOCKER_TESTS") == "true" {
		t.Skip("Skipping Docker-dependent tests")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("risk"),
		tcpostgres.WithUsername("risk"),
		tcpostgres.WithPassword("risk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	log := logger.NewNoopLogger()

	settings := NewSettingsRepository(db, log)
	s, err := settings.Replace(ctx, models.DefaultThresholds(), "system")
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Version)

	students := NewStudentRepository(db, nil, log)
	pct := 55.0
	_, err = students.ApplyUpdates(ctx, []repository.StudentUpdate{{StudentID: "S1", Name: "Asha", AttendancePct: &pct}})
	require.NoError(t, err)
	require.NoError(t, students.UpdateRisk(ctx, []models.RiskResult{{StudentID: "S1", RiskLevel: models.RiskLevelMedium, RiskScore: 0.4}}))

	got, err := students.FindByID(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, models.RiskLevelMedium, got.RiskLevel)

	counselors := NewCounselorRepository(db, log)
	now := time.Now().UTC()
	require.NoError(t, counselors.Create(ctx, &models.Counselor{ID: uuid.NewString(), Name: "A", Email: "a@school.edu", CreatedAt: now, UpdatedAt: now}))
	err = counselors.Create(ctx, &models.Counselor{ID: uuid.NewString(), Name: "B", Email: "a@school.edu", CreatedAt: now, UpdatedAt: now})
	assert.Equal(t, 409, errors.StatusOf(err))
}
