package postgres

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
)

// Table rows are kept apart from the domain models so that the JSON shape
// of the API and the column layout can evolve independently.

type studentRecord struct {
	StudentID      string  `gorm:"primaryKey;size:64"`
	Name           string  `gorm:"size:255"`
	ClassName      string  `gorm:"size:64;index"`
	AttendancePct  *float64
	AvgScore       *float64
	FeeOverdueDays *int
	RiskLevel      string  `gorm:"size:16;index"`
	RiskScore      float64 `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (studentRecord) TableName() string { return "students" }

func (r *studentRecord) toModel() *models.Student {
	return &models.Student{
		StudentID:      r.StudentID,
		Name:           r.Name,
		ClassName:      r.ClassName,
		AttendancePct:  r.AttendancePct,
		AvgScore:       r.AvgScore,
		FeeOverdueDays: r.FeeOverdueDays,
		RiskLevel:      models.RiskLevel(r.RiskLevel),
		RiskScore:      r.RiskScore,
		UpdatedAt:      r.UpdatedAt,
	}
}

// settingsRecord is a single-row table; ID is always 1.
type settingsRecord struct {
	ID                   uint `gorm:"primaryKey"`
	AttendanceLow        float64
	AttendanceMedium     float64
	ScoreLow             float64
	ScoreMedium          float64
	FeeDaysOverdueMedium float64
	FeeDaysOverdueHigh   float64
	Version              int64
	UpdatedBy            string `gorm:"size:255"`
	UpdatedAt            time.Time
}

func (settingsRecord) TableName() string { return "settings" }

func (r *settingsRecord) toModel() *models.Settings {
	return &models.Settings{
		Thresholds: models.ThresholdConfig{
			AttendanceLow:        r.AttendanceLow,
			AttendanceMedium:     r.AttendanceMedium,
			ScoreLow:             r.ScoreLow,
			ScoreMedium:          r.ScoreMedium,
			FeeDaysOverdueMedium: r.FeeDaysOverdueMedium,
			FeeDaysOverdueHigh:   r.FeeDaysOverdueHigh,
		},
		Version:   r.Version,
		UpdatedBy: r.UpdatedBy,
		UpdatedAt: r.UpdatedAt,
	}
}

type contactRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	StudentID string `gorm:"size:64;index;not null"`
	Type      string `gorm:"size:16;not null"`
	Name      string `gorm:"size:255"`
	Email     string `gorm:"size:255"`
	Phone     string `gorm:"size:32"`
	CreatedAt time.Time
}

func (contactRecord) TableName() string { return "contacts" }

func (r *contactRecord) toModel() *models.Contact {
	return &models.Contact{
		ID:        r.ID,
		StudentID: r.StudentID,
		Type:      constants.ContactType(r.Type),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		CreatedAt: r.CreatedAt,
	}
}

type counselorRecord struct {
	ID         string `gorm:"primaryKey;size:36"`
	Name       string `gorm:"size:255;not null"`
	Email      string `gorm:"size:255;uniqueIndex;not null"`
	Phone      string `gorm:"size:32"`
	Department string `gorm:"size:128"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (counselorRecord) TableName() string { return "counselors" }

func newCounselorRecord(c *models.Counselor) *counselorRecord {
	return &counselorRecord{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Department: c.Department,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (r *counselorRecord) toModel() *models.Counselor {
	return &models.Counselor{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Department: r.Department,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type uploadRecord struct {
	BatchID    string `gorm:"primaryKey;size:36"`
	Type       string `gorm:"size:32;not null"`
	Processed  int
	Skipped    int
	Students   int
	UploadedAt time.Time `gorm:"index"`
}

func (uploadRecord) TableName() string { return "upload_batches" }

func (r *uploadRecord) toModel() *models.UploadBatch {
	return &models.UploadBatch{
		BatchID:    r.BatchID,
		Type:       constants.UploadType(r.Type),
		Processed:  r.Processed,
		Skipped:    r.Skipped,
		Students:   r.Students,
		UploadedAt: r.UploadedAt,
	}
}

type observationRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	StudentID  string    `gorm:"size:64;not null;index:idx_observations_student_day"`
	Signal     string    `gorm:"size:16;not null"`
	ObservedOn time.Time `gorm:"not null;index:idx_observations_student_day;index"`
	Value      float64   `gorm:"not null"`
}

func (observationRecord) TableName() string { return "observations" }

func (r *observationRecord) toModel() models.Observation {
	return models.Observation{
		StudentID: r.StudentID,
		Signal:    models.Signal(r.Signal),
		Date:      r.ObservedOn.UTC(),
		Value:     r.Value,
	}
}

// mapDBErr turns driver errors into application errors. Unique violations
// become conflicts; everything else wraps ErrDatabaseOperation.
func mapDBErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.ErrConflict(what + " already exists")
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return errors.ErrConflict(what + " already exists")
	}
	return fmt.Errorf("%w: %s: %v", errors.ErrDatabaseOperation, what, err)
}
