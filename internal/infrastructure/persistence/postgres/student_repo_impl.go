package postgres

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// StudentRepoImpl implements StudentRepository using gorm.
// StudentRepoImpl 使用 gorm 实现学生仓储。
type StudentRepoImpl struct {
	db      *gorm.DB
	metrics service.Metrics
	logger  logger.Logger
}

// NewStudentRepository creates a new gorm-based student repository instance.
func NewStudentRepository(db *gorm.DB, metrics service.Metrics, log logger.Logger) repository.StudentRepository {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	return &StudentRepoImpl{
		db:      db,
		metrics: metrics,
		logger:  log.WithComponent("student_repo"),
	}
}

// ApplyUpdates creates missing students and merges the non-nil fields of
// each update into existing ones, all in one transaction.
func (r *StudentRepoImpl) ApplyUpdates(ctx context.Context, updates []repository.StudentUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	startTime := time.Now()
	defer func() { r.metrics.RecordDBQuery("students.apply_updates", time.Since(startTime)) }()

	written := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			var rec studentRecord
			err := tx.Where("student_id = ?", u.StudentID).First(&rec).Error
			switch {
			case stderrors.Is(err, gorm.ErrRecordNotFound):
				rec = studentRecord{StudentID: u.StudentID}
				mergeUpdate(&rec, u)
				if err := tx.Create(&rec).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				mergeUpdate(&rec, u)
				if err := tx.Save(&rec).Error; err != nil {
					return err
				}
			}
			written++
		}
		return nil
	})
	if err != nil {
		r.logger.Error(ctx, "Failed to apply student updates", err, logger.Fields{"count": len(updates)})
		return 0, mapDBErr(err, "students")
	}

	r.logger.Debug(ctx, "Student updates applied", logger.Fields{
		"count":      written,
		"latency_ms": time.Since(startTime).Milliseconds(),
	})
	return written, nil
}

func mergeUpdate(rec *studentRecord, u repository.StudentUpdate) {
	if u.Name != "" {
		rec.Name = u.Name
	}
	if u.ClassName != nil {
		rec.ClassName = *u.ClassName
	}
	// Signals absent from the update stay NULL (never ingested) or keep
	// their previous value.
	if u.AttendancePct != nil {
		v := *u.AttendancePct
		rec.AttendancePct = &v
	}
	if u.AvgScore != nil {
		v := *u.AvgScore
		rec.AvgScore = &v
	}
	if u.FeeOverdueDays != nil {
		v := *u.FeeOverdueDays
		rec.FeeOverdueDays = &v
	}
}

// FindByID retrieves a student by its identifier.
func (r *StudentRepoImpl) FindByID(ctx context.Context, studentID string) (*models.Student, error) {
	var rec studentRecord
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&rec).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debug(ctx, "Student not found", logger.Fields{"student_id": studentID})
			return nil, errors.ErrNotFound("student", studentID)
		}
		r.logger.Error(ctx, "Failed to retrieve student", err, logger.Fields{"student_id": studentID})
		return nil, mapDBErr(err, "student")
	}
	return rec.toModel(), nil
}

// List returns the students matching filter ordered by student_id. The
// risk_level filter applies to the stored level of the last evaluation.
func (r *StudentRepoImpl) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	startTime := time.Now()
	defer func() { r.metrics.RecordDBQuery("students.list", time.Since(startTime)) }()

	query := r.db.WithContext(ctx).Model(&studentRecord{})
	if filter.ClassName != "" {
		query = query.Where("class_name = ?", filter.ClassName)
	}
	if filter.RiskLevel != "" {
		query = query.Where("risk_level = ?", string(filter.RiskLevel))
	}

	var recs []studentRecord
	if err := query.Order("student_id").Find(&recs).Error; err != nil {
		r.logger.Error(ctx, "Failed to list students", err)
		return nil, mapDBErr(err, "students")
	}

	out := make([]*models.Student, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out, nil
}

// UpdateRisk stores the latest level and score of each evaluated student.
func (r *StudentRepoImpl) UpdateRisk(ctx context.Context, results []models.RiskResult) error {
	if len(results) == 0 {
		return nil
	}
	startTime := time.Now()
	defer func() { r.metrics.RecordDBQuery("students.update_risk", time.Since(startTime)) }()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, res := range results {
			err := tx.Model(&studentRecord{}).
				Where("student_id = ?", res.StudentID).
				Updates(map[string]interface{}{
					"risk_level": string(res.RiskLevel),
					"risk_score": res.RiskScore,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error(ctx, "Failed to store risk levels", err, logger.Fields{"count": len(results)})
		return mapDBErr(err, "students")
	}
	return nil
}

// Count returns the number of stored students.
func (r *StudentRepoImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&studentRecord{}).Count(&count).Error; err != nil {
		return 0, mapDBErr(err, "students")
	}
	return count, nil
}
