package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
)

const observationBatchSize = 500

type observationRepository struct {
	db *gorm.DB
}

// NewObservationRepository creates the store of dated attendance and exam rows.
func NewObservationRepository(db *gorm.DB) repository.ObservationRepository {
	return &observationRepository{db: db}
}

func (r *observationRepository) SaveObservations(ctx context.Context, observations []models.Observation) error {
	if len(observations) == 0 {
		return nil
	}
	recs := make([]observationRecord, len(observations))
	for i, o := range observations {
		recs[i] = observationRecord{
			StudentID:  o.StudentID,
			Signal:     string(o.Signal),
			ObservedOn: o.Date.UTC(),
			Value:      o.Value,
		}
	}
	return mapDBErr(r.db.WithContext(ctx).CreateInBatches(recs, observationBatchSize).Error, "observations")
}

func (r *observationRepository) ListSince(ctx context.Context, since time.Time) ([]models.Observation, error) {
	var recs []observationRecord
	err := r.db.WithContext(ctx).
		Where("observed_on >= ?", since.UTC()).
		Order("student_id").Order("observed_on").
		Find(&recs).Error
	if err != nil {
		return nil, mapDBErr(err, "observations")
	}
	out := make([]models.Observation, len(recs))
	for i := range recs {
		out[i] = recs[i].toModel()
	}
	return out, nil
}
