package service

import (
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/utils"
)

// ValidateThresholds checks that all six fields are finite and non-negative
// and that each low/medium (or medium/high) pair is ordered. Every violated
// field is reported in the returned *errors.ValidationError.
func ValidateThresholds(cfg models.ThresholdConfig) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"attendance_low", cfg.AttendanceLow},
		{"attendance_medium", cfg.AttendanceMedium},
		{"score_low", cfg.ScoreLow},
		{"score_medium", cfg.ScoreMedium},
		{"fee_days_overdue_medium", cfg.FeeDaysOverdueMedium},
		{"fee_days_overdue_high", cfg.FeeDaysOverdueHigh},
	}

	// Ordering against a NaN is meaningless, so non-finite values are reported alone.
	var nonFinite []errors.FieldViolation
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			nonFinite = append(nonFinite, errors.FieldViolation{Field: f.name, Message: "must be a finite number"})
		}
	}
	if len(nonFinite) > 0 {
		return errors.NewValidationError(nonFinite...)
	}

	err := utils.Validator().Struct(cfg)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		return utils.ToValidationError(ves)
	}
	return errors.Invalid("thresholds", err.Error())
}
