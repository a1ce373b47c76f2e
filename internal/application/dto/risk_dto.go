package dto

import (
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
)

// EvaluateRequest 批量风险评估请求
type EvaluateRequest struct {
	Students []models.StudentMetrics `json:"students" binding:"required,min=1,max=10000"`
}

// BatchItem is the outcome for one student in a batch. Exactly one of
// Result and Error is set.
type BatchItem struct {
	StudentID string                `json:"student_id"`
	Result    *models.RiskResult    `json:"result,omitempty"`
	Error     *errors.ErrorResponse `json:"error,omitempty"`
}

// EvaluateResponse 批量风险评估响应
type EvaluateResponse struct {
	Results    []BatchItem            `json:"results"`
	Evaluated  int                    `json:"evaluated"`
	Failed     int                    `json:"failed"`
	Thresholds models.ThresholdConfig `json:"thresholds"`
}

// RiskListResponse is the body of the risk query endpoint.
type RiskListResponse struct {
	Risk []models.StudentRisk `json:"risk"`
}

// ThresholdsRequest is a full replacement of the threshold config.
// Every field is required; a missing field is a validation error, never a zero.
type ThresholdsRequest struct {
	AttendanceLow        *float64 `json:"attendance_low" binding:"required"`
	AttendanceMedium     *float64 `json:"attendance_medium" binding:"required"`
	ScoreLow             *float64 `json:"score_low" binding:"required"`
	ScoreMedium          *float64 `json:"score_medium" binding:"required"`
	FeeDaysOverdueMedium *float64 `json:"fee_days_overdue_medium" binding:"required"`
	FeeDaysOverdueHigh   *float64 `json:"fee_days_overdue_high" binding:"required"`
}

// ToModel converts the request after binding has checked every field is present.
func (r *ThresholdsRequest) ToModel() models.ThresholdConfig {
	return models.ThresholdConfig{
		AttendanceLow:        deref(r.AttendanceLow),
		AttendanceMedium:     deref(r.AttendanceMedium),
		ScoreLow:             deref(r.ScoreLow),
		ScoreMedium:          deref(r.ScoreMedium),
		FeeDaysOverdueMedium: deref(r.FeeDaysOverdueMedium),
		FeeDaysOverdueHigh:   deref(r.FeeDaysOverdueHigh),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// SettingsResponse 阈值配置响应
type SettingsResponse struct {
	models.ThresholdConfig
	Version   int64  `json:"version,omitempty"`
	UpdatedBy string `json:"updated_by,omitempty"`
}
