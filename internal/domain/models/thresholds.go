// Package models defines the domain models for the student-risk service.
// This file contains the ThresholdConfig that controls risk classification.
package models

import "time"

// ThresholdConfig holds the admin-tunable cutoffs used by the risk evaluator.
// It is always replaced as a whole, never patched field by field.
// ThresholdConfig 保存风险评估器使用的、可由管理员调整的阈值。
type ThresholdConfig struct {
	// AttendanceLow is the attendance percentage below which the attendance signal is severe.
	// AttendanceLow 是出勤信号被视为严重的出勤百分比下限。
	AttendanceLow float64 `json:"attendance_low" validate:"gte=0,ltefield=AttendanceMedium"`

	// AttendanceMedium is the attendance percentage below which attendance_risk is raised.
	// AttendanceMedium 是触发 attendance_risk 的出勤百分比。
	AttendanceMedium float64 `json:"attendance_medium" validate:"gte=0"`

	// ScoreLow is the average score below which the exam signal is severe.
	ScoreLow float64 `json:"score_low" validate:"gte=0,ltefield=ScoreMedium"`

	// ScoreMedium is the average score below which exam_risk is raised.
	ScoreMedium float64 `json:"score_medium" validate:"gte=0"`

	// FeeDaysOverdueMedium is the overdue day count at or above which fee_risk is raised.
	FeeDaysOverdueMedium float64 `json:"fee_days_overdue_medium" validate:"gte=0,ltefield=FeeDaysOverdueHigh"`

	// FeeDaysOverdueHigh is the overdue day count at which the fee component saturates.
	FeeDaysOverdueHigh float64 `json:"fee_days_overdue_high" validate:"gte=0"`
}

// DefaultThresholds returns the configuration used until an admin replaces it.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		AttendanceLow:        60,
		AttendanceMedium:     75,
		ScoreLow:             50,
		ScoreMedium:          60,
		FeeDaysOverdueMedium: 15,
		FeeDaysOverdueHigh:   30,
	}
}

// Settings is the persisted, versioned form of the active ThresholdConfig.
type Settings struct {
	Thresholds ThresholdConfig `json:"thresholds"`
	Version    int64           `json:"version"`
	UpdatedBy  string          `json:"updated_by,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
