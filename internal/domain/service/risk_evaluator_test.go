package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
)

func TestEvaluate_LowAttendanceOnlyIsMedium(t *testing.T) {
	metrics := models.StudentMetrics{StudentID: "S1", AttendancePct: 50, AvgScore: 80, FeeOverdueDays: 0}

	result, err := service.Evaluate(metrics, models.DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, "S1", result.StudentID)
	assert.Equal(t, 1, result.AttendanceRisk)
	assert.Equal(t, 0, result.ExamRisk)
	assert.Equal(t, 0, result.FeeRisk)
	assert.Equal(t, models.RiskLevelMedium, result.RiskLevel)
	assert.InDelta(t, 1.0/9, result.RiskScore, 1e-9)
}

func TestEvaluate_TwoFlagsAreHighRegardlessOfScore(t *testing.T) {
	metrics := models.StudentMetrics{StudentID: "S2", AttendancePct: 90, AvgScore: 40, FeeOverdueDays: 40}

	result, err := service.Evaluate(metrics, models.DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, 0, result.AttendanceRisk)
	assert.Equal(t, 1, result.ExamRisk)
	assert.Equal(t, 1, result.FeeRisk)
	assert.Less(t, result.RiskScore, service.HighScoreCutoff)
	assert.InDelta(t, 4.0/9, result.RiskScore, 1e-9)
	assert.Equal(t, models.RiskLevelHigh, result.RiskLevel)
}

func TestEvaluate_NoFlagsIsLow(t *testing.T) {
	metrics := models.StudentMetrics{StudentID: "S3", AttendancePct: 95, AvgScore: 88, FeeOverdueDays: 3}

	result, err := service.Evaluate(metrics, models.DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, 0, result.FlagCount())
	assert.Equal(t, models.RiskLevelLow, result.RiskLevel)
	assert.InDelta(t, 0.1/3, result.RiskScore, 1e-9)
}

func TestEvaluate_SaturatedComponents(t *testing.T) {
	cfg := models.DefaultThresholds()
	// Every component saturates at 1 and all flags are raised.
	metrics := models.StudentMetrics{StudentID: "S4", AttendancePct: 0, AvgScore: 0, FeeOverdueDays: 90}

	result, err := service.Evaluate(metrics, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.RiskScore, 1e-9)
	assert.Equal(t, models.RiskLevelHigh, result.RiskLevel)
}

func TestEvaluate_AttendanceAtThresholdIsNotFlagged(t *testing.T) {
	cfg := models.DefaultThresholds()
	metrics := models.StudentMetrics{StudentID: "S5", AttendancePct: cfg.AttendanceMedium, AvgScore: 80}

	result, err := service.Evaluate(metrics, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, result.AttendanceRisk)
}

func TestEvaluate_ExamAtThresholdIsNotFlagged(t *testing.T) {
	cfg := models.DefaultThresholds()
	metrics := models.StudentMetrics{StudentID: "S6", AttendancePct: 90, AvgScore: cfg.ScoreMedium}

	result, err := service.Evaluate(metrics, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExamRisk)
}

func TestEvaluate_FeeAtThresholdIsFlagged(t *testing.T) {
	cfg := models.DefaultThresholds()
	metrics := models.StudentMetrics{StudentID: "S7", AttendancePct: 90, AvgScore: 80, FeeOverdueDays: 15}

	result, err := service.Evaluate(metrics, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FeeRisk)
	assert.Equal(t, models.RiskLevelMedium, result.RiskLevel)
}

func TestEvaluate_Deterministic(t *testing.T) {
	metrics := models.StudentMetrics{StudentID: "S8", AttendancePct: 63.5, AvgScore: 51.25, FeeOverdueDays: 22}
	cfg := models.DefaultThresholds()

	first, err := service.Evaluate(metrics, cfg)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := service.Evaluate(metrics, cfg)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEvaluate_ScoreAlwaysInUnitInterval(t *testing.T) {
	configs := []models.ThresholdConfig{
		models.DefaultThresholds(),
		{AttendanceLow: 0, AttendanceMedium: 0, ScoreLow: 0, ScoreMedium: 0, FeeDaysOverdueMedium: 0, FeeDaysOverdueHigh: 0},
		{AttendanceLow: 90, AttendanceMedium: 100, ScoreLow: 90, ScoreMedium: 100, FeeDaysOverdueMedium: 1, FeeDaysOverdueHigh: 2},
	}
	for _, cfg := range configs {
		for att := 0.0; att <= 100; att += 12.5 {
			for score := 0.0; score <= 100; score += 12.5 {
				for _, days := range []int{0, 1, 7, 15, 30, 365} {
					m := models.StudentMetrics{AttendancePct: att, AvgScore: score, FeeOverdueDays: days}
					result, err := service.Evaluate(m, cfg)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, result.RiskScore, 0.0)
					assert.LessOrEqual(t, result.RiskScore, 1.0)
					assert.True(t, result.RiskLevel.Valid())
				}
			}
		}
	}
}

func TestEvaluate_MonotonicInFeeDays(t *testing.T) {
	cfg := models.DefaultThresholds()
	for _, base := range []models.StudentMetrics{
		{AttendancePct: 95, AvgScore: 90},
		{AttendancePct: 70, AvgScore: 90},
		{AttendancePct: 50, AvgScore: 30},
	} {
		prev, err := service.Evaluate(base, cfg)
		require.NoError(t, err)
		for days := 1; days <= 60; days++ {
			m := base
			m.FeeOverdueDays = days
			cur, err := service.Evaluate(m, cfg)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, cur.RiskScore, prev.RiskScore, "days=%d", days)
			assert.GreaterOrEqual(t, cur.RiskLevel.Rank(), prev.RiskLevel.Rank(), "days=%d", days)
			prev = cur
		}
	}
}

func TestEvaluate_ZeroFeeHighSaturatesFeeComponent(t *testing.T) {
	cfg := models.ThresholdConfig{AttendanceLow: 60, AttendanceMedium: 75, ScoreLow: 50, ScoreMedium: 60}
	metrics := models.StudentMetrics{AttendancePct: 100, AvgScore: 100, FeeOverdueDays: 0}

	result, err := service.Evaluate(metrics, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FeeRisk)
	assert.InDelta(t, 1.0/3, result.RiskScore, 1e-9)
	assert.Equal(t, models.RiskLevelMedium, result.RiskLevel)
}

func TestEvaluate_InvalidMetrics(t *testing.T) {
	cfg := models.DefaultThresholds()
	tests := []struct {
		name    string
		metrics models.StudentMetrics
		field   string
	}{
		{"negative attendance", models.StudentMetrics{AttendancePct: -1, AvgScore: 50}, "attendance_pct"},
		{"NaN attendance", models.StudentMetrics{AttendancePct: math.NaN(), AvgScore: 50}, "attendance_pct"},
		{"attendance above 100", models.StudentMetrics{AttendancePct: 100.5, AvgScore: 50}, "attendance_pct"},
		{"infinite score", models.StudentMetrics{AttendancePct: 50, AvgScore: math.Inf(1)}, "avg_score"},
		{"negative score", models.StudentMetrics{AttendancePct: 50, AvgScore: -0.1}, "avg_score"},
		{"negative fee days", models.StudentMetrics{AttendancePct: 50, AvgScore: 50, FeeOverdueDays: -2}, "fee_overdue_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Evaluate(tt.metrics, cfg)
			require.Error(t, err)
			vErr, ok := errors.AsValidationError(err)
			require.True(t, ok)
			assert.Contains(t, vErr.Fields(), tt.field)
		})
	}
}

func TestEvaluate_InvalidConfig(t *testing.T) {
	cfg := models.DefaultThresholds()
	cfg.AttendanceLow = 80
	cfg.AttendanceMedium = 60

	_, err := service.Evaluate(models.StudentMetrics{AttendancePct: 70, AvgScore: 70}, cfg)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestNewRiskEvaluator_Weights(t *testing.T) {
	evaluator, err := service.NewRiskEvaluator(service.Weights{Attendance: 2, Exam: 1, Fee: 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, evaluator.Weights().Attendance, 1e-9)

	metrics := models.StudentMetrics{AttendancePct: 0, AvgScore: 100, FeeOverdueDays: 0}
	result, err := evaluator.Evaluate(metrics, models.DefaultThresholds())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.RiskScore, 1e-9)
	assert.Equal(t, models.RiskLevelMedium, result.RiskLevel)

	_, err = service.NewRiskEvaluator(service.Weights{})
	assert.Error(t, err)
	_, err = service.NewRiskEvaluator(service.Weights{Attendance: -1, Exam: 1, Fee: 1})
	assert.Error(t, err)
}

func TestBreakdown_Tiers(t *testing.T) {
	evaluator, err := service.NewRiskEvaluator(service.DefaultWeights())
	require.NoError(t, err)

	tests := []struct {
		name    string
		metrics models.StudentMetrics
		want    [3]models.RiskLevel
	}{
		{"all low", models.StudentMetrics{AttendancePct: 90, AvgScore: 90, FeeOverdueDays: 0},
			[3]models.RiskLevel{models.RiskLevelLow, models.RiskLevelLow, models.RiskLevelLow}},
		{"all medium", models.StudentMetrics{AttendancePct: 70, AvgScore: 55, FeeOverdueDays: 15},
			[3]models.RiskLevel{models.RiskLevelMedium, models.RiskLevelMedium, models.RiskLevelMedium}},
		{"all high", models.StudentMetrics{AttendancePct: 40, AvgScore: 20, FeeOverdueDays: 30},
			[3]models.RiskLevel{models.RiskLevelHigh, models.RiskLevelHigh, models.RiskLevelHigh}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := evaluator.Breakdown(tt.metrics, nil, models.DefaultThresholds())
			require.NoError(t, err)
			assert.Equal(t, tt.want[0], b.Attendance.Level)
			assert.Equal(t, tt.want[1], b.Exam.Level)
			assert.Equal(t, tt.want[2], b.Fee.Level)
		})
	}
}

func TestEvaluatePartial_MissingSignalsRaiseNothing(t *testing.T) {
	evaluator, err := service.NewRiskEvaluator(service.DefaultWeights())
	require.NoError(t, err)
	cfg := models.DefaultThresholds()

	t.Run("attendance only", func(t *testing.T) {
		result, err := evaluator.EvaluatePartial(
			models.StudentMetrics{StudentID: "S2", AttendancePct: 100},
			[]models.Signal{models.SignalExam, models.SignalFee}, cfg)
		require.NoError(t, err)
		assert.Equal(t, models.RiskLevelLow, result.RiskLevel)
		assert.Equal(t, 0, result.FlagCount())
		assert.Equal(t, 0.0, result.RiskScore)
		assert.Equal(t, []models.Signal{models.SignalExam, models.SignalFee}, result.MissingSignals)
	})

	t.Run("fee only, paid", func(t *testing.T) {
		result, err := evaluator.EvaluatePartial(
			models.StudentMetrics{StudentID: "S1"},
			[]models.Signal{models.SignalAttendance, models.SignalExam}, cfg)
		require.NoError(t, err)
		assert.Equal(t, models.RiskLevelLow, result.RiskLevel)
		assert.Equal(t, 0, result.FlagCount())
		assert.Equal(t, []models.Signal{models.SignalAttendance, models.SignalExam}, result.MissingSignals)
	})

	t.Run("fee only, overdue", func(t *testing.T) {
		result, err := evaluator.EvaluatePartial(
			models.StudentMetrics{StudentID: "S3", FeeOverdueDays: 40},
			[]models.Signal{models.SignalAttendance, models.SignalExam}, cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, result.FeeRisk)
		assert.Equal(t, 0, result.AttendanceRisk)
		assert.Equal(t, 0, result.ExamRisk)
		assert.InDelta(t, 1.0/3, result.RiskScore, 1e-9)
		assert.Equal(t, models.RiskLevelMedium, result.RiskLevel)
	})

	t.Run("nothing missing matches Evaluate", func(t *testing.T) {
		m := models.StudentMetrics{StudentID: "S4", AttendancePct: 50, AvgScore: 80}
		full, err := evaluator.Evaluate(m, cfg)
		require.NoError(t, err)
		partial, err := evaluator.EvaluatePartial(m, nil, cfg)
		require.NoError(t, err)
		assert.Equal(t, full, partial)
		assert.Nil(t, partial.MissingSignals)
	})
}

func TestBreakdown_MissingSignal(t *testing.T) {
	evaluator, err := service.NewRiskEvaluator(service.DefaultWeights())
	require.NoError(t, err)

	b, err := evaluator.Breakdown(models.StudentMetrics{AttendancePct: 40}, []models.Signal{models.SignalExam, models.SignalFee}, models.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, models.RiskLevelHigh, b.Attendance.Level)
	assert.False(t, b.Attendance.Missing)
	assert.True(t, b.Exam.Missing)
	assert.Equal(t, models.RiskLevel(""), b.Exam.Level)
	assert.True(t, b.Fee.Missing)
	assert.Equal(t, 0.0, b.Fee.Component)
}
