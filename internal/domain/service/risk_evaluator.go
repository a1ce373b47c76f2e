package service

import (
	"fmt"
	"math"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/utils"
)

const (
	// HighScoreCutoff is the risk_score at or above which a student is high risk.
	HighScoreCutoff = 0.66
	// MediumScoreCutoff is the risk_score at or above which a student is at least medium risk.
	MediumScoreCutoff = 0.33
)

// Weights sets the relative importance of the three normalized components.
// They are normalized to sum to 1 when the evaluator is built.
type Weights struct {
	Attendance float64 `json:"attendance"`
	Exam       float64 `json:"exam"`
	Fee        float64 `json:"fee"`
}

// DefaultWeights gives each component the same weight.
func DefaultWeights() Weights {
	return Weights{Attendance: 1, Exam: 1, Fee: 1}
}

func (w Weights) normalize() (Weights, error) {
	for name, v := range map[string]float64{"attendance": w.Attendance, "exam": w.Exam, "fee": w.Fee} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return Weights{}, fmt.Errorf("weight %s must be a finite non-negative number", name)
		}
	}
	sum := w.Attendance + w.Exam + w.Fee
	if sum == 0 {
		return Weights{}, fmt.Errorf("weights must not all be zero")
	}
	return Weights{Attendance: w.Attendance / sum, Exam: w.Exam / sum, Fee: w.Fee / sum}, nil
}

// RiskEvaluator classifies a student's metrics against a ThresholdConfig.
// It holds no mutable state and is safe for concurrent use.
type RiskEvaluator struct {
	weights Weights
}

// NewRiskEvaluator creates an evaluator with the given component weights.
func NewRiskEvaluator(w Weights) (*RiskEvaluator, error) {
	nw, err := w.normalize()
	if err != nil {
		return nil, err
	}
	return &RiskEvaluator{weights: nw}, nil
}

var defaultEvaluator = &RiskEvaluator{weights: Weights{Attendance: 1.0 / 3, Exam: 1.0 / 3, Fee: 1.0 / 3}}

// Evaluate classifies metrics with equal weights. See RiskEvaluator.Evaluate.
func Evaluate(metrics models.StudentMetrics, cfg models.ThresholdConfig) (models.RiskResult, error) {
	return defaultEvaluator.Evaluate(metrics, cfg)
}

// Weights returns the normalized weights in use.
func (e *RiskEvaluator) Weights() Weights {
	return e.weights
}

// Evaluate validates cfg and metrics, then derives the binary flags, the
// weighted risk score and the risk level. A *errors.ValidationError is
// returned for any invalid input; nothing is coerced.
func (e *RiskEvaluator) Evaluate(metrics models.StudentMetrics, cfg models.ThresholdConfig) (models.RiskResult, error) {
	return e.EvaluatePartial(metrics, nil, cfg)
}

// EvaluatePartial is Evaluate for a student whose record lacks some signals.
// A missing signal raises no flag and contributes a zero component; it is
// reported in RiskResult.MissingSignals.
func (e *RiskEvaluator) EvaluatePartial(metrics models.StudentMetrics, missing []models.Signal, cfg models.ThresholdConfig) (models.RiskResult, error) {
	if err := ValidateThresholds(cfg); err != nil {
		return models.RiskResult{}, err
	}
	if err := ValidateMetrics(metrics); err != nil {
		return models.RiskResult{}, err
	}
	present := presence(missing)

	result := models.RiskResult{StudentID: metrics.StudentID, MissingSignals: present.missing()}
	if present.attendance && metrics.AttendancePct < cfg.AttendanceMedium {
		result.AttendanceRisk = 1
	}
	if present.exam && metrics.AvgScore < cfg.ScoreMedium {
		result.ExamRisk = 1
	}
	if present.fee && float64(metrics.FeeOverdueDays) >= cfg.FeeDaysOverdueMedium {
		result.FeeRisk = 1
	}

	att, exam, fee := components(metrics, cfg, present)
	score := e.weights.Attendance*att + e.weights.Exam*exam + e.weights.Fee*fee
	result.RiskScore = utils.Clamp01(score)
	result.RiskLevel = classify(result.RiskScore, result.FlagCount())

	return result, nil
}

// Breakdown grades each signal separately against the low and medium cutoffs.
// Missing signals are marked and carry no level.
func (e *RiskEvaluator) Breakdown(metrics models.StudentMetrics, missing []models.Signal, cfg models.ThresholdConfig) (models.SignalBreakdown, error) {
	if err := ValidateThresholds(cfg); err != nil {
		return models.SignalBreakdown{}, err
	}
	if err := ValidateMetrics(metrics); err != nil {
		return models.SignalBreakdown{}, err
	}
	present := presence(missing)

	att, exam, fee := components(metrics, cfg, present)
	days := float64(metrics.FeeOverdueDays)

	var b models.SignalBreakdown
	if present.attendance {
		b.Attendance = models.SignalTier{Level: belowTier(metrics.AttendancePct, cfg.AttendanceLow, cfg.AttendanceMedium), Component: att}
	} else {
		b.Attendance = models.SignalTier{Missing: true}
	}
	if present.exam {
		b.Exam = models.SignalTier{Level: belowTier(metrics.AvgScore, cfg.ScoreLow, cfg.ScoreMedium), Component: exam}
	} else {
		b.Exam = models.SignalTier{Missing: true}
	}
	if present.fee {
		b.Fee = models.SignalTier{Level: atOrAboveTier(days, cfg.FeeDaysOverdueMedium, cfg.FeeDaysOverdueHigh), Component: fee}
	} else {
		b.Fee = models.SignalTier{Missing: true}
	}
	return b, nil
}

// signals records which inputs are available for one evaluation.
type signals struct {
	attendance, exam, fee bool
}

func presence(missing []models.Signal) signals {
	p := signals{attendance: true, exam: true, fee: true}
	for _, m := range missing {
		switch m {
		case models.SignalAttendance:
			p.attendance = false
		case models.SignalExam:
			p.exam = false
		case models.SignalFee:
			p.fee = false
		}
	}
	return p
}

// missing lists the absent signals in a fixed order, or nil when all are present.
func (p signals) missing() []models.Signal {
	var out []models.Signal
	if !p.attendance {
		out = append(out, models.SignalAttendance)
	}
	if !p.exam {
		out = append(out, models.SignalExam)
	}
	if !p.fee {
		out = append(out, models.SignalFee)
	}
	return out
}

// components returns the three normalized sub-scores, each in [0,1].
// A zero attendance or score threshold means nothing can fall below it, so
// that component is 0. A zero fee "high" mark is reached by everyone, so
// the fee component is 1. Missing signals contribute 0.
func components(m models.StudentMetrics, cfg models.ThresholdConfig, p signals) (att, exam, fee float64) {
	if p.attendance && cfg.AttendanceMedium > 0 {
		att = utils.Clamp01((cfg.AttendanceMedium - m.AttendancePct) / cfg.AttendanceMedium)
	}
	if p.exam && cfg.ScoreMedium > 0 {
		exam = utils.Clamp01((cfg.ScoreMedium - m.AvgScore) / cfg.ScoreMedium)
	}
	if p.fee {
		if cfg.FeeDaysOverdueHigh > 0 {
			fee = utils.Clamp01(float64(m.FeeOverdueDays) / cfg.FeeDaysOverdueHigh)
		} else {
			fee = 1
		}
	}
	return att, exam, fee
}

// classify applies the level rule. Flags only ever raise the level.
func classify(score float64, flags int) models.RiskLevel {
	switch {
	case score >= HighScoreCutoff || flags >= 2:
		return models.RiskLevelHigh
	case score >= MediumScoreCutoff || flags == 1:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

func belowTier(v, low, medium float64) models.RiskLevel {
	switch {
	case v < low:
		return models.RiskLevelHigh
	case v < medium:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

func atOrAboveTier(v, medium, high float64) models.RiskLevel {
	switch {
	case v >= high:
		return models.RiskLevelHigh
	case v >= medium:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// ValidateMetrics rejects negative, non-finite and out-of-range metrics.
func ValidateMetrics(m models.StudentMetrics) error {
	var violations []errors.FieldViolation
	checkPct := func(field string, v float64) {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			violations = append(violations, errors.FieldViolation{Field: field, Message: "must be a finite number"})
		case v < 0:
			violations = append(violations, errors.FieldViolation{Field: field, Message: "must not be negative"})
		case v > 100:
			violations = append(violations, errors.FieldViolation{Field: field, Message: "must be at most 100"})
		}
	}
	checkPct("attendance_pct", m.AttendancePct)
	checkPct("avg_score", m.AvgScore)
	if m.FeeOverdueDays < 0 {
		violations = append(violations, errors.FieldViolation{Field: "fee_overdue_days", Message: "must not be negative"})
	}
	if len(violations) > 0 {
		return errors.NewValidationError(violations...).WithMetadata("student_id", m.StudentID)
	}
	return nil
}
