package models

// RiskLevel is the categorical dropout-risk classification.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// Valid reports whether l is one of the three known levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	}
	return false
}

// Rank orders levels so that low < medium < high. Unknown levels rank below low.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLevelLow:
		return 1
	case RiskLevelMedium:
		return 2
	case RiskLevelHigh:
		return 3
	}
	return 0
}

// Signal names one of the three risk inputs.
type Signal string

const (
	SignalAttendance Signal = "attendance"
	SignalExam       Signal = "exam"
	SignalFee        Signal = "fee"
)

// StudentMetrics is the immutable input snapshot for one evaluation.
type StudentMetrics struct {
	StudentID      string  `json:"student_id"`
	AttendancePct  float64 `json:"attendance_pct"`
	AvgScore       float64 `json:"avg_score"`
	FeeOverdueDays int     `json:"fee_overdue_days"`
}

// RiskResult is derived from StudentMetrics and a ThresholdConfig; it is never mutated.
type RiskResult struct {
	StudentID      string    `json:"student_id"`
	RiskLevel      RiskLevel `json:"risk_level"`
	AttendanceRisk int       `json:"attendance_risk"`
	ExamRisk       int       `json:"exam_risk"`
	FeeRisk        int       `json:"fee_risk"`
	RiskScore      float64   `json:"risk_score"`

	// MissingSignals lists the inputs that were never ingested for the
	// student. A missing signal raises no flag and adds nothing to the score.
	MissingSignals []Signal `json:"missing_signals,omitempty"`
}

// FlagCount returns how many of the three binary risk flags are raised.
func (r RiskResult) FlagCount() int {
	return r.AttendanceRisk + r.ExamRisk + r.FeeRisk
}

// Reasons lists the signals that raised a flag, in a fixed order.
func (r RiskResult) Reasons() []string {
	reasons := make([]string, 0, 3)
	if r.AttendanceRisk == 1 {
		reasons = append(reasons, "Attendance")
	}
	if r.ExamRisk == 1 {
		reasons = append(reasons, "Exam")
	}
	if r.FeeRisk == 1 {
		reasons = append(reasons, "Fees")
	}
	return reasons
}

// SignalBreakdown grades each signal on its own. It is informational and
// never feeds back into RiskResult.RiskLevel.
type SignalBreakdown struct {
	Attendance SignalTier `json:"attendance"`
	Exam       SignalTier `json:"exam"`
	Fee        SignalTier `json:"fee"`
}

// SignalTier is the tier of a single signal together with its normalized component.
type SignalTier struct {
	Level     RiskLevel `json:"level,omitempty"`
	Component float64   `json:"component"`
	Missing   bool      `json:"missing,omitempty"`
}

// StudentRisk is a RiskResult joined with the student's identity fields.
// Its JSON shape is the element type of the risk query endpoint.
type StudentRisk struct {
	RiskResult
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
}
