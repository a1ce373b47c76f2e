package models

import "time"

// Student is the latest aggregated snapshot for one student.
// Student 是单个学生的最新汇总快照。
type Student struct {
	// StudentID is the school-issued identifier.
	// StudentID 是学校分配的标识符。
	StudentID string `json:"student_id"`

	Name      string `json:"name"`
	ClassName string `json:"class_name"`

	// AttendancePct is the share of sessions attended, 0 to 100.
	// Nil until an attendance file mentioning the student is ingested.
	AttendancePct *float64 `json:"attendance_pct"`

	// AvgScore is the mean exam score, 0 to 100. Nil until exam results arrive.
	AvgScore *float64 `json:"avg_score"`

	// FeeOverdueDays is the largest number of days any unpaid invoice is past due.
	// Nil until a fee file mentioning the student is ingested.
	FeeOverdueDays *int `json:"fee_overdue_days"`

	// RiskLevel and RiskScore hold the result of the most recent evaluation.
	RiskLevel RiskLevel `json:"risk_level,omitempty"`
	RiskScore float64   `json:"risk_score"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Metrics returns the evaluation input for the student together with the
// signals that have never been ingested. Missing values are left at zero in
// the returned metrics; callers must pass the missing list on to the
// evaluator so those zeros are not read as measurements.
func (s *Student) Metrics() (StudentMetrics, []Signal) {
	m := StudentMetrics{StudentID: s.StudentID}
	var missing []Signal
	if s.AttendancePct != nil {
		m.AttendancePct = *s.AttendancePct
	} else {
		missing = append(missing, SignalAttendance)
	}
	if s.AvgScore != nil {
		m.AvgScore = *s.AvgScore
	} else {
		missing = append(missing, SignalExam)
	}
	if s.FeeOverdueDays != nil {
		m.FeeOverdueDays = *s.FeeOverdueDays
	} else {
		missing = append(missing, SignalFee)
	}
	return m, missing
}

// StudentFilter narrows a student listing. Empty fields match everything.
type StudentFilter struct {
	ClassName string    `form:"class_name"`
	RiskLevel RiskLevel `form:"risk_level"`
}

// StudentDetails is the per-student view: stored snapshot, fresh evaluation and signal tiers.
type StudentDetails struct {
	Student   Student         `json:"student"`
	Risk      RiskResult      `json:"risk"`
	Breakdown SignalBreakdown `json:"breakdown"`
	Contacts  []Contact       `json:"contacts"`
}
