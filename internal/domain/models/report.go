package models

import (
	"time"

	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
)

// RiskReport summarizes the current risk picture across all students.
type RiskReport struct {
	Total            int             `json:"total"`
	High             int             `json:"high"`
	Medium           int             `json:"medium"`
	Low              int             `json:"low"`
	AverageRiskScore float64         `json:"average_risk_score"`
	Top              []ReportEntry   `json:"top"`
	Thresholds       ThresholdConfig `json:"thresholds"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// ReportEntry is one row in the at-risk table of a report.
type ReportEntry struct {
	StudentRisk
	Reasons []string `json:"reasons"`
}

// UploadBatch records the outcome of ingesting one metrics file.
type UploadBatch struct {
	BatchID    string               `json:"batch_id"`
	Type       constants.UploadType `json:"type"`
	Processed  int                  `json:"processed"`
	Skipped    int                  `json:"skipped"`
	Students   int                  `json:"students"`
	UploadedAt time.Time            `json:"uploaded_at"`
}

// AlertSummary reports what an alert run did.
type AlertSummary struct {
	StudentsAlerted int `json:"students_alerted"`
	MessagesSent    int `json:"messages_sent"`
	Failures        int `json:"failures"`
}

// Observation is one dated attendance or exam row, kept for the weekly report.
// Value is 0 or 1 for attendance and the score for exams.
type Observation struct {
	StudentID string
	Signal    Signal
	Date      time.Time
	Value     float64
}

// WeeklyReport is the last-seven-days view of one student.
// The week fields are nil when no rows were observed in the window.
type WeeklyReport struct {
	StudentID         string    `json:"student_id"`
	StudentName       string    `json:"student_name"`
	RiskLevel         RiskLevel `json:"risk_level"`
	AttendancePctWeek *float64  `json:"attendance_pct_week"`
	AvgScoreWeek      *float64  `json:"avg_score_week"`
	Summary           string    `json:"summary"`
}
