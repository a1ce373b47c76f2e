package service

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/utils"
)

// ReportAppService builds summary reports and exports.
// ReportAppService 报表应用服务接口。
type ReportAppService interface {
	// Summary counts students per level and lists the highest risk scores.
	Summary(ctx context.Context) (*models.RiskReport, error)

	// ExportCSV writes one row per student to w.
	ExportCSV(ctx context.Context, w io.Writer) error

	// Weekly builds one last-seven-days report per student from the dated
	// attendance and exam rows.
	Weekly(ctx context.Context) ([]models.WeeklyReport, error)
}

// weeklyWindow is how far back the weekly report looks.
const weeklyWindow = 7 * 24 * time.Hour

type reportAppServiceImpl struct {
	risk         RiskAppService
	settings     SettingsAppService
	observations repository.ObservationRepository
	logger       logger.Logger
	now          func() time.Time
}

// NewReportAppService creates a new ReportAppService. observations may be
// nil, in which case weekly reports carry no week figures.
func NewReportAppService(risk RiskAppService, settings SettingsAppService, observations repository.ObservationRepository, log logger.Logger) ReportAppService {
	return &reportAppServiceImpl{
		risk:         risk,
		settings:     settings,
		observations: observations,
		logger:       log.WithComponent("report"),
		now:          time.Now,
	}
}

func (s *reportAppServiceImpl) Summary(ctx context.Context) (*models.RiskReport, error) {
	risks, err := s.risk.ListRisks(ctx, models.StudentFilter{})
	if err != nil {
		return nil, err
	}
	cfg, err := s.settings.GetThresholds(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.RiskReport{
		Total:       len(risks),
		Top:         []models.ReportEntry{},
		Thresholds:  cfg,
		GeneratedAt: time.Now().UTC(),
	}

	var sum float64
	for _, r := range risks {
		sum += r.RiskScore
		switch r.RiskLevel {
		case models.RiskLevelHigh:
			report.High++
		case models.RiskLevelMedium:
			report.Medium++
		default:
			report.Low++
		}
	}
	if report.Total > 0 {
		report.AverageRiskScore = utils.Round(sum/float64(report.Total), 4)
	}

	// Top is taken across all levels, highest score first.
	top := make([]models.StudentRisk, len(risks))
	copy(top, risks)
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].RiskScore != top[j].RiskScore {
			return top[i].RiskScore > top[j].RiskScore
		}
		if top[i].RiskLevel.Rank() != top[j].RiskLevel.Rank() {
			return top[i].RiskLevel.Rank() > top[j].RiskLevel.Rank()
		}
		return top[i].StudentID < top[j].StudentID
	})
	if len(top) > constants.ReportTopN {
		top = top[:constants.ReportTopN]
	}
	for _, r := range top {
		report.Top = append(report.Top, models.ReportEntry{StudentRisk: r, Reasons: r.Reasons()})
	}

	s.logger.Info(ctx, "report generated", logger.Fields{
		"total":  report.Total,
		"high":   report.High,
		"medium": report.Medium,
	})
	return report, nil
}

func (s *reportAppServiceImpl) ExportCSV(ctx context.Context, w io.Writer) error {
	risks, err := s.risk.ListRisks(ctx, models.StudentFilter{})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"student_id", "name", "class_name", "risk_level", "risk_score",
		"attendance_risk", "exam_risk", "fee_risk",
	}); err != nil {
		return err
	}
	for _, r := range risks {
		if err := cw.Write([]string{
			r.StudentID,
			r.Name,
			r.ClassName,
			string(r.RiskLevel),
			strconv.FormatFloat(utils.Round(r.RiskScore, 4), 'f', -1, 64),
			strconv.Itoa(r.AttendanceRisk),
			strconv.Itoa(r.ExamRisk),
			strconv.Itoa(r.FeeRisk),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *reportAppServiceImpl) Weekly(ctx context.Context) ([]models.WeeklyReport, error) {
	risks, err := s.risk.ListRisks(ctx, models.StudentFilter{})
	if err != nil {
		return nil, err
	}

	since := startOfDay(s.now()).Add(-weeklyWindow)
	byStudent := make(map[string]*weekTally)
	if s.observations != nil {
		observations, err := s.observations.ListSince(ctx, since)
		if err != nil {
			s.logger.Error(ctx, "failed to load weekly rows", err)
			return nil, internalError("failed to load weekly rows", err)
		}
		for _, o := range observations {
			t, ok := byStudent[o.StudentID]
			if !ok {
				t = &weekTally{}
				byStudent[o.StudentID] = t
			}
			t.add(o)
		}
	}

	reports := make([]models.WeeklyReport, 0, len(risks))
	for _, r := range risks {
		wr := models.WeeklyReport{StudentID: r.StudentID, StudentName: r.Name, RiskLevel: r.RiskLevel}
		if t, ok := byStudent[r.StudentID]; ok {
			wr.AttendancePctWeek = t.attendancePct()
			wr.AvgScoreWeek = t.avgScore()
		}
		wr.Summary = weeklySummary(wr)
		reports = append(reports, wr)
	}

	s.logger.Info(ctx, "weekly reports built", logger.Fields{
		"students": len(reports),
		"since":    since.Format("2006-01-02"),
	})
	return reports, nil
}

// weekTally accumulates one student's rows inside the window.
type weekTally struct {
	present, sessions int
	scoreSum          float64
	exams             int
}

func (t *weekTally) add(o models.Observation) {
	switch o.Signal {
	case models.SignalAttendance:
		t.sessions++
		if o.Value >= 1 {
			t.present++
		}
	case models.SignalExam:
		t.exams++
		t.scoreSum += o.Value
	}
}

func (t *weekTally) attendancePct() *float64 {
	if t.sessions == 0 {
		return nil
	}
	v := utils.Round(float64(t.present)/float64(t.sessions)*100, 1)
	return &v
}

func (t *weekTally) avgScore() *float64 {
	if t.exams == 0 {
		return nil
	}
	v := utils.Round(t.scoreSum/float64(t.exams), 1)
	return &v
}

// weeklySummary renders the one-line summary used in reports and alert texts.
func weeklySummary(r models.WeeklyReport) string {
	parts := []string{"Student: " + r.StudentName + " (Risk: " + string(r.RiskLevel) + ")"}
	if r.AttendancePctWeek != nil {
		parts = append(parts, "Attendance (last 7 days): "+strconv.FormatFloat(*r.AttendancePctWeek, 'f', 1, 64)+"%")
	}
	if r.AvgScoreWeek != nil {
		parts = append(parts, "Avg Score (last 7 days): "+strconv.FormatFloat(*r.AvgScoreWeek, 'f', 1, 64))
	}
	return strings.Join(parts, " | ")
}
