package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	repomocks "github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository/mocks"
	domainservice "github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	svcmocks "github.com/Aditya-max148/student-risk-dashboard/internal/domain/service/mocks"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// staticSettings serves a fixed config without touching a store.
type staticSettings struct {
	cfg models.ThresholdConfig
}

func (s *staticSettings) GetThresholds(ctx context.Context) (models.ThresholdConfig, error) {
	return s.cfg, nil
}

func (s *staticSettings) GetSettings(ctx context.Context) (*models.Settings, error) {
	return &models.Settings{Thresholds: s.cfg, Version: 1}, nil
}

func (s *staticSettings) ReplaceThresholds(ctx context.Context, cfg models.ThresholdConfig, updatedBy string) (*models.Settings, error) {
	s.cfg = cfg
	return &models.Settings{Thresholds: cfg, Version: 2, UpdatedBy: updatedBy}, nil
}

func ptrTo[T any](v T) *T { return &v }

// recordingTracer keeps the operation names and attributes it was asked to trace.
type recordingTracer struct {
	operations []string
	attrs      []map[string]interface{}
}

func (r *recordingTracer) Trace(ctx context.Context, operation string, attrs map[string]interface{}, fn func(context.Context) error) error {
	r.operations = append(r.operations, operation)
	r.attrs = append(r.attrs, attrs)
	return fn(ctx)
}

func newTestRiskService(t *testing.T, cfg models.ThresholdConfig, students *repomocks.MockStudentRepository, contacts *repomocks.MockContactRepository, publisher *svcmocks.MockEventPublisher) RiskAppService {
	t.Helper()
	evaluator, err := domainservice.NewRiskEvaluator(domainservice.DefaultWeights())
	require.NoError(t, err)
	var pub domainservice.EventPublisher
	if publisher != nil {
		pub = publisher
	}
	return NewRiskAppService(&staticSettings{cfg: cfg}, evaluator, students, contacts, pub, nil, nil, logger.NewNoopLogger(), 4)
}

func TestRiskAppService_EvaluateBatch_RunsInsideSpan(t *testing.T) {
	evaluator, err := domainservice.NewRiskEvaluator(domainservice.DefaultWeights())
	require.NoError(t, err)
	tracer := &recordingTracer{}
	svc := NewRiskAppService(&staticSettings{cfg: models.DefaultThresholds()}, evaluator, nil, nil, nil, nil, tracer, logger.NewNoopLogger(), 2)

	resp, err := svc.EvaluateBatch(context.Background(), []models.StudentMetrics{
		{StudentID: "A", AttendancePct: 90, AvgScore: 90},
		{StudentID: "B", AttendancePct: 50, AvgScore: 90},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Evaluated)
	assert.Equal(t, []string{"risk.evaluate_batch"}, tracer.operations)
	assert.Equal(t, 2, tracer.attrs[0]["batch.size"])
}

func TestRiskAppService_EvaluateBatch_IsolatesInvalidItems(t *testing.T) {
	publisher := new(svcmocks.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e models.Event) bool {
		return e.Type == constants.EventRiskEvaluated
	})).Return(nil).Once()

	svc := newTestRiskService(t, models.DefaultThresholds(), new(repomocks.MockStudentRepository), new(repomocks.MockContactRepository), publisher)

	batch := []models.StudentMetrics{
		{StudentID: "A", AttendancePct: 50, AvgScore: 80, FeeOverdueDays: 0},
		{StudentID: "B", AttendancePct: math.NaN(), AvgScore: 80},
		{StudentID: "C", AttendancePct: 90, AvgScore: 40, FeeOverdueDays: 40},
		{StudentID: "D", AttendancePct: 90, AvgScore: 90, FeeOverdueDays: -1},
	}

	resp, err := svc.EvaluateBatch(context.Background(), batch)
	require.NoError(t, err)

	require.Len(t, resp.Results, 4)
	assert.Equal(t, 2, resp.Evaluated)
	assert.Equal(t, 2, resp.Failed)

	assert.Equal(t, "A", resp.Results[0].StudentID)
	require.NotNil(t, resp.Results[0].Result)
	assert.Equal(t, models.RiskLevelMedium, resp.Results[0].Result.RiskLevel)

	assert.Nil(t, resp.Results[1].Result)
	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, string(errors.CodeValidation), resp.Results[1].Error.Code)
	assert.Contains(t, resp.Results[1].Error.Details, "attendance_pct")

	require.NotNil(t, resp.Results[2].Result)
	assert.Equal(t, models.RiskLevelHigh, resp.Results[2].Result.RiskLevel)

	require.NotNil(t, resp.Results[3].Error)
	assert.Contains(t, resp.Results[3].Error.Details, "fee_overdue_days")
	publisher.AssertExpectations(t)
}

func TestRiskAppService_EvaluateBatch_InvalidConfigAbortsBatch(t *testing.T) {
	cfg := models.DefaultThresholds()
	cfg.ScoreLow = 90

	svc := newTestRiskService(t, cfg, new(repomocks.MockStudentRepository), new(repomocks.MockContactRepository), nil)
	_, err := svc.EvaluateBatch(context.Background(), []models.StudentMetrics{{StudentID: "A", AttendancePct: 90, AvgScore: 90}})

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestRiskAppService_EvaluateBatch_LargeBatchKeepsOrder(t *testing.T) {
	svc := newTestRiskService(t, models.DefaultThresholds(), new(repomocks.MockStudentRepository), new(repomocks.MockContactRepository), nil)

	batch := make([]models.StudentMetrics, 200)
	for i := range batch {
		batch[i] = models.StudentMetrics{StudentID: string(rune('a'+i%26)) + string(rune('0'+i%10)), AttendancePct: float64(i % 101), AvgScore: 70}
	}
	resp, err := svc.EvaluateBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Evaluated)
	for i, item := range resp.Results {
		assert.Equal(t, batch[i].StudentID, item.StudentID)
		require.NotNil(t, item.Result)
		expected, err := domainservice.Evaluate(batch[i], models.DefaultThresholds())
		require.NoError(t, err)
		assert.Equal(t, expected, *item.Result)
	}
}

func TestRiskAppService_ListRisks_FiltersOnFreshLevel(t *testing.T) {
	students := new(repomocks.MockStudentRepository)
	stored := []*models.Student{
		// Stored level is stale; the fresh evaluation is high.
		{StudentID: "S1", Name: "Asha", ClassName: "10A", AttendancePct: ptrTo(40.0), AvgScore: ptrTo(30.0), FeeOverdueDays: ptrTo(40), RiskLevel: models.RiskLevelLow},
		{StudentID: "S2", Name: "Ben", ClassName: "10A", AttendancePct: ptrTo(95.0), AvgScore: ptrTo(90.0), FeeOverdueDays: ptrTo(0)},
		{StudentID: "S3", Name: "Chen", ClassName: "10A", AttendancePct: ptrTo(50.0), AvgScore: ptrTo(80.0), FeeOverdueDays: ptrTo(0)},
	}
	students.On("List", mock.Anything, models.StudentFilter{ClassName: "10A"}).Return(stored, nil).Once()
	students.On("UpdateRisk", mock.Anything, mock.MatchedBy(func(rs []models.RiskResult) bool {
		return len(rs) == 3
	})).Return(nil).Once()

	svc := newTestRiskService(t, models.DefaultThresholds(), students, new(repomocks.MockContactRepository), nil)
	risks, err := svc.ListRisks(context.Background(), models.StudentFilter{ClassName: "10A", RiskLevel: models.RiskLevelHigh})

	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, "S1", risks[0].StudentID)
	assert.Equal(t, "Asha", risks[0].Name)
	assert.Equal(t, "10A", risks[0].ClassName)
	assert.Equal(t, models.RiskLevelHigh, risks[0].RiskLevel)
	students.AssertExpectations(t)
}

func TestRiskAppService_ListRisks_RejectsUnknownLevel(t *testing.T) {
	svc := newTestRiskService(t, models.DefaultThresholds(), new(repomocks.MockStudentRepository), new(repomocks.MockContactRepository), nil)
	_, err := svc.ListRisks(context.Background(), models.StudentFilter{RiskLevel: "critical"})

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestRiskAppService_GetStudent(t *testing.T) {
	students := new(repomocks.MockStudentRepository)
	contacts := new(repomocks.MockContactRepository)
	students.On("FindByID", mock.Anything, "S1").Return(&models.Student{
		StudentID: "S1", Name: "Asha", AttendancePct: ptrTo(55.0), AvgScore: ptrTo(58.0), FeeOverdueDays: ptrTo(20),
	}, nil).Once()
	contacts.On("ListByStudent", mock.Anything, "S1").Return([]*models.Contact{
		{ID: "c1", StudentID: "S1", Type: constants.ContactTypeParent, Name: "Parent", Email: "p@example.com"},
	}, nil).Once()

	svc := newTestRiskService(t, models.DefaultThresholds(), students, contacts, nil)
	details, err := svc.GetStudent(context.Background(), "S1")

	require.NoError(t, err)
	assert.Equal(t, models.RiskLevelHigh, details.Risk.RiskLevel)
	assert.Equal(t, models.RiskLevelHigh, details.Breakdown.Attendance.Level)
	assert.Equal(t, models.RiskLevelMedium, details.Breakdown.Exam.Level)
	assert.Equal(t, models.RiskLevelMedium, details.Breakdown.Fee.Level)
	assert.Len(t, details.Contacts, 1)
}

func TestRiskAppService_GetStudent_NotFound(t *testing.T) {
	students := new(repomocks.MockStudentRepository)
	students.On("FindByID", mock.Anything, "missing").Return(nil, errors.ErrNotFound("student", "missing")).Once()

	svc := newTestRiskService(t, models.DefaultThresholds(), students, new(repomocks.MockContactRepository), nil)
	_, err := svc.GetStudent(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRiskAppService_ListRisks_MissingSignalsAreNotZeros(t *testing.T) {
	students := new(repomocks.MockStudentRepository)
	stored := []*models.Student{
		// Only a fee file mentioned S1, paid in full.
		{StudentID: "S1", Name: "Ann", FeeOverdueDays: ptrTo(0)},
		// Only an attendance file mentioned S2, fully present.
		{StudentID: "S2", Name: "Bob", AttendancePct: ptrTo(100.0)},
	}
	students.On("List", mock.Anything, models.StudentFilter{}).Return(stored, nil).Once()
	students.On("UpdateRisk", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newTestRiskService(t, models.DefaultThresholds(), students, new(repomocks.MockContactRepository), nil)
	risks, err := svc.ListRisks(context.Background(), models.StudentFilter{})

	require.NoError(t, err)
	require.Len(t, risks, 2)
	for _, r := range risks {
		assert.Equal(t, models.RiskLevelLow, r.RiskLevel, r.StudentID)
		assert.Equal(t, 0, r.FlagCount(), r.StudentID)
		assert.Equal(t, 0.0, r.RiskScore, r.StudentID)
	}
	assert.Equal(t, []models.Signal{models.SignalAttendance, models.SignalExam}, risks[0].MissingSignals)
	assert.Equal(t, []models.Signal{models.SignalExam, models.SignalFee}, risks[1].MissingSignals)
}

func TestRiskAppService_GetStudent_MarksMissingSignals(t *testing.T) {
	students := new(repomocks.MockStudentRepository)
	students.On("FindByID", mock.Anything, "S9").Return(&models.Student{
		StudentID: "S9", Name: "Dev", AttendancePct: ptrTo(50.0),
	}, nil).Once()
	contacts := new(repomocks.MockContactRepository)
	contacts.On("ListByStudent", mock.Anything, "S9").Return([]*models.Contact{}, nil).Once()

	svc := newTestRiskService(t, models.DefaultThresholds(), students, contacts, nil)
	details, err := svc.GetStudent(context.Background(), "S9")

	require.NoError(t, err)
	assert.Equal(t, 1, details.Risk.AttendanceRisk)
	assert.Equal(t, 0, details.Risk.ExamRisk)
	assert.Equal(t, models.RiskLevelMedium, details.Risk.RiskLevel)
	assert.True(t, details.Breakdown.Exam.Missing)
	assert.True(t, details.Breakdown.Fee.Missing)
	assert.Equal(t, models.RiskLevelHigh, details.Breakdown.Attendance.Level)
}
