package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// RiskAppService evaluates students against the active thresholds.
// RiskAppService 风险评估应用服务接口。
type RiskAppService interface {
	// EvaluateBatch evaluates every item in parallel. An invalid item gets its
	// own error entry and never aborts its siblings; an invalid config aborts
	// the whole batch before any evaluation starts.
	EvaluateBatch(ctx context.Context, metrics []models.StudentMetrics) (*dto.EvaluateResponse, error)

	// ListRisks evaluates the stored students, persists their latest levels
	// and returns the ones matching the filter.
	ListRisks(ctx context.Context, filter models.StudentFilter) ([]models.StudentRisk, error)

	// GetStudent returns one student's snapshot, fresh evaluation, signal tiers and contacts.
	GetStudent(ctx context.Context, studentID string) (*models.StudentDetails, error)
}

type riskAppServiceImpl struct {
	settings    SettingsAppService
	evaluator   *service.RiskEvaluator
	students    repository.StudentRepository
	contacts    repository.ContactRepository
	publisher   service.EventPublisher
	metrics     service.Metrics
	tracer      service.Tracer
	logger      logger.Logger
	workerLimit int
}

// NewRiskAppService creates a new RiskAppService. workers bounds the number
// of concurrent evaluations per batch.
func NewRiskAppService(
	settings SettingsAppService,
	evaluator *service.RiskEvaluator,
	students repository.StudentRepository,
	contacts repository.ContactRepository,
	publisher service.EventPublisher,
	metrics service.Metrics,
	tracer service.Tracer,
	log logger.Logger,
	workers int,
) RiskAppService {
	if workers <= 0 {
		workers = constants.DefaultBatchWorkers
	}
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	if tracer == nil {
		tracer = service.NoopTracer{}
	}
	return &riskAppServiceImpl{
		settings:    settings,
		evaluator:   evaluator,
		students:    students,
		contacts:    contacts,
		publisher:   publisher,
		metrics:     metrics,
		tracer:      tracer,
		logger:      log.WithComponent("risk"),
		workerLimit: workers,
	}
}

// activeThresholds loads the config and validates it once for the whole batch.
func (s *riskAppServiceImpl) activeThresholds(ctx context.Context) (models.ThresholdConfig, error) {
	cfg, err := s.settings.GetThresholds(ctx)
	if err != nil {
		return models.ThresholdConfig{}, err
	}
	if err := service.ValidateThresholds(cfg); err != nil {
		s.metrics.RecordValidationFailure("batch_config")
		s.logger.Error(ctx, "active thresholds are invalid, refusing to evaluate", err)
		return models.ThresholdConfig{}, err
	}
	return cfg, nil
}

// evaluateAll runs one evaluation per item on a bounded pool. Results keep
// the input order; errs[i] is set when item i failed validation. missing,
// when non-nil, holds the absent signals of each item.
func (s *riskAppServiceImpl) evaluateAll(ctx context.Context, items []models.StudentMetrics, missing [][]models.Signal, cfg models.ThresholdConfig) ([]models.RiskResult, []error, error) {
	results := make([]models.RiskResult, len(items))
	errs := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerLimit)
	for i := range items {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			var absent []models.Signal
			if missing != nil {
				absent = missing[i]
			}
			result, err := s.evaluator.EvaluatePartial(items[i], absent, cfg)
			if err != nil {
				errs[i] = err
				s.metrics.RecordValidationFailure("metrics")
				return nil
			}
			results[i] = result
			s.metrics.RecordEvaluation(string(result.RiskLevel), time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, errs, nil
}

func (s *riskAppServiceImpl) EvaluateBatch(ctx context.Context, metrics []models.StudentMetrics) (*dto.EvaluateResponse, error) {
	var resp *dto.EvaluateResponse
	err := s.tracer.Trace(ctx, "risk.evaluate_batch", map[string]interface{}{"batch.size": len(metrics)}, func(ctx context.Context) error {
		var err error
		resp, err = s.evaluateBatch(ctx, metrics)
		return err
	})
	return resp, err
}

func (s *riskAppServiceImpl) evaluateBatch(ctx context.Context, metrics []models.StudentMetrics) (*dto.EvaluateResponse, error) {
	start := time.Now()
	cfg, err := s.activeThresholds(ctx)
	if err != nil {
		return nil, err
	}

	results, errs, err := s.evaluateAll(ctx, metrics, nil, cfg)
	if err != nil {
		return nil, err
	}

	resp := &dto.EvaluateResponse{
		Results:    make([]dto.BatchItem, len(metrics)),
		Thresholds: cfg,
	}
	for i := range metrics {
		item := dto.BatchItem{StudentID: metrics[i].StudentID}
		if errs[i] != nil {
			item.Error = errors.ToErrorResponse(errs[i])
			resp.Failed++
		} else {
			r := results[i]
			item.Result = &r
			resp.Evaluated++
		}
		resp.Results[i] = item
	}

	s.metrics.RecordBatch(len(metrics), resp.Failed, time.Since(start))
	s.logger.Info(ctx, "batch evaluated", logger.Fields{
		"size":      len(metrics),
		"evaluated": resp.Evaluated,
		"failed":    resp.Failed,
	})
	publish(ctx, s.publisher, s.metrics, s.logger, models.NewEvent(constants.EventRiskEvaluated, "batch", map[string]interface{}{
		"size":      len(metrics),
		"evaluated": resp.Evaluated,
		"failed":    resp.Failed,
	}))
	return resp, nil
}

func (s *riskAppServiceImpl) ListRisks(ctx context.Context, filter models.StudentFilter) ([]models.StudentRisk, error) {
	if filter.RiskLevel != "" && !filter.RiskLevel.Valid() {
		return nil, errors.Invalid("risk_level", "must be one of: low medium high")
	}

	cfg, err := s.activeThresholds(ctx)
	if err != nil {
		return nil, err
	}

	// Stored levels may be stale, so filter on the fresh evaluation.
	students, err := s.students.List(ctx, models.StudentFilter{ClassName: filter.ClassName})
	if err != nil {
		s.logger.Error(ctx, "failed to list students", err)
		return nil, internalError("failed to list students", err)
	}

	items := make([]models.StudentMetrics, len(students))
	missing := make([][]models.Signal, len(students))
	for i, st := range students {
		items[i], missing[i] = st.Metrics()
	}
	results, errs, err := s.evaluateAll(ctx, items, missing, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]models.StudentRisk, 0, len(students))
	evaluated := make([]models.RiskResult, 0, len(students))
	for i, st := range students {
		if errs[i] != nil {
			s.logger.Warn(ctx, "skipping student with invalid stored metrics", logger.Fields{
				"student_id": st.StudentID,
				"error":      errs[i].Error(),
			})
			continue
		}
		evaluated = append(evaluated, results[i])
		if filter.RiskLevel != "" && results[i].RiskLevel != filter.RiskLevel {
			continue
		}
		out = append(out, models.StudentRisk{RiskResult: results[i], Name: st.Name, ClassName: st.ClassName})
	}

	if len(evaluated) > 0 {
		if err := s.students.UpdateRisk(ctx, evaluated); err != nil {
			s.logger.Warn(ctx, "failed to persist latest risk levels", logger.Fields{"error": err.Error()})
		}
	}
	return out, nil
}

func (s *riskAppServiceImpl) GetStudent(ctx context.Context, studentID string) (*models.StudentDetails, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, err
		}
		s.logger.Error(ctx, "failed to get student", err, logger.Fields{"student_id": studentID})
		return nil, internalError("failed to get student", err)
	}

	cfg, err := s.activeThresholds(ctx)
	if err != nil {
		return nil, err
	}
	metrics, missing := student.Metrics()
	result, err := s.evaluator.EvaluatePartial(metrics, missing, cfg)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.evaluator.Breakdown(metrics, missing, cfg)
	if err != nil {
		return nil, err
	}

	details := &models.StudentDetails{Student: *student, Risk: result, Breakdown: breakdown, Contacts: []models.Contact{}}
	if s.contacts != nil {
		contacts, err := s.contacts.ListByStudent(ctx, studentID)
		if err != nil {
			s.logger.Warn(ctx, "failed to load contacts", logger.Fields{"student_id": studentID, "error": err.Error()})
		}
		for _, c := range contacts {
			details.Contacts = append(details.Contacts, *c)
		}
	}
	return details, nil
}
