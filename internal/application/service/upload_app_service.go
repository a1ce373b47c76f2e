package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// UploadAppService ingests attendance, exam and fee files into student snapshots.
// UploadAppService 指标文件导入应用服务接口。
type UploadAppService interface {
	// Ingest parses r as a CSV file of the given type and merges the
	// per-student aggregates into the stored snapshots.
	Ingest(ctx context.Context, uploadType constants.UploadType, r io.Reader) (*models.UploadBatch, error)

	// RecentBatches lists the latest ingested files, newest first.
	RecentBatches(ctx context.Context, limit int) ([]*models.UploadBatch, error)
}

type uploadAppServiceImpl struct {
	students     repository.StudentRepository
	uploads      repository.UploadRepository
	observations repository.ObservationRepository
	publisher    service.EventPublisher
	metrics      service.Metrics
	tracer       service.Tracer
	logger       logger.Logger
	now          func() time.Time
}

// NewUploadAppService creates a new UploadAppService. uploads and
// observations may be nil, which disables batch history and weekly data.
func NewUploadAppService(
	students repository.StudentRepository,
	uploads repository.UploadRepository,
	observations repository.ObservationRepository,
	publisher service.EventPublisher,
	metrics service.Metrics,
	tracer service.Tracer,
	log logger.Logger,
) UploadAppService {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	if tracer == nil {
		tracer = service.NoopTracer{}
	}
	return &uploadAppServiceImpl{
		students:     students,
		uploads:      uploads,
		observations: observations,
		publisher:    publisher,
		metrics:      metrics,
		tracer:       tracer,
		logger:       log.WithComponent("upload"),
		now:          time.Now,
	}
}

func (s *uploadAppServiceImpl) Ingest(ctx context.Context, uploadType constants.UploadType, r io.Reader) (*models.UploadBatch, error) {
	var batch *models.UploadBatch
	err := s.tracer.Trace(ctx, "upload.ingest", map[string]interface{}{"upload.type": string(uploadType)}, func(ctx context.Context) error {
		var err error
		batch, err = s.ingest(ctx, uploadType, r)
		return err
	})
	return batch, err
}

func (s *uploadAppServiceImpl) ingest(ctx context.Context, uploadType constants.UploadType, r io.Reader) (*models.UploadBatch, error) {
	if !uploadType.Valid() {
		s.metrics.RecordValidationFailure("upload")
		return nil, errors.Invalid("type", "must be one of: attendance exam_results fee_payments")
	}

	now := s.now().UTC()
	parsed, err := parseUpload(uploadType, r, now)
	if err != nil {
		s.metrics.RecordValidationFailure("upload")
		s.logger.Info(ctx, "rejected upload", logger.Fields{"type": string(uploadType), "error": err.Error()})
		return nil, err
	}

	written := 0
	if len(parsed.updates) > 0 {
		written, err = s.students.ApplyUpdates(ctx, parsed.updates)
		if err != nil {
			s.logger.Error(ctx, "failed to store upload", err, logger.Fields{"type": string(uploadType)})
			return nil, internalError("failed to store upload", err)
		}
	}

	if s.observations != nil && len(parsed.observations) > 0 {
		if err := s.observations.SaveObservations(ctx, parsed.observations); err != nil {
			s.logger.Warn(ctx, "failed to store dated rows, weekly report will miss them", logger.Fields{
				"type":  string(uploadType),
				"rows":  len(parsed.observations),
				"error": err.Error(),
			})
		}
	}

	batch := &models.UploadBatch{
		BatchID:    uuid.NewString(),
		Type:       uploadType,
		Processed:  parsed.processed,
		Skipped:    parsed.skipped,
		Students:   written,
		UploadedAt: now,
	}
	if s.uploads != nil {
		if err := s.uploads.Save(ctx, batch); err != nil {
			s.logger.Warn(ctx, "failed to record upload batch", logger.Fields{"batch_id": batch.BatchID, "error": err.Error()})
		}
	}

	s.metrics.RecordUpload(string(uploadType), batch.Processed, batch.Skipped)
	s.logger.Info(ctx, "upload processed", logger.Fields{
		"batch_id":  batch.BatchID,
		"type":      string(uploadType),
		"processed": batch.Processed,
		"skipped":   batch.Skipped,
		"students":  batch.Students,
	})
	publish(ctx, s.publisher, s.metrics, s.logger, models.NewEvent(constants.EventUploadProcessed, batch.BatchID, batch))
	return batch, nil
}

func (s *uploadAppServiceImpl) RecentBatches(ctx context.Context, limit int) ([]*models.UploadBatch, error) {
	if s.uploads == nil {
		return []*models.UploadBatch{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	batches, err := s.uploads.ListRecent(ctx, limit)
	if err != nil {
		return nil, internalError("failed to list uploads", err)
	}
	return batches, nil
}
