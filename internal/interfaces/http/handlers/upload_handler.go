package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/application/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// UploadHandler accepts tabular uploads.
// UploadHandler 处理 CSV 上传。
type UploadHandler struct {
	svc    service.UploadAppService
	logger logger.Logger
}

func NewUploadHandler(svc service.UploadAppService, log logger.Logger) *UploadHandler {
	return &UploadHandler{svc: svc, logger: log.WithComponent("upload_handler")}
}

// Upload handles POST /api/v1/upload/:type with a multipart "file" field.
func (h *UploadHandler) Upload(c *gin.Context) {
	uploadType := constants.UploadType(c.Param("type"))
	if !uploadType.Valid() {
		dto.SendError(c, errors.Invalid("type", "must be one of attendance, exam_results, fee_payments"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		dto.SendError(c, errors.Invalid("file", "is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		dto.SendError(c, errors.ErrInvalidRequest("cannot read uploaded file").WithCause(err))
		return
	}
	defer f.Close()

	batch, err := h.svc.Ingest(c.Request.Context(), uploadType, f)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	h.logger.Info(c.Request.Context(), "Upload processed", logger.Fields{
		"batch_id":  batch.BatchID,
		"type":      string(batch.Type),
		"file":      fh.Filename,
		"processed": batch.Processed,
		"skipped":   batch.Skipped,
	})
	dto.SendSuccess(c, http.StatusCreated, dto.NewUploadResponse(batch))
}

// RecentBatches handles GET /api/v1/upload/batches?limit=.
func (h *UploadHandler) RecentBatches(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			dto.SendError(c, errors.Invalid("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	batches, err := h.svc.RecentBatches(c.Request.Context(), limit)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	out := make([]*dto.UploadResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, dto.NewUploadResponse(b))
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"batches": out})
}
