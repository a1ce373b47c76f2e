package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/application/service"
)

// ReportHandler serves summary reports and the CSV export.
type ReportHandler struct {
	svc service.ReportAppService
}

func NewReportHandler(svc service.ReportAppService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Summary handles GET /api/v1/reports/summary.
func (h *ReportHandler) Summary(c *gin.Context) {
	report, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, report)
}

// Weekly handles GET /api/v1/reports/weekly.
func (h *ReportHandler) Weekly(c *gin.Context) {
	reports, err := h.svc.Weekly(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"reports": reports, "total": len(reports)})
}

// ExportCSV handles GET /api/v1/reports/export.csv. The file is rendered
// into memory first so a failure still yields a JSON error envelope.
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(c.Request.Context(), &buf); err != nil {
		dto.SendError(c, err)
		return
	}
	filename := fmt.Sprintf("student-risk-%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
