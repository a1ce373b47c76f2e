package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/application/service"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
)

// RiskHandler serves risk evaluation and the per-student view.
type RiskHandler struct {
	svc service.RiskAppService
}

func NewRiskHandler(svc service.RiskAppService) *RiskHandler {
	return &RiskHandler{svc: svc}
}

// Evaluate handles POST /api/v1/risk/evaluate.
func (h *RiskHandler) Evaluate(c *gin.Context) {
	var req dto.EvaluateRequest
	if err := bindJSON(c, &req); err != nil {
		dto.SendError(c, err)
		return
	}
	resp, err := h.svc.EvaluateBatch(c.Request.Context(), req.Students)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// ListRisks handles GET /api/v1/risk?class_name=&risk_level=.
func (h *RiskHandler) ListRisks(c *gin.Context) {
	var filter models.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		dto.SendError(c, bindError(err))
		return
	}
	risks, err := h.svc.ListRisks(c.Request.Context(), filter)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, dto.RiskListResponse{Risk: risks})
}

// GetStudent handles GET /api/v1/students/:id.
func (h *RiskHandler) GetStudent(c *gin.Context) {
	details, err := h.svc.GetStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, details)
}
