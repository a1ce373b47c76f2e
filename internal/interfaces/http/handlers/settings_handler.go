package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/application/service"
	"github.com/Aditya-max148/student-risk-dashboard/internal/interfaces/http/middleware"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// SettingsHandler serves the active threshold config.
// SettingsHandler 阈值配置接口。
type SettingsHandler struct {
	svc    service.SettingsAppService
	logger logger.Logger
}

func NewSettingsHandler(svc service.SettingsAppService, log logger.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, logger: log.WithComponent("settings_handler")}
}

// GetSettings handles GET /api/v1/settings.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	cfg, err := h.svc.GetThresholds(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, dto.SettingsResponse{ThresholdConfig: cfg})
}

// ReplaceSettings handles PUT /api/v1/settings. The body must carry all six
// thresholds; it replaces the stored config as a whole.
func (h *SettingsHandler) ReplaceSettings(c *gin.Context) {
	var req dto.ThresholdsRequest
	if err := bindJSON(c, &req); err != nil {
		dto.SendError(c, err)
		return
	}

	settings, err := h.svc.ReplaceThresholds(c.Request.Context(), req.ToModel(), middleware.AdminSubject(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, dto.SettingsResponse{
		ThresholdConfig: settings.Thresholds,
		Version:         settings.Version,
		UpdatedBy:       settings.UpdatedBy,
	})
}
