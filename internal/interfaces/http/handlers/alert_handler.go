package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/application/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// AlertHandler triggers alerts and manages student contacts.
// AlertHandler 预警发送与联系人管理。
type AlertHandler struct {
	svc    service.AlertAppService
	logger logger.Logger
}

func NewAlertHandler(svc service.AlertAppService, log logger.Logger) *AlertHandler {
	return &AlertHandler{svc: svc, logger: log.WithComponent("alert_handler")}
}

// SendAlerts handles POST /api/v1/alerts/send.
func (h *AlertHandler) SendAlerts(c *gin.Context) {
	summary, err := h.svc.SendAlerts(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, summary)
}

// AddContact handles POST /api/v1/students/:id/contacts.
func (h *AlertHandler) AddContact(c *gin.Context) {
	var req dto.ContactRequest
	if err := bindJSON(c, &req); err != nil {
		dto.SendError(c, err)
		return
	}
	contact, err := h.svc.AddContact(c.Request.Context(), req.ToModel(c.Param("id")))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusCreated, contact)
}

// RemoveContact handles DELETE /api/v1/contacts/:id.
func (h *AlertHandler) RemoveContact(c *gin.Context) {
	if err := h.svc.RemoveContact(c.Request.Context(), c.Param("id")); err != nil {
		dto.SendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
