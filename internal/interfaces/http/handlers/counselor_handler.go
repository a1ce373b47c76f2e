package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/application/service"
)

// CounselorHandler exposes counselor CRUD.
type CounselorHandler struct {
	svc service.CounselorAppService
}

func NewCounselorHandler(svc service.CounselorAppService) *CounselorHandler {
	return &CounselorHandler{svc: svc}
}

func (h *CounselorHandler) Create(c *gin.Context) {
	var req dto.CounselorRequest
	if err := bindJSON(c, &req); err != nil {
		dto.SendError(c, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), req.ToModel())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusCreated, created)
}

func (h *CounselorHandler) Get(c *gin.Context) {
	counselor, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, counselor)
}

func (h *CounselorHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"counselors": list})
}

// Update replaces the mutable fields of a counselor.
func (h *CounselorHandler) Update(c *gin.Context) {
	var req dto.CounselorRequest
	if err := bindJSON(c, &req); err != nil {
		dto.SendError(c, err)
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.ToModel())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, updated)
}

func (h *CounselorHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		dto.SendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
