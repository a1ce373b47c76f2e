package dto

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
)

// traceIDKey is the gin context key the tracing middleware stores the trace id under.
const traceIDKey = "trace_id"

// APIResponse 通用 API 响应结构
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO 错误信息 DTO
type ErrorDTO struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Description string                 `json:"description,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse 创建成功响应
func SuccessResponse(data interface{}, traceID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse 创建错误响应
func ErrorResponse(err error, traceID string) *APIResponse {
	var errorDTO *ErrorDTO

	if appErr, ok := errors.AsAppError(err); ok {
		errorDTO = &ErrorDTO{
			Code:        string(appErr.Code()),
			Message:     appErr.Error(),
			Description: appErr.Description(),
			Details:     appErr.Metadata(),
		}
		if len(errorDTO.Details) == 0 {
			errorDTO.Details = nil
		}
	} else {
		errorDTO = &ErrorDTO{
			Code:        string(errors.CodeInternal),
			Message:     "Internal server error",
			Description: "The server encountered an unexpected condition.",
		}
	}

	return &APIResponse{
		Success:   false,
		Error:     errorDTO,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

// SendSuccess writes data in the success envelope.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse(data, c.GetString(traceIDKey)))
}

// SendError writes err in the error envelope with the status the error maps to
// and aborts the handler chain.
func SendError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.StatusOf(err), ErrorResponse(err, c.GetString(traceIDKey)))
}
