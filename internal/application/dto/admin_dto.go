package dto

import (
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
)

// CounselorRequest 创建或整体替换辅导员
type CounselorRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"omitempty,max=40"`
	Department string `json:"department" binding:"omitempty,max=200"`
}

// ToModel builds a counselor without id or timestamps.
func (r *CounselorRequest) ToModel() *models.Counselor {
	return &models.Counselor{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Department: r.Department,
	}
}

// ContactRequest 添加学生联系人
type ContactRequest struct {
	Type  constants.ContactType `json:"type" binding:"required,oneof=parent mentor"`
	Name  string                `json:"name" binding:"required,max=200"`
	Email string                `json:"email" binding:"omitempty,email"`
	Phone string                `json:"phone" binding:"omitempty,max=40"`
}

// ToModel builds a contact for the given student.
func (r *ContactRequest) ToModel(studentID string) *models.Contact {
	return &models.Contact{
		StudentID: studentID,
		Type:      r.Type,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
	}
}

// UploadResponse 上传处理结果
type UploadResponse struct {
	BatchID   string               `json:"batch_id"`
	Type      constants.UploadType `json:"type"`
	Processed int                  `json:"processed"`
	Skipped   int                  `json:"skipped"`
	Students  int                  `json:"students"`
}

// NewUploadResponse maps a stored batch to the response body.
func NewUploadResponse(b *models.UploadBatch) *UploadResponse {
	return &UploadResponse{
		BatchID:   b.BatchID,
		Type:      b.Type,
		Processed: b.Processed,
		Skipped:   b.Skipped,
		Students:  b.Students,
	}
}
