package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

type contactRepository struct {
	db  *gorm.DB
	log logger.Logger
}

// NewContactRepository creates a gorm-based contact repository.
func NewContactRepository(db *gorm.DB, log logger.Logger) repository.ContactRepository {
	return &contactRepository{db: db, log: log.WithComponent("contact_repo")}
}

func (r *contactRepository) Save(ctx context.Context, contact *models.Contact) error {
	rec := contactRecord{
		ID:        contact.ID,
		StudentID: contact.StudentID,
		Type:      string(contact.Type),
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		CreatedAt: contact.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		r.log.Error(ctx, "Failed to save contact", err, logger.Fields{"student_id": contact.StudentID})
		return mapDBErr(err, "contact")
	}
	return nil
}

func (r *contactRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.Contact, error) {
	var recs []contactRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at").
		Find(&recs).Error
	if err != nil {
		return nil, mapDBErr(err, "contacts")
	}
	out := make([]*models.Contact, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out, nil
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&contactRecord{})
	if result.Error != nil {
		return mapDBErr(result.Error, "contact")
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound("contact", id)
	}
	return nil
}
