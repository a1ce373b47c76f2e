package models

import (
	"time"

	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
)

// Contact is a parent or mentor who receives alerts for a student.
type Contact struct {
	ID        string                `json:"id"`
	StudentID string                `json:"student_id" validate:"required"`
	Type      constants.ContactType `json:"type" validate:"required,oneof=parent mentor"`
	Name      string                `json:"name" validate:"required"`
	Email     string                `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string                `json:"phone,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// Counselor is a staff member managed from the admin pages.
type Counselor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name" validate:"required"`
	Email      string    `json:"email" validate:"required,email"`
	Phone      string    `json:"phone,omitempty"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
