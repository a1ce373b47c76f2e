// Package repository 定义领域仓储接口
// 学生仓储负责学生汇总快照的持久化操作
package repository

import (
	"context"
	"time"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
)

// StudentUpdate carries the fields an upload contributes for one student.
// Nil fields are left untouched so that attendance, exam and fee files can
// arrive independently.
type StudentUpdate struct {
	StudentID      string
	Name           string
	ClassName      *string
	AttendancePct  *float64
	AvgScore       *float64
	FeeOverdueDays *int
}

// StudentRepository 定义学生仓储接口
// 实现类：internal/infrastructure/persistence/postgres/student_repo_impl.go
//
//go:generate mockery --name StudentRepository --output mocks --outpkg mocks
type StudentRepository interface {
	// ApplyUpdates 在单个事务中创建或合并学生快照
	// 返回：
	//   - int: 实际写入的学生数量
	//   - error: 写入失败时返回错误
	ApplyUpdates(ctx context.Context, updates []StudentUpdate) (int, error)

	// FindByID 根据学生 ID 查询学生
	// 返回：
	//   - error: 学生不存在时返回 NotFound 错误
	FindByID(ctx context.Context, studentID string) (*models.Student, error)

	// List returns students matching the filter, ordered by student_id.
	List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error)

	// UpdateRisk stores the latest evaluation for each student.
	UpdateRisk(ctx context.Context, results []models.RiskResult) error

	// Count returns the number of stored students.
	Count(ctx context.Context) (int64, error)
}

// ContactRepository persists parent and mentor contacts.
//
//go:generate mockery --name ContactRepository --output mocks --outpkg mocks
type ContactRepository interface {
	Save(ctx context.Context, contact *models.Contact) error
	ListByStudent(ctx context.Context, studentID string) ([]*models.Contact, error)
	Delete(ctx context.Context, id string) error
}

// ObservationRepository keeps dated attendance and exam rows.
//
//go:generate mockery --name ObservationRepository --output mocks --outpkg mocks
type ObservationRepository interface {
	SaveObservations(ctx context.Context, observations []models.Observation) error
	// ListSince returns the observations dated on or after since.
	ListSince(ctx context.Context, since time.Time) ([]models.Observation, error)
}
