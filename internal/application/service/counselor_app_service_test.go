package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	repomocks "github.com/Aditya-max148/student-risk-dashboard/internal/domain/repository/mocks"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

func TestCounselorAppService_Create(t *testing.T) {
	repo := new(repomocks.MockCounselorRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Counselor) bool {
		return c.Email == "meera@school.edu" && c.Name == "Meera"
	})).Return(nil).Once()

	svc := NewCounselorAppService(repo, logger.NewNoopLogger())
	c, err := svc.Create(context.Background(), &models.Counselor{Name: "  Meera ", Email: " Meera@School.edu "})

	require.NoError(t, err)
	_, parseErr := uuid.Parse(c.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
	repo.AssertExpectations(t)
}

func TestCounselorAppService_Create_Invalid(t *testing.T) {
	repo := new(repomocks.MockCounselorRepository)
	svc := NewCounselorAppService(repo, logger.NewNoopLogger())

	_, err := svc.Create(context.Background(), &models.Counselor{Name: " ", Email: "nope"})

	require.Error(t, err)
	verr, ok := errors.AsValidationError(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"name", "email"}, verr.Fields())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCounselorAppService_Get_RejectsMalformedID(t *testing.T) {
	repo := new(repomocks.MockCounselorRepository)
	svc := NewCounselorAppService(repo, logger.NewNoopLogger())

	_, err := svc.Get(context.Background(), "42")

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestCounselorAppService_Get_NotFound(t *testing.T) {
	id := uuid.NewString()
	repo := new(repomocks.MockCounselorRepository)
	repo.On("FindByID", mock.Anything, id).Return(nil, errors.ErrNotFound("counselor", id)).Once()

	svc := NewCounselorAppService(repo, logger.NewNoopLogger())
	_, err := svc.Get(context.Background(), id)

	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestCounselorAppService_Update(t *testing.T) {
	id := uuid.NewString()
	existing := &models.Counselor{ID: id, Name: "Old", Email: "old@school.edu", Department: "Science"}
	repo := new(repomocks.MockCounselorRepository)
	repo.On("FindByID", mock.Anything, id).Return(existing, nil).Once()
	repo.On("Update", mock.Anything, mock.MatchedBy(func(c *models.Counselor) bool {
		return c.ID == id && c.Name == "New" && c.Department == ""
	})).Return(nil).Once()

	svc := NewCounselorAppService(repo, logger.NewNoopLogger())
	updated, err := svc.Update(context.Background(), id, &models.Counselor{Name: "New", Email: "new@school.edu"})

	require.NoError(t, err)
	assert.Equal(t, "new@school.edu", updated.Email)
	assert.Empty(t, updated.Department)
	repo.AssertExpectations(t)
}

func TestCounselorAppService_List_StoreError(t *testing.T) {
	repo := new(repomocks.MockCounselorRepository)
	repo.On("List", mock.Anything).Return(nil, stderrors.New("timeout")).Once()

	svc := NewCounselorAppService(repo, logger.NewNoopLogger())
	_, err := svc.List(context.Background())

	require.Error(t, err)
	assert.Equal(t, 500, errors.StatusOf(err))
}

func TestCounselorAppService_Delete(t *testing.T) {
	id := uuid.NewString()
	repo := new(repomocks.MockCounselorRepository)
	repo.On("Delete", mock.Anything, id).Return(nil).Once()

	svc := NewCounselorAppService(repo, logger.NewNoopLogger())
	require.NoError(t, svc.Delete(context.Background(), id))
	assert.True(t, errors.IsValidationError(svc.Delete(context.Background(), "bad-id")))
	repo.AssertExpectations(t)
}
