package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/careerfolio/internal/domain/cart"
	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/internal/domain/enrollment/enrollmenttest"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type cartRepoMock struct {
	mock.Mock
}

func (m *cartRepoMock) List(ctx context.Context, userID int64) ([]*cart.Item, error) {
	args := m.Called(ctx, userID)
	if items, ok := args.Get(0).([]*cart.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *cartRepoMock) Contains(ctx context.Context, userID, courseID int64) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *cartRepoMock) Add(ctx context.Context, userID, courseID int64) error {
	return m.Called(ctx, userID, courseID).Error(0)
}

func (m *cartRepoMock) Remove(ctx context.Context, userID, courseID int64) error {
	return m.Called(ctx, userID, courseID).Error(0)
}

func TestAddToCart(t *testing.T) {
	ctx := context.Background()
	enrollments := enrollmenttest.New()
	enrollments.AddEnrollment(enrollment.Enrollment{ID: 1, UserID: 4, CourseID: 8})

	t.Run("adds course", func(t *testing.T) {
		repo := new(cartRepoMock)
		repo.On("Contains", mock.Anything, int64(4), int64(9)).Return(false, nil)
		repo.On("Add", mock.Anything, int64(4), int64(9)).Return(nil)

		err := NewCartUseCase(repo, enrollments, logger.NewNopLogger()).ExecuteAdd(ctx, CartItemInput{UserID: 4, CourseID: 9})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("already enrolled", func(t *testing.T) {
		repo := new(cartRepoMock)
		err := NewCartUseCase(repo, enrollments, logger.NewNopLogger()).ExecuteAdd(ctx, CartItemInput{UserID: 4, CourseID: 8})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already in cart", func(t *testing.T) {
		repo := new(cartRepoMock)
		repo.On("Contains", mock.Anything, int64(4), int64(9)).Return(true, nil)

		err := NewCartUseCase(repo, enrollments, logger.NewNopLogger()).ExecuteAdd(ctx, CartItemInput{UserID: 4, CourseID: 9})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})
}

func TestRemoveFromCart(t *testing.T) {
	repo := new(cartRepoMock)
	repo.On("Remove", mock.Anything, int64(4), int64(9)).Return(nil)

	err := NewCartUseCase(repo, enrollmenttest.New(), logger.NewNopLogger()).ExecuteRemove(context.Background(), CartItemInput{UserID: 4, CourseID: 9})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
