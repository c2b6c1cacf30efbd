package memo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/internal/domain/enrollment/enrollmenttest"
	"github.com/khoahotran/careerfolio/internal/domain/memo"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type memoRepoMock struct {
	mock.Mock
}

func (m *memoRepoMock) ListByLecture(ctx context.Context, enrollmentID, lectureID int64) ([]*memo.Memo, error) {
	args := m.Called(ctx, enrollmentID, lectureID)
	if list, ok := args.Get(0).([]*memo.Memo); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *memoRepoMock) Create(ctx context.Context, mm *memo.Memo) error {
	args := m.Called(ctx, mm)
	mm.ID = 77
	return args.Error(0)
}

func (m *memoRepoMock) Delete(ctx context.Context, memoID, userID int64) error {
	return m.Called(ctx, memoID, userID).Error(0)
}

func setup() (*MemoUseCase, *memoRepoMock) {
	store := enrollmenttest.New()
	store.AddCourse(enrollment.CoursePricing{CourseID: 1, Title: "Go"})
	store.AddLecture(enrollment.LectureRef{LectureID: 10, CourseID: 1, DurationSeconds: 300})
	store.AddEnrollment(enrollment.Enrollment{ID: 5, UserID: 2, CourseID: 1})

	repo := new(memoRepoMock)
	return NewMemoUseCase(repo, store, logger.NewNopLogger()), repo
}

func TestCreateMemo(t *testing.T) {
	uc, repo := setup()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(m *memo.Memo) bool {
		return m.EnrollmentID == 5 && m.LectureID == 10 && m.TimestampSeconds == 42
	})).Return(nil)

	m, err := uc.ExecuteCreate(context.Background(), CreateMemoInput{UserID: 2, LectureID: 10, TimestampSeconds: 42, Content: "channels!"})
	require.NoError(t, err)
	assert.Equal(t, int64(77), m.ID)
	repo.AssertExpectations(t)
}

func TestCreateMemo_Access(t *testing.T) {
	ctx := context.Background()

	t.Run("not enrolled", func(t *testing.T) {
		uc, _ := setup()
		_, err := uc.ExecuteCreate(ctx, CreateMemoInput{UserID: 3, LectureID: 10, Content: "hi"})
		assert.ErrorIs(t, err, apperror.ErrNotEnrolled)
	})

	t.Run("unknown lecture", func(t *testing.T) {
		uc, _ := setup()
		_, err := uc.ExecuteCreate(ctx, CreateMemoInput{UserID: 2, LectureID: 404, Content: "hi"})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("blank content", func(t *testing.T) {
		uc, repo := setup()
		_, err := uc.ExecuteCreate(ctx, CreateMemoInput{UserID: 2, LectureID: 10, Content: "   "})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestListMemos_ScopedToEnrollment(t *testing.T) {
	uc, repo := setup()
	repo.On("ListByLecture", mock.Anything, int64(5), int64(10)).Return([]*memo.Memo{{ID: 1, Content: "a"}}, nil)

	list, err := uc.ExecuteList(context.Background(), ListMemosInput{UserID: 2, LectureID: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteMemo_NotOwned(t *testing.T) {
	uc, repo := setup()
	repo.On("Delete", mock.Anything, int64(9), int64(2)).Return(apperror.NewNotFound("memo", "9"))

	err := uc.ExecuteDelete(context.Background(), DeleteMemoInput{UserID: 2, MemoID: 9})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
