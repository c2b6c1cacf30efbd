package learn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/internal/domain/enrollment/enrollmenttest"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/metrics"
)

const (
	testUser       int64 = 7
	testCourse     int64 = 11
	testEnrollment int64 = 501
)

// seedCourse creates a course with n lectures of 100 seconds (ids 1..n) and
// enrolls testUser.
func seedCourse(n int) *enrollmenttest.Store {
	store := enrollmenttest.New()
	store.AddCourse(enrollment.CoursePricing{CourseID: testCourse, Title: "Go in Practice"})
	for i := 1; i <= n; i++ {
		store.AddLecture(enrollment.LectureRef{LectureID: int64(i), CourseID: testCourse, DurationSeconds: 100})
	}
	store.AddEnrollment(enrollment.Enrollment{ID: testEnrollment, UserID: testUser, CourseID: testCourse})
	return store
}

func newUseCase(store *enrollmenttest.Store) *RecordProgressUseCase {
	return NewRecordProgressUseCase(store, metrics.NewNopRecorder(), logger.NewNopLogger())
}

func TestRecordProgress_CompletionThreshold(t *testing.T) {
	tests := []struct {
		name      string
		watched   int
		completed bool
		percent   int
	}{
		{"just below", 89, false, 0},
		{"exactly ninety percent", 90, true, 25},
		{"fully watched", 100, true, 25},
		{"past the end", 130, true, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seedCourse(4)
			out, err := newUseCase(store).Execute(context.Background(), RecordProgressInput{
				UserID: testUser, LectureID: 1, WatchedSeconds: tt.watched,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.completed, out.Completed)
			assert.Equal(t, tt.percent, out.NewPercentage)
			assert.Equal(t, tt.percent, store.Enrollment(testEnrollment).ProgressPercent)

			p, ok := store.Progress(testEnrollment, 1)
			require.True(t, ok)
			assert.Equal(t, tt.watched, p.WatchedSeconds)
		})
	}
}

func TestRecordProgress_ZeroDurationNeverCompletes(t *testing.T) {
	store := seedCourse(1)
	store.AddLecture(enrollment.LectureRef{LectureID: 99, CourseID: testCourse, DurationSeconds: 0})

	out, err := newUseCase(store).Execute(context.Background(), RecordProgressInput{
		UserID: testUser, LectureID: 99, WatchedSeconds: 5000,
	})
	require.NoError(t, err)
	assert.False(t, out.Completed)
	assert.Equal(t, 0, out.NewPercentage)
}

func TestRecordProgress_Percentages(t *testing.T) {
	store := seedCourse(4)
	uc := newUseCase(store)
	ctx := context.Background()

	expected := []int{25, 50, 75, 100}
	for i, want := range expected {
		out, err := uc.Execute(ctx, RecordProgressInput{UserID: testUser, LectureID: int64(i + 1), WatchedSeconds: 95})
		require.NoError(t, err)
		assert.Equal(t, want, out.NewPercentage)
	}

	// Rewatching from the start overwrites the row and drops the completion.
	out, err := uc.Execute(ctx, RecordProgressInput{UserID: testUser, LectureID: 2, WatchedSeconds: 10})
	require.NoError(t, err)
	assert.False(t, out.Completed)
	assert.Equal(t, 75, out.NewPercentage)
}

func TestRecordProgress_RepeatedReportIsIdempotent(t *testing.T) {
	store := seedCourse(4)
	uc := newUseCase(store)
	ctx := context.Background()
	in := RecordProgressInput{UserID: testUser, LectureID: 2, WatchedSeconds: 95}

	first, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	firstRow, ok := store.Progress(testEnrollment, 2)
	require.True(t, ok)

	second, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	secondRow, ok := store.Progress(testEnrollment, 2)
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, 25, second.NewPercentage)
	assert.Equal(t, firstRow, secondRow)
	assert.Equal(t, enrollment.LectureProgress{EnrollmentID: testEnrollment, LectureID: 2, WatchedSeconds: 95, Completed: true}, secondRow)
	assert.Equal(t, 25, store.Enrollment(testEnrollment).ProgressPercent)
}

func TestRecordProgress_RoundsPercentage(t *testing.T) {
	store := seedCourse(3)
	out, err := newUseCase(store).Execute(context.Background(), RecordProgressInput{UserID: testUser, LectureID: 3, WatchedSeconds: 100})
	require.NoError(t, err)
	assert.Equal(t, 33, out.NewPercentage)

	out, err = newUseCase(store).Execute(context.Background(), RecordProgressInput{UserID: testUser, LectureID: 2, WatchedSeconds: 100})
	require.NoError(t, err)
	assert.Equal(t, 67, out.NewPercentage)
}

func TestRecordProgress_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("lecture not found", func(t *testing.T) {
		store := seedCourse(2)
		_, err := newUseCase(store).Execute(ctx, RecordProgressInput{UserID: testUser, LectureID: 404, WatchedSeconds: 10})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("not enrolled", func(t *testing.T) {
		store := seedCourse(2)
		_, err := newUseCase(store).Execute(ctx, RecordProgressInput{UserID: 8, LectureID: 1, WatchedSeconds: 10})
		assert.ErrorIs(t, err, apperror.ErrNotEnrolled)
		assert.Equal(t, 403, apperror.ToHTTPStatus(err))
	})

	t.Run("negative seconds", func(t *testing.T) {
		store := seedCourse(2)
		_, err := newUseCase(store).Execute(ctx, RecordProgressInput{UserID: testUser, LectureID: 1, WatchedSeconds: -1})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}

func TestRecordProgress_FailureLeavesNoPartialWrite(t *testing.T) {
	store := seedCourse(2)
	boom := errors.New("connection reset")
	store.Fail["UpdateProgressPercent"] = boom

	_, err := newUseCase(store).Execute(context.Background(), RecordProgressInput{UserID: testUser, LectureID: 1, WatchedSeconds: 100})
	require.ErrorIs(t, err, boom)

	_, ok := store.Progress(testEnrollment, 1)
	assert.False(t, ok, "progress row must be rolled back")
	assert.Equal(t, 0, store.Enrollment(testEnrollment).ProgressPercent)
}
