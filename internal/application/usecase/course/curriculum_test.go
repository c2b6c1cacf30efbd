package course

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/careerfolio/internal/application/service/mocks"
	"github.com/khoahotran/careerfolio/internal/domain/course"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/patch"
)

const instructor int64 = 10

// repoMock implements only the repository methods the curriculum touches.
type repoMock struct {
	mock.Mock
	course.Repository
}

func (m *repoMock) InTx(ctx context.Context, fn func(ctx context.Context, repo course.Repository) error) error {
	return fn(ctx, m)
}

func (m *repoMock) FindByID(ctx context.Context, courseID int64) (*course.Course, error) {
	args := m.Called(ctx, courseID)
	if c, ok := args.Get(0).(*course.Course); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *repoMock) SectionOwner(ctx context.Context, sectionID int64) (int64, error) {
	args := m.Called(ctx, sectionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *repoMock) LectureOwner(ctx context.Context, lectureID int64) (int64, error) {
	args := m.Called(ctx, lectureID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *repoMock) CountOwnedSections(ctx context.Context, instructorID int64, ids []int64) (int, error) {
	args := m.Called(ctx, instructorID, ids)
	return args.Int(0), args.Error(1)
}

func (m *repoMock) CountOwnedLectures(ctx context.Context, instructorID int64, ids []int64) (int, error) {
	args := m.Called(ctx, instructorID, ids)
	return args.Int(0), args.Error(1)
}

func (m *repoMock) CreateSection(ctx context.Context, s *course.Section) error {
	args := m.Called(ctx, s)
	s.ID = 1
	return args.Error(0)
}

func (m *repoMock) RenameSection(ctx context.Context, sectionID int64, title string) error {
	return m.Called(ctx, sectionID, title).Error(0)
}

func (m *repoMock) DeleteSection(ctx context.Context, sectionID int64) error {
	return m.Called(ctx, sectionID).Error(0)
}

func (m *repoMock) SetSectionOrder(ctx context.Context, o course.SectionOrder) error {
	return m.Called(ctx, o).Error(0)
}

func (m *repoMock) CreateLecture(ctx context.Context, l *course.Lecture) error {
	args := m.Called(ctx, l)
	l.ID = 1
	return args.Error(0)
}

func (m *repoMock) UpdateLecture(ctx context.Context, lectureID int64, p course.LecturePatch) error {
	return m.Called(ctx, lectureID, p).Error(0)
}

func (m *repoMock) DeleteLecture(ctx context.Context, lectureID int64) error {
	return m.Called(ctx, lectureID).Error(0)
}

func (m *repoMock) MoveLecture(ctx context.Context, o course.LectureOrder) error {
	return m.Called(ctx, o).Error(0)
}

func newCurriculum(repo *repoMock, videos *mocks.VideoStore) *CourseUseCase {
	return NewCourseUseCase(repo, new(mocks.Uploader), videos, logger.NewNopLogger())
}

func TestAddSection(t *testing.T) {
	ctx := context.Background()

	t.Run("owner adds section", func(t *testing.T) {
		repo := new(repoMock)
		repo.On("FindByID", mock.Anything, int64(5)).Return(&course.Course{ID: 5, InstructorID: instructor}, nil)
		repo.On("CreateSection", mock.Anything, mock.MatchedBy(func(s *course.Section) bool {
			return s.CourseID == 5 && s.Title == "Basics"
		})).Return(nil)

		s, err := newCurriculum(repo, new(mocks.VideoStore)).AddSection(ctx, AddSectionInput{InstructorID: instructor, CourseID: 5, Title: "  Basics "})
		require.NoError(t, err)
		assert.Equal(t, int64(1), s.ID)
		repo.AssertExpectations(t)
	})

	t.Run("blank title", func(t *testing.T) {
		repo := new(repoMock)
		_, err := newCurriculum(repo, new(mocks.VideoStore)).AddSection(ctx, AddSectionInput{InstructorID: instructor, CourseID: 5, Title: " "})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		repo.AssertNotCalled(t, "CreateSection", mock.Anything, mock.Anything)
	})

	t.Run("foreign course", func(t *testing.T) {
		repo := new(repoMock)
		repo.On("FindByID", mock.Anything, int64(6)).Return(&course.Course{ID: 6, InstructorID: 99}, nil)
		_, err := newCurriculum(repo, new(mocks.VideoStore)).AddSection(ctx, AddSectionInput{InstructorID: instructor, CourseID: 6, Title: "Mine"})
		assert.ErrorIs(t, err, apperror.ErrPermission)
	})
}

func TestRenameSection_ForeignSectionDenied(t *testing.T) {
	repo := new(repoMock)
	repo.On("SectionOwner", mock.Anything, int64(3)).Return(int64(99), nil)

	err := newCurriculum(repo, new(mocks.VideoStore)).RenameSection(context.Background(), RenameSectionInput{InstructorID: instructor, SectionID: 3, Title: "x"})
	assert.ErrorIs(t, err, apperror.ErrPermission)
	repo.AssertNotCalled(t, "RenameSection", mock.Anything, mock.Anything, mock.Anything)
}

func TestReorderSections(t *testing.T) {
	ctx := context.Background()
	orders := []course.SectionOrder{{SectionID: 1, Order: 2}, {SectionID: 2, Order: 1}}

	t.Run("all owned", func(t *testing.T) {
		repo := new(repoMock)
		repo.On("CountOwnedSections", mock.Anything, instructor, []int64{1, 2}).Return(2, nil)
		repo.On("SetSectionOrder", mock.Anything, mock.Anything).Return(nil)

		err := newCurriculum(repo, new(mocks.VideoStore)).ReorderSections(ctx, ReorderSectionsInput{InstructorID: instructor, Orders: orders})
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "SetSectionOrder", 2)
	})

	t.Run("one foreign section", func(t *testing.T) {
		repo := new(repoMock)
		repo.On("CountOwnedSections", mock.Anything, instructor, []int64{1, 2}).Return(1, nil)

		err := newCurriculum(repo, new(mocks.VideoStore)).ReorderSections(ctx, ReorderSectionsInput{InstructorID: instructor, Orders: orders})
		assert.ErrorIs(t, err, apperror.ErrPermission)
		repo.AssertNotCalled(t, "SetSectionOrder", mock.Anything, mock.Anything)
	})

	t.Run("empty", func(t *testing.T) {
		err := newCurriculum(new(repoMock), new(mocks.VideoStore)).ReorderSections(ctx, ReorderSectionsInput{InstructorID: instructor})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}

func TestAddLecture_Upload(t *testing.T) {
	repo := new(repoMock)
	videos := new(mocks.VideoStore)
	repo.On("SectionOwner", mock.Anything, int64(3)).Return(instructor, nil)
	videos.On("Put", mock.Anything, mock.MatchedBy(func(name string) bool { return strings.HasSuffix(name, ".mp4") }),
		mock.Anything, int64(4), "video/mp4").Return(nil)
	repo.On("CreateLecture", mock.Anything, mock.Anything).Return(nil)

	l, err := newCurriculum(repo, videos).AddLecture(context.Background(), AddLectureInput{
		InstructorID:    instructor,
		SectionID:       3,
		Title:           "Goroutines",
		DurationSeconds: 600,
		UploadType:      UploadTypeFile,
		Video:           &VideoUpload{File: strings.NewReader("data"), Size: 4, Filename: "Intro.MP4", ContentType: "video/mp4"},
	})
	require.NoError(t, err)
	require.NotNil(t, l.VideoURL)
	assert.True(t, strings.HasPrefix(*l.VideoURL, VideoStreamPrefix))
	assert.True(t, strings.HasSuffix(*l.VideoURL, ".mp4"))
	videos.AssertExpectations(t)
}

func TestAddLecture_URL(t *testing.T) {
	repo := new(repoMock)
	videos := new(mocks.VideoStore)
	repo.On("SectionOwner", mock.Anything, int64(3)).Return(instructor, nil)
	repo.On("CreateLecture", mock.Anything, mock.Anything).Return(nil)

	l, err := newCurriculum(repo, videos).AddLecture(context.Background(), AddLectureInput{
		InstructorID: instructor, SectionID: 3, Title: "External", DurationSeconds: 60,
		UploadType: UploadTypeURL, VideoURL: "https://cdn.example.com/v.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v.mp4", *l.VideoURL)
	videos.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddLecture_Validation(t *testing.T) {
	uc := newCurriculum(new(repoMock), new(mocks.VideoStore))
	ctx := context.Background()

	cases := map[string]AddLectureInput{
		"no title":     {SectionID: 3, DurationSeconds: 10, UploadType: UploadTypeURL, VideoURL: "u"},
		"no duration":  {SectionID: 3, Title: "t", UploadType: UploadTypeURL, VideoURL: "u"},
		"missing file": {SectionID: 3, Title: "t", DurationSeconds: 10, UploadType: UploadTypeFile},
		"missing url":  {SectionID: 3, Title: "t", DurationSeconds: 10, UploadType: UploadTypeURL},
		"unknown type": {SectionID: 3, Title: "t", DurationSeconds: 10, UploadType: "ftp"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.AddLecture(ctx, in)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}
}

func TestAddLecture_InsertFailureRemovesVideo(t *testing.T) {
	repo := new(repoMock)
	videos := new(mocks.VideoStore)
	removed := make(chan string, 1)
	repo.On("SectionOwner", mock.Anything, int64(3)).Return(instructor, nil)
	videos.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("CreateLecture", mock.Anything, mock.Anything).Return(errors.New("insert failed"))
	videos.On("Remove", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { removed <- args.String(1) }).
		Return(nil)

	_, err := newCurriculum(repo, videos).AddLecture(context.Background(), AddLectureInput{
		InstructorID: instructor, SectionID: 3, Title: "t", DurationSeconds: 10,
		UploadType: UploadTypeFile, Video: &VideoUpload{File: strings.NewReader("x"), Size: 1, Filename: "a.webm"},
	})
	require.Error(t, err)

	select {
	case name := <-removed:
		assert.True(t, strings.HasSuffix(name, ".webm"))
	case <-time.After(2 * time.Second):
		t.Fatal("orphaned video was not removed")
	}
}

func TestUpdateLecture(t *testing.T) {
	ctx := context.Background()

	t.Run("patch title", func(t *testing.T) {
		repo := new(repoMock)
		repo.On("LectureOwner", mock.Anything, int64(8)).Return(instructor, nil)
		repo.On("UpdateLecture", mock.Anything, int64(8), mock.MatchedBy(func(p course.LecturePatch) bool {
			return p.Title.Set && *p.Title.Value == "Renamed" && !p.VideoURL.Set
		})).Return(nil)

		err := newCurriculum(repo, new(mocks.VideoStore)).UpdateLecture(ctx, UpdateLectureInput{
			InstructorID: instructor, LectureID: 8,
			Patch: course.LecturePatch{Title: patch.Value("Renamed")},
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("nothing to update", func(t *testing.T) {
		err := newCurriculum(new(repoMock), new(mocks.VideoStore)).UpdateLecture(ctx, UpdateLectureInput{InstructorID: instructor, LectureID: 8})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("null title rejected", func(t *testing.T) {
		err := newCurriculum(new(repoMock), new(mocks.VideoStore)).UpdateLecture(ctx, UpdateLectureInput{
			InstructorID: instructor, LectureID: 8,
			Patch: course.LecturePatch{Title: patch.Null[string]()},
		})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}

func TestDeleteLecture_ForeignLectureDenied(t *testing.T) {
	repo := new(repoMock)
	repo.On("LectureOwner", mock.Anything, int64(8)).Return(int64(77), nil)

	err := newCurriculum(repo, new(mocks.VideoStore)).DeleteLecture(context.Background(), 8, instructor)
	assert.ErrorIs(t, err, apperror.ErrPermission)
	repo.AssertNotCalled(t, "DeleteLecture", mock.Anything, mock.Anything)
}

func TestReorderLectures_ChecksTargetSections(t *testing.T) {
	repo := new(repoMock)
	orders := []course.LectureOrder{{LectureID: 1, SectionID: 4, Order: 1}, {LectureID: 2, SectionID: 4, Order: 2}}
	repo.On("CountOwnedLectures", mock.Anything, instructor, []int64{1, 2}).Return(2, nil)
	repo.On("CountOwnedSections", mock.Anything, instructor, []int64{4}).Return(0, nil)

	err := newCurriculum(repo, new(mocks.VideoStore)).ReorderLectures(context.Background(), ReorderLecturesInput{InstructorID: instructor, Orders: orders})
	assert.ErrorIs(t, err, apperror.ErrPermission)
	repo.AssertNotCalled(t, "MoveLecture", mock.Anything, mock.Anything)
}
