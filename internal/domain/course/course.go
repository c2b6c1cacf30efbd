package course

import (
	"context"
	"errors"
	"time"

	"github.com/khoahotran/careerfolio/pkg/patch"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

var ErrInvalidStatus = errors.New("status must be one of draft, published, archived")

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPublished, StatusArchived:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

type Course struct {
	ID              int64
	InstructorID    int64
	InstructorName  string
	Title           string
	Description     *string
	ThumbnailURL    *string
	Price           int64
	DiscountPrice   *int64
	Status          Status
	AvgRating       float64
	ReviewCount     int
	EnrollmentCount int
	CreatedAt       time.Time
	Sections        []*Section
}

type Section struct {
	ID       int64
	CourseID int64
	Title    string
	Order    int
	Lectures []*Lecture
}

// Lecture carries the learner's progress only when loaded for a learner.
type Lecture struct {
	ID              int64
	SectionID       int64
	Title           string
	VideoURL        *string
	DurationSeconds int
	Order           int
	WatchedSeconds  *int
	IsCompleted     *bool
}

type Patch struct {
	Title         patch.Field[string]
	Description   patch.Field[string]
	Price         patch.Field[int64]
	DiscountPrice patch.Field[int64]
}

func (p Patch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Price.Set && !p.DiscountPrice.Set
}

type LecturePatch struct {
	Title           patch.Field[string]
	DurationSeconds patch.Field[int]
	VideoURL        patch.Field[string]
}

func (p LecturePatch) Empty() bool {
	return !p.Title.Set && !p.DurationSeconds.Set && !p.VideoURL.Set
}

type SectionOrder struct {
	SectionID int64
	Order     int
}

type LectureOrder struct {
	LectureID int64
	SectionID int64
	Order     int
}

// AssembleCurriculum attaches lectures to their sections, keeping the order
// both slices were loaded in.
func AssembleCurriculum(sections []*Section, lectures []*Lecture) []*Section {
	byID := make(map[int64]*Section, len(sections))
	for _, s := range sections {
		s.Lectures = make([]*Lecture, 0)
		byID[s.ID] = s
	}
	for _, l := range lectures {
		if s, ok := byID[l.SectionID]; ok {
			s.Lectures = append(s.Lectures, l)
		}
	}
	return sections
}

type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error

	Create(ctx context.Context, c *Course) error
	FindByID(ctx context.Context, courseID int64) (*Course, error)
	FindOwned(ctx context.Context, courseID, instructorID int64) (*Course, error)
	FindPublished(ctx context.Context, courseID int64) (*Course, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]*Course, error)
	ListPublished(ctx context.Context) ([]*Course, error)
	ListAll(ctx context.Context) ([]*Course, error)
	Update(ctx context.Context, courseID int64, p Patch) error
	SetThumbnail(ctx context.Context, courseID int64, url string) error
	SetStatus(ctx context.Context, courseID int64, status Status) error
	SetPrice(ctx context.Context, courseID int64, price int64, discount *int64) error

	ListSections(ctx context.Context, courseID int64) ([]*Section, error)
	ListLectures(ctx context.Context, courseID int64) ([]*Lecture, error)
	ListLecturesWithProgress(ctx context.Context, courseID, enrollmentID int64) ([]*Lecture, error)

	// SectionOwner returns the instructor of the course the section belongs to.
	SectionOwner(ctx context.Context, sectionID int64) (int64, error)
	LectureOwner(ctx context.Context, lectureID int64) (int64, error)
	CountOwnedSections(ctx context.Context, instructorID int64, sectionIDs []int64) (int, error)
	CountOwnedLectures(ctx context.Context, instructorID int64, lectureIDs []int64) (int, error)

	CreateSection(ctx context.Context, s *Section) error
	RenameSection(ctx context.Context, sectionID int64, title string) error
	DeleteSection(ctx context.Context, sectionID int64) error
	SetSectionOrder(ctx context.Context, o SectionOrder) error

	CreateLecture(ctx context.Context, l *Lecture) error
	UpdateLecture(ctx context.Context, lectureID int64, p LecturePatch) error
	DeleteLecture(ctx context.Context, lectureID int64) error
	MoveLecture(ctx context.Context, o LectureOrder) error
}
