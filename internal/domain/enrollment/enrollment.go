package enrollment

import (
	"context"
	"math"
	"time"
)

// A lecture counts as completed once at least 90% of it was watched.
const (
	completionNumerator   = 9
	completionDenominator = 10
)

type Enrollment struct {
	ID              int64     `json:"idx"`
	UserID          int64     `json:"user_idx"`
	CourseID        int64     `json:"course_idx"`
	EnrolledAt      time.Time `json:"enrolled_at"`
	ProgressPercent int       `json:"progress_percent"`
}

// LectureRef is what progress tracking needs to know about a lecture.
type LectureRef struct {
	LectureID       int64
	CourseID        int64
	DurationSeconds int
}

type LectureProgress struct {
	EnrollmentID   int64
	LectureID      int64
	WatchedSeconds int
	Completed      bool
}

// Key identifies an enrollment together with the course its lectures are counted in.
type Key struct {
	EnrollmentID int64
	CourseID     int64
}

type Stats struct {
	TotalLectures     int
	CompletedLectures int
}

func (s Stats) Percentage() int {
	return Percentage(s.CompletedLectures, s.TotalLectures)
}

// Summary is one row of a learner's enrollment list.
type Summary struct {
	EnrollmentID    int64
	CourseID        int64
	Title           string
	ThumbnailURL    *string
	InstructorName  string
	EnrolledAt      time.Time
	ProgressPercent int
}

func (s *Summary) Key() Key {
	return Key{EnrollmentID: s.EnrollmentID, CourseID: s.CourseID}
}

// IsLectureCompleted reports whether watched/duration >= 0.90.
// A lecture without a positive duration can never be completed.
func IsLectureCompleted(watchedSeconds, durationSeconds int) bool {
	if durationSeconds <= 0 || watchedSeconds < 0 {
		return false
	}
	return int64(watchedSeconds)*completionDenominator >= int64(durationSeconds)*completionNumerator
}

// Percentage is round(100 * completed / total), 0 for an empty course.
func Percentage(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

type Repository interface {
	// InTx runs fn against a repository bound to a single transaction.
	// The transaction commits only if fn returns nil.
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error

	FindLecture(ctx context.Context, lectureID int64) (*LectureRef, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID int64) (*Enrollment, error)
	FindByUserAndLecture(ctx context.Context, userID, lectureID int64) (*Enrollment, error)
	UpsertLectureProgress(ctx context.Context, p LectureProgress) error
	CountStats(ctx context.Context, key Key) (Stats, error)
	CountStatsBatch(ctx context.Context, keys []Key) (map[int64]Stats, error)
	UpdateProgressPercent(ctx context.Context, enrollmentID int64, percent int) error
	ListSummariesByUser(ctx context.Context, userID int64) ([]*Summary, error)

	FindCoursePricing(ctx context.Context, courseID int64) (*CoursePricing, error)
	Create(ctx context.Context, userID, courseID int64) (*Enrollment, error)
	IncrementEnrollmentCount(ctx context.Context, courseID int64) error
}

// CoursePricing is the price data enrollment decisions are made on.
type CoursePricing struct {
	CourseID      int64
	Title         string
	Price         int64
	DiscountPrice *int64
}

// EffectivePrice is the discounted price when one is set.
func (p CoursePricing) EffectivePrice() int64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// IsFree treats a zero list price or a zero discount as free.
func (p CoursePricing) IsFree() bool {
	return p.Price == 0 || (p.DiscountPrice != nil && *p.DiscountPrice == 0)
}
