package memo

import (
	"context"
	"time"
)

type Memo struct {
	ID               int64
	EnrollmentID     int64
	LectureID        int64
	TimestampSeconds int
	Content          string
	CreatedAt        time.Time
}

type Repository interface {
	ListByLecture(ctx context.Context, enrollmentID, lectureID int64) ([]*Memo, error)
	Create(ctx context.Context, m *Memo) error
	// Delete removes a memo only if it belongs to one of the user's enrollments.
	Delete(ctx context.Context, memoID, userID int64) error
}
