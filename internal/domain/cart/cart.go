package cart

import "context"

type Item struct {
	CourseID       int64
	Title          string
	ThumbnailURL   *string
	Price          int64
	DiscountPrice  *int64
	InstructorName string
}

type Repository interface {
	List(ctx context.Context, userID int64) ([]*Item, error)
	Contains(ctx context.Context, userID, courseID int64) (bool, error)
	Add(ctx context.Context, userID, courseID int64) error
	Remove(ctx context.Context, userID, courseID int64) error
}
