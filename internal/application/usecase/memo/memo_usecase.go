package memo

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/internal/domain/memo"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

var tracer = otel.Tracer("memo_usecase")

type MemoUseCase struct {
	memoRepo       memo.Repository
	enrollmentRepo enrollment.Repository
	logger         logger.Logger
}

func NewMemoUseCase(mRepo memo.Repository, eRepo enrollment.Repository, log logger.Logger) *MemoUseCase {
	return &MemoUseCase{memoRepo: mRepo, enrollmentRepo: eRepo, logger: log}
}

type ListMemosInput struct {
	UserID    int64
	LectureID int64
}

func (uc *MemoUseCase) ExecuteList(ctx context.Context, input ListMemosInput) ([]*memo.Memo, error) {
	ctx, span := tracer.Start(ctx, "ListMemos")
	defer span.End()
	span.SetAttributes(attribute.Int64("lecture_id", input.LectureID))

	e, err := uc.enrollmentFor(ctx, input.UserID, input.LectureID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	memos, err := uc.memoRepo.ListByLecture(ctx, e.ID, input.LectureID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return memos, nil
}

type CreateMemoInput struct {
	UserID           int64
	LectureID        int64
	TimestampSeconds int
	Content          string
}

func (uc *MemoUseCase) ExecuteCreate(ctx context.Context, input CreateMemoInput) (*memo.Memo, error) {
	ctx, span := tracer.Start(ctx, "CreateMemo")
	defer span.End()

	if input.LectureID <= 0 || input.TimestampSeconds < 0 || strings.TrimSpace(input.Content) == "" {
		err := apperror.NewInvalidInput("lectureId, a non-negative timestamp and content are required", nil)
		span.RecordError(err)
		return nil, err
	}

	e, err := uc.enrollmentFor(ctx, input.UserID, input.LectureID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m := &memo.Memo{
		EnrollmentID:     e.ID,
		LectureID:        input.LectureID,
		TimestampSeconds: input.TimestampSeconds,
		Content:          input.Content,
	}
	if err := uc.memoRepo.Create(ctx, m); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return m, nil
}

type DeleteMemoInput struct {
	UserID int64
	MemoID int64
}

func (uc *MemoUseCase) ExecuteDelete(ctx context.Context, input DeleteMemoInput) error {
	ctx, span := tracer.Start(ctx, "DeleteMemo")
	defer span.End()

	if err := uc.memoRepo.Delete(ctx, input.MemoID, input.UserID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// enrollmentFor resolves the enrollment that gives the user access to the lecture.
func (uc *MemoUseCase) enrollmentFor(ctx context.Context, userID, lectureID int64) (*enrollment.Enrollment, error) {
	e, err := uc.enrollmentRepo.FindByUserAndLecture(ctx, userID, lectureID)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	lec, err := uc.enrollmentRepo.FindLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	return nil, apperror.NewNotEnrolled(lec.CourseID)
}
