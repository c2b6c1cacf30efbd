package learn

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/metrics"
)

var tracer = otel.Tracer("learn_usecase")

type RecordProgressUseCase struct {
	enrollmentRepo enrollment.Repository
	metrics        metrics.Recorder
	logger         logger.Logger
}

func NewRecordProgressUseCase(repo enrollment.Repository, m metrics.Recorder, log logger.Logger) *RecordProgressUseCase {
	return &RecordProgressUseCase{enrollmentRepo: repo, metrics: m, logger: log}
}

type RecordProgressInput struct {
	UserID         int64
	LectureID      int64
	WatchedSeconds int
}

type RecordProgressOutput struct {
	EnrollmentID  int64
	Completed     bool
	NewPercentage int
}

// Execute stores the watched position of a lecture and recomputes the
// enrollment percentage in the same transaction.
func (uc *RecordProgressUseCase) Execute(ctx context.Context, input RecordProgressInput) (*RecordProgressOutput, error) {
	ctx, span := tracer.Start(ctx, "RecordProgress")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", input.UserID), attribute.Int64("lecture_id", input.LectureID))

	if input.WatchedSeconds < 0 {
		err := apperror.NewInvalidInput("watched_seconds must not be negative", nil)
		span.RecordError(err)
		return nil, err
	}

	var out RecordProgressOutput
	err := uc.enrollmentRepo.InTx(ctx, func(ctx context.Context, repo enrollment.Repository) error {
		lecture, err := repo.FindLecture(ctx, input.LectureID)
		if err != nil {
			return err
		}

		e, err := repo.FindByUserAndCourse(ctx, input.UserID, lecture.CourseID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return apperror.NewNotEnrolled(lecture.CourseID)
			}
			return err
		}

		completed := enrollment.IsLectureCompleted(input.WatchedSeconds, lecture.DurationSeconds)
		if err := repo.UpsertLectureProgress(ctx, enrollment.LectureProgress{
			EnrollmentID:   e.ID,
			LectureID:      lecture.LectureID,
			WatchedSeconds: input.WatchedSeconds,
			Completed:      completed,
		}); err != nil {
			return err
		}

		stats, err := repo.CountStats(ctx, enrollment.Key{EnrollmentID: e.ID, CourseID: lecture.CourseID})
		if err != nil {
			return err
		}

		percent := stats.Percentage()
		if err := repo.UpdateProgressPercent(ctx, e.ID, percent); err != nil {
			return err
		}

		out = RecordProgressOutput{EnrollmentID: e.ID, Completed: completed, NewPercentage: percent}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.metrics.ProgressRecorded(out.Completed)
	uc.logger.Debug("Lecture progress recorded",
		zap.Int64("enrollment_id", out.EnrollmentID),
		zap.Int64("lecture_id", input.LectureID),
		zap.Int("percent", out.NewPercentage),
	)
	return &out, nil
}
