package learn

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/careerfolio/internal/domain/course"
	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type GetCourseForLearnerUseCase struct {
	courseRepo     course.Repository
	enrollmentRepo enrollment.Repository
	logger         logger.Logger
}

func NewGetCourseForLearnerUseCase(cRepo course.Repository, eRepo enrollment.Repository, log logger.Logger) *GetCourseForLearnerUseCase {
	return &GetCourseForLearnerUseCase{courseRepo: cRepo, enrollmentRepo: eRepo, logger: log}
}

type GetCourseForLearnerInput struct {
	UserID   int64
	CourseID int64
}

type GetCourseForLearnerOutput struct {
	EnrollmentID    int64
	ProgressPercent int
	Course          *course.Course
}

func (uc *GetCourseForLearnerUseCase) Execute(ctx context.Context, input GetCourseForLearnerInput) (*GetCourseForLearnerOutput, error) {
	ctx, span := tracer.Start(ctx, "GetCourseForLearner")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", input.UserID), attribute.Int64("course_id", input.CourseID))

	e, err := uc.enrollmentRepo.FindByUserAndCourse(ctx, input.UserID, input.CourseID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			err = apperror.NewNotEnrolled(input.CourseID)
		}
		span.RecordError(err)
		return nil, err
	}

	c, err := uc.courseRepo.FindByID(ctx, input.CourseID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	sections, err := uc.courseRepo.ListSections(ctx, input.CourseID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	lectures, err := uc.courseRepo.ListLecturesWithProgress(ctx, input.CourseID, e.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	c.Sections = course.AssembleCurriculum(sections, lectures)

	return &GetCourseForLearnerOutput{
		EnrollmentID:    e.ID,
		ProgressPercent: e.ProgressPercent,
		Course:          c,
	}, nil
}
