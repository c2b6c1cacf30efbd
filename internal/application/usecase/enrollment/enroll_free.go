package enrollment

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/adapters/event"
	"github.com/khoahotran/careerfolio/internal/application/service"
	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type EnrollFreeUseCase struct {
	enrollmentRepo enrollment.Repository
	publisher      service.EventPublisher
	logger         logger.Logger
}

func NewEnrollFreeUseCase(repo enrollment.Repository, publisher service.EventPublisher, log logger.Logger) *EnrollFreeUseCase {
	return &EnrollFreeUseCase{enrollmentRepo: repo, publisher: publisher, logger: log}
}

type EnrollFreeInput struct {
	UserID   int64
	CourseID int64
}

func (uc *EnrollFreeUseCase) Execute(ctx context.Context, input EnrollFreeInput) (*enrollment.Enrollment, error) {
	ctx, span := tracer.Start(ctx, "EnrollFree")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", input.UserID), attribute.Int64("course_id", input.CourseID))

	var created *enrollment.Enrollment
	err := uc.enrollmentRepo.InTx(ctx, func(ctx context.Context, repo enrollment.Repository) error {
		pricing, err := repo.FindCoursePricing(ctx, input.CourseID)
		if err != nil {
			return err
		}
		if !pricing.IsFree() {
			return apperror.NewInvalidInput("course is not free", nil)
		}

		_, err = repo.FindByUserAndCourse(ctx, input.UserID, input.CourseID)
		if err == nil {
			return apperror.NewConflict("enrollment", "course", strconv.FormatInt(input.CourseID, 10))
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return err
		}

		created, err = repo.Create(ctx, input.UserID, input.CourseID)
		if err != nil {
			return err
		}
		return repo.IncrementEnrollmentCount(ctx, input.CourseID)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Info("Free enrollment created", zap.Int64("enrollment_id", created.ID), zap.Int64("course_id", input.CourseID))

	payload := event.EnrollmentEventPayload{
		Kind:         event.EnrollmentKindEnrolled,
		UserID:       input.UserID,
		CourseID:     input.CourseID,
		EnrollmentID: created.ID,
	}
	go func() {
		if err := uc.publisher.PublishEnrollmentEvent(context.Background(), payload); err != nil {
			uc.logger.Error("Failed to publish Kafka 'enrolled' event", err, zap.Int64("enrollment_id", payload.EnrollmentID))
		}
	}()

	return created, nil
}
