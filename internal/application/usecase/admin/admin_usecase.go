package admin

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/domain/course"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

var tracer = otel.Tracer("admin_usecase")

type AdminUseCase struct {
	courseRepo course.Repository
	logger     logger.Logger
}

func NewAdminUseCase(repo course.Repository, log logger.Logger) *AdminUseCase {
	return &AdminUseCase{courseRepo: repo, logger: log}
}

func (uc *AdminUseCase) ExecuteListCourses(ctx context.Context) ([]*course.Course, error) {
	ctx, span := tracer.Start(ctx, "ListAllCourses")
	defer span.End()

	courses, err := uc.courseRepo.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return courses, nil
}

type SetStatusInput struct {
	CourseID int64
	Status   string
}

func (uc *AdminUseCase) ExecuteSetStatus(ctx context.Context, input SetStatusInput) error {
	ctx, span := tracer.Start(ctx, "SetCourseStatus")
	defer span.End()
	span.SetAttributes(attribute.Int64("course_id", input.CourseID), attribute.String("status", input.Status))

	status, err := course.ParseStatus(input.Status)
	if err != nil {
		err = apperror.NewInvalidInput("status must be one of draft, published, archived", err)
		span.RecordError(err)
		return err
	}
	if err := uc.courseRepo.SetStatus(ctx, input.CourseID, status); err != nil {
		span.RecordError(err)
		return err
	}
	uc.logger.Info("Course status changed", zap.Int64("course_id", input.CourseID), zap.String("status", string(status)))
	return nil
}

type SetPriceInput struct {
	CourseID      int64
	Price         int64
	DiscountPrice *int64
}

func (uc *AdminUseCase) ExecuteSetPrice(ctx context.Context, input SetPriceInput) error {
	ctx, span := tracer.Start(ctx, "SetCoursePrice")
	defer span.End()
	span.SetAttributes(attribute.Int64("course_id", input.CourseID))

	if input.Price < 0 || (input.DiscountPrice != nil && *input.DiscountPrice < 0) {
		err := apperror.NewInvalidInput("price and discount_price must be non-negative numbers", nil)
		span.RecordError(err)
		return err
	}
	if err := uc.courseRepo.SetPrice(ctx, input.CourseID, input.Price, input.DiscountPrice); err != nil {
		span.RecordError(err)
		return err
	}
	uc.logger.Info("Course price changed", zap.Int64("course_id", input.CourseID), zap.Int64("price", input.Price))
	return nil
}
