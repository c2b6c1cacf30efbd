package cart

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/careerfolio/internal/domain/cart"
	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

var tracer = otel.Tracer("cart_usecase")

type CartUseCase struct {
	cartRepo       cart.Repository
	enrollmentRepo enrollment.Repository
	logger         logger.Logger
}

func NewCartUseCase(cRepo cart.Repository, eRepo enrollment.Repository, log logger.Logger) *CartUseCase {
	return &CartUseCase{cartRepo: cRepo, enrollmentRepo: eRepo, logger: log}
}

func (uc *CartUseCase) ExecuteList(ctx context.Context, userID int64) ([]*cart.Item, error) {
	ctx, span := tracer.Start(ctx, "ListCart")
	defer span.End()

	items, err := uc.cartRepo.List(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return items, nil
}

type CartItemInput struct {
	UserID   int64
	CourseID int64
}

func (uc *CartUseCase) ExecuteAdd(ctx context.Context, input CartItemInput) error {
	ctx, span := tracer.Start(ctx, "AddToCart")
	defer span.End()
	span.SetAttributes(attribute.Int64("course_id", input.CourseID))

	_, err := uc.enrollmentRepo.FindByUserAndCourse(ctx, input.UserID, input.CourseID)
	if err == nil {
		err = apperror.NewInvalidInput("already enrolled", nil)
		span.RecordError(err)
		return err
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		span.RecordError(err)
		return err
	}

	inCart, err := uc.cartRepo.Contains(ctx, input.UserID, input.CourseID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if inCart {
		err = apperror.NewConflict("cart item", "course", strconv.FormatInt(input.CourseID, 10))
		span.RecordError(err)
		return err
	}

	if err := uc.cartRepo.Add(ctx, input.UserID, input.CourseID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// ExecuteRemove succeeds whether or not the course was in the cart.
func (uc *CartUseCase) ExecuteRemove(ctx context.Context, input CartItemInput) error {
	ctx, span := tracer.Start(ctx, "RemoveFromCart")
	defer span.End()

	if err := uc.cartRepo.Remove(ctx, input.UserID, input.CourseID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
