package payment

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/adapters/event"
	"github.com/khoahotran/careerfolio/internal/application/service"
	"github.com/khoahotran/careerfolio/internal/domain/payment"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

var tracer = otel.Tracer("payment_usecase")

type CheckoutUseCase struct {
	paymentRepo payment.Repository
	publisher   service.EventPublisher
	logger      logger.Logger
}

func NewCheckoutUseCase(repo payment.Repository, publisher service.EventPublisher, log logger.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{paymentRepo: repo, publisher: publisher, logger: log}
}

type CheckoutInput struct {
	UserID    int64
	CourseIDs []int64
}

// Execute charges every course at its effective price and enrolls the user in all of them, or in none.
func (uc *CheckoutUseCase) Execute(ctx context.Context, input CheckoutInput) (*payment.Payment, error) {
	ctx, span := tracer.Start(ctx, "Checkout")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", input.UserID), attribute.Int("courses", len(input.CourseIDs)))

	if len(input.CourseIDs) == 0 {
		err := apperror.NewInvalidInput("courseIds must be a non-empty list", nil)
		span.RecordError(err)
		return nil, err
	}
	ids := distinct(input.CourseIDs)

	var p *payment.Payment
	err := uc.paymentRepo.InTx(ctx, func(ctx context.Context, repo payment.Repository) error {
		pricings, err := repo.FindPricings(ctx, ids)
		if err != nil {
			return err
		}
		p = payment.NewPayment(input.UserID, pricings)
		if err := repo.Create(ctx, p); err != nil {
			return err
		}
		for _, item := range p.Items {
			if err := repo.Fulfill(ctx, p, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Info("Payment completed",
		zap.Int64("payment_id", p.ID),
		zap.Int64("user_id", p.UserID),
		zap.Int64("amount", p.Amount),
		zap.Int("items", len(p.Items)),
	)

	paymentID := p.ID
	items := p.Items
	go func() {
		for _, item := range items {
			payload := event.EnrollmentEventPayload{
				Kind:      event.EnrollmentKindEnrolled,
				UserID:    input.UserID,
				CourseID:  item.CourseID,
				PaymentID: &paymentID,
			}
			if err := uc.publisher.PublishEnrollmentEvent(context.Background(), payload); err != nil {
				uc.logger.Error("Failed to publish Kafka 'enrolled' event", err,
					zap.Int64("payment_id", paymentID), zap.Int64("course_id", item.CourseID))
			}
		}
	}()

	return p, nil
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
