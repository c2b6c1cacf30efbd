package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/careerfolio/adapters/event"
	"github.com/khoahotran/careerfolio/internal/application/service/mocks"
	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/internal/domain/payment"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

// fakeRepo keeps fulfilled items only when the transaction commits.
type fakeRepo struct {
	pricings  map[int64]enrollment.CoursePricing
	failOn    int64
	fulfilled []payment.Item
	pending   []payment.Item
}

func (r *fakeRepo) InTx(ctx context.Context, fn func(ctx context.Context, repo payment.Repository) error) error {
	r.pending = nil
	if err := fn(ctx, r); err != nil {
		r.pending = nil
		return err
	}
	r.fulfilled = append(r.fulfilled, r.pending...)
	return nil
}

func (r *fakeRepo) FindPricings(ctx context.Context, ids []int64) ([]enrollment.CoursePricing, error) {
	out := make([]enrollment.CoursePricing, 0, len(ids))
	for _, id := range ids {
		p, ok := r.pricings[id]
		if !ok {
			return nil, apperror.NewNotFound("course", "missing")
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) Create(ctx context.Context, p *payment.Payment) error {
	p.ID = 900
	return nil
}

func (r *fakeRepo) Fulfill(ctx context.Context, p *payment.Payment, item payment.Item) error {
	if item.CourseID == r.failOn {
		return errors.New("duplicate enrollment")
	}
	r.pending = append(r.pending, item)
	return nil
}

func newRepo() *fakeRepo {
	discount := int64(3000)
	return &fakeRepo{pricings: map[int64]enrollment.CoursePricing{
		1: {CourseID: 1, Price: 10000},
		2: {CourseID: 2, Price: 8000, DiscountPrice: &discount},
	}}
}

func TestCheckout(t *testing.T) {
	repo := newRepo()
	publisher := new(mocks.EventPublisher)

	var wg sync.WaitGroup
	wg.Add(2)
	publisher.On("PublishEnrollmentEvent", mock.Anything, mock.MatchedBy(func(p event.EnrollmentEventPayload) bool {
		return p.PaymentID != nil && *p.PaymentID == 900 && p.UserID == 6
	})).Run(func(mock.Arguments) { wg.Done() }).Return(nil)

	p, err := NewCheckoutUseCase(repo, publisher, logger.NewNopLogger()).Execute(context.Background(), CheckoutInput{
		UserID:    6,
		CourseIDs: []int64{1, 2, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(13000), p.Amount)
	assert.Len(t, repo.fulfilled, 2)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enrollment events were not published")
	}
}

func TestCheckout_AllOrNothing(t *testing.T) {
	repo := newRepo()
	repo.failOn = 2
	publisher := new(mocks.EventPublisher)

	_, err := NewCheckoutUseCase(repo, publisher, logger.NewNopLogger()).Execute(context.Background(), CheckoutInput{
		UserID:    6,
		CourseIDs: []int64{1, 2},
	})
	require.Error(t, err)
	assert.Empty(t, repo.fulfilled)
	publisher.AssertNotCalled(t, "PublishEnrollmentEvent", mock.Anything, mock.Anything)
}

func TestCheckout_Validation(t *testing.T) {
	uc := NewCheckoutUseCase(newRepo(), new(mocks.EventPublisher), logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), CheckoutInput{UserID: 6})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = uc.Execute(context.Background(), CheckoutInput{UserID: 6, CourseIDs: []int64{1, 404}})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
