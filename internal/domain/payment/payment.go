package payment

import (
	"context"
	"time"

	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
)

const StatusCompleted = "completed"

type Payment struct {
	ID        int64
	UserID    int64
	Amount    int64
	Status    string
	CreatedAt time.Time
	Items     []Item
}

type Item struct {
	CourseID        int64
	PriceAtPurchase int64
}

// NewPayment prices every course at its effective price.
func NewPayment(userID int64, courses []enrollment.CoursePricing) *Payment {
	p := &Payment{UserID: userID, Status: StatusCompleted, Items: make([]Item, 0, len(courses))}
	for _, c := range courses {
		price := c.EffectivePrice()
		p.Amount += price
		p.Items = append(p.Items, Item{CourseID: c.CourseID, PriceAtPurchase: price})
	}
	return p
}

type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error

	FindPricings(ctx context.Context, courseIDs []int64) ([]enrollment.CoursePricing, error)
	Create(ctx context.Context, p *Payment) error
	// Fulfill records the item, enrolls the user, bumps the course's
	// enrollment count and drops the course from the user's cart.
	Fulfill(ctx context.Context, p *Payment, item Item) error
}
