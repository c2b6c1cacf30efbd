package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
)

func TestNewPayment_UsesEffectivePrices(t *testing.T) {
	discount := int64(12000)
	p := NewPayment(7, []enrollment.CoursePricing{
		{CourseID: 1, Price: 30000, DiscountPrice: &discount},
		{CourseID: 2, Price: 5000},
	})

	assert.Equal(t, int64(17000), p.Amount)
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, []Item{{CourseID: 1, PriceAtPurchase: 12000}, {CourseID: 2, PriceAtPurchase: 5000}}, p.Items)
}
