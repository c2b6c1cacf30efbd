package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLectureCompleted_Threshold(t *testing.T) {
	assert.False(t, IsLectureCompleted(89, 100))
	assert.True(t, IsLectureCompleted(90, 100))
	assert.True(t, IsLectureCompleted(100, 100))
	assert.True(t, IsLectureCompleted(5000, 100), "watched beyond duration is recorded as-is")
	assert.False(t, IsLectureCompleted(8, 9))
	assert.True(t, IsLectureCompleted(9, 10))
}

func TestIsLectureCompleted_ZeroDuration(t *testing.T) {
	for _, watched := range []int{0, 1, 90, 1 << 30} {
		assert.False(t, IsLectureCompleted(watched, 0), "watched=%d", watched)
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 4, 0},
		{1, 4, 25},
		{4, 4, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{0, 0, 0},
		{3, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Percentage(tc.completed, tc.total), "%d/%d", tc.completed, tc.total)
	}
}

func TestCoursePricing(t *testing.T) {
	zero := int64(0)
	discount := int64(9000)

	assert.True(t, CoursePricing{Price: 0}.IsFree())
	assert.True(t, CoursePricing{Price: 15000, DiscountPrice: &zero}.IsFree())
	assert.False(t, CoursePricing{Price: 15000, DiscountPrice: &discount}.IsFree())
	assert.Equal(t, int64(9000), CoursePricing{Price: 15000, DiscountPrice: &discount}.EffectivePrice())
	assert.Equal(t, int64(15000), CoursePricing{Price: 15000}.EffectivePrice())
}
