package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCouponIsActive(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	coupon := Coupon{
		IssuedAt:   issued,
		ValidUntil: issued.AddDate(0, 0, 30),
	}

	assert.True(t, coupon.IsActive(issued))
	assert.True(t, coupon.IsActive(coupon.ValidUntil), "последний день срока включительно")
	assert.False(t, coupon.IsActive(coupon.ValidUntil.Add(time.Second)))

	used := coupon
	used.Used = true
	assert.False(t, used.IsActive(issued))
}
