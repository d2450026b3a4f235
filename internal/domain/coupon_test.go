package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCoupon_Percentage(t *testing.T) {
	c := Coupon{Code: "SAVE10", Type: CouponTypePercentage, Value: dec("10"), IsActive: true}

	adj, err := ApplyCoupon(dec("250"), c, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", adj.Code)
	assert.True(t, adj.Discount.Equal(dec("25")))
	assert.True(t, adj.Total.Equal(dec("225")))
}

func TestApplyCoupon_FixedIsCappedAtSubtotal(t *testing.T) {
	c := Coupon{Code: "FIFTY", Type: CouponTypeFixed, Value: dec("50"), IsActive: true}

	adj, err := ApplyCoupon(dec("30"), c, fixedNow)
	require.NoError(t, err)
	assert.True(t, adj.Discount.Equal(dec("30")))
	assert.True(t, adj.Total.IsZero())

	adj, err = ApplyCoupon(dec("80"), c, fixedNow)
	require.NoError(t, err)
	assert.True(t, adj.Total.Equal(dec("30")))
}

func TestApplyCoupon_Invalid(t *testing.T) {
	expired := fixedNow.Add(-time.Minute)
	cases := map[string]Coupon{
		"inactive":     {Code: "A", Type: CouponTypeFixed, Value: dec("1")},
		"expired":      {Code: "B", Type: CouponTypeFixed, Value: dec("1"), IsActive: true, ExpiresAt: &expired},
		"over 100%":    {Code: "C", Type: CouponTypePercentage, Value: dec("101"), IsActive: true},
		"negative":     {Code: "D", Type: CouponTypeFixed, Value: dec("-1"), IsActive: true},
		"unknown type": {Code: "E", Type: "bogo", Value: dec("1"), IsActive: true},
	}

	for name, c := range cases {
		_, err := ApplyCoupon(dec("100"), c, fixedNow)
		assert.ErrorIs(t, err, ErrInvalidCoupon, name)
	}
}

func TestApplyCoupon_NotYetExpired(t *testing.T) {
	expires := fixedNow.Add(time.Hour)
	c := Coupon{Code: "LATER", Type: CouponTypeFixed, Value: dec("5"), IsActive: true, ExpiresAt: &expires}

	adj, err := ApplyCoupon(dec("20"), c, fixedNow)
	require.NoError(t, err)
	assert.True(t, adj.Total.Equal(dec("15")))
}

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCouponCode("  save10 "))
}
