package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFixed      CouponType = "fixed"
)

// Coupon is a discount code as served by the coupon service.
type Coupon struct {
	Code      string          `json:"code"`
	Type      CouponType      `json:"discountType"`
	Value     decimal.Decimal `json:"value"`
	IsActive  bool            `json:"isActive"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
}

// Adjustment is the result of applying a coupon to a total.
type Adjustment struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// NormalizeCouponCode trims and upper-cases a user supplied code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c Coupon) Validate(now time.Time) error {
	if !c.IsActive {
		return fmt.Errorf("%w: %s is not active", ErrInvalidCoupon, c.Code)
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return fmt.Errorf("%w: %s expired", ErrInvalidCoupon, c.Code)
	}
	if c.Value.IsNegative() {
		return fmt.Errorf("%w: %s has negative value", ErrInvalidCoupon, c.Code)
	}

	switch c.Type {
	case CouponTypePercentage:
		if c.Value.GreaterThan(hundred) {
			return fmt.Errorf("%w: percentage must be 0-100", ErrInvalidCoupon)
		}
	case CouponTypeFixed:
	default:
		return fmt.Errorf("%w: unknown coupon type %q", ErrInvalidCoupon, c.Type)
	}
	return nil
}

// ApplyCoupon computes the discounted total. Fixed discounts are capped at
// the subtotal so the adjusted total never goes negative.
func ApplyCoupon(subtotal decimal.Decimal, coupon Coupon, now time.Time) (Adjustment, error) {
	if err := coupon.Validate(now); err != nil {
		return Adjustment{}, err
	}

	var discount decimal.Decimal
	switch coupon.Type {
	case CouponTypePercentage:
		discount = subtotal.Mul(coupon.Value).Div(hundred)
	case CouponTypeFixed:
		discount = decimal.Min(coupon.Value, subtotal)
	}

	return Adjustment{
		Code:     coupon.Code,
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, nil
}

// NoAdjustment is the adjustment of a total without a coupon.
func NoAdjustment(subtotal decimal.Decimal) Adjustment {
	return Adjustment{Subtotal: subtotal, Discount: decimal.Zero, Total: subtotal}
}
