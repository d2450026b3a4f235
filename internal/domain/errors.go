package domain

import "errors"

// Error taxonomy shared by the cart, order and coupon components. Callers match
// with errors.Is; call sites wrap these with the offending ids.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrDuplicateItem     = errors.New("already in cart")
	ErrUnavailable       = errors.New("product unavailable")
	ErrInvalidState      = errors.New("invalid order state")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrRemoteFailure     = errors.New("remote service failure")
	ErrInvalidCoupon     = errors.New("invalid coupon")
)
