package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/domain"
)

type CouponService struct {
	carts   *CartService
	coupons CouponLookup
	now     func() time.Time
	logger  *zap.Logger
}

func NewCouponService(carts *CartService, coupons CouponLookup, logger *zap.Logger) *CouponService {
	return &CouponService{
		carts:   carts,
		coupons: coupons,
		now:     time.Now,
		logger:  logger,
	}
}

// ApplyCode validates code against the current cart total and stores it on
// the cart. On any error the cart is left unchanged.
func (s *CouponService) ApplyCode(ctx context.Context, sessionID, code string) (domain.Adjustment, error) {
	code = domain.NormalizeCouponCode(code)
	if code == "" {
		return domain.Adjustment{}, fmt.Errorf("%w: empty code", domain.ErrInvalidCoupon)
	}

	var adj domain.Adjustment
	_, err := s.carts.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		if cart.IsEmpty() {
			return domain.ErrEmptyCart
		}
		coupon, err := s.lookup(ctx, code)
		if err != nil {
			return err
		}
		adj, err = domain.ApplyCoupon(cart.Total(), *coupon, s.now())
		if err != nil {
			return err
		}
		adj.Code = code
		cart.SetCouponCode(code)
		return nil
	})
	if err != nil {
		return domain.Adjustment{}, err
	}

	s.logger.Info("coupon applied",
		zap.String("session_id", sessionID),
		zap.String("code", code),
		zap.String("discount", adj.Discount.StringFixed(2)),
	)
	return adj, nil
}

func (s *CouponService) RemoveCode(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.carts.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		cart.SetCouponCode("")
		return nil
	})
}

// Quote prices cart with its applied coupon. A cart without a coupon gets
// NoAdjustment; a coupon that stopped being valid yields ErrInvalidCoupon.
func (s *CouponService) Quote(ctx context.Context, cart *domain.Cart) (domain.Adjustment, error) {
	total := cart.Total()
	code := cart.CouponCode()
	if code == "" {
		return domain.NoAdjustment(total), nil
	}

	coupon, err := s.lookup(ctx, code)
	if err != nil {
		return domain.Adjustment{}, err
	}
	adj, err := domain.ApplyCoupon(total, *coupon, s.now())
	if err != nil {
		return domain.Adjustment{}, err
	}
	adj.Code = code
	return adj, nil
}

func (s *CouponService) lookup(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon, err := s.coupons.GetCoupon(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCoupon, code)
	}
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

// CartSummary is a cart priced with its coupon. CouponError is set when the
// applied code no longer validates; the total is then undiscounted.
type CartSummary struct {
	Cart        *domain.Cart
	Adjustment  domain.Adjustment
	CouponError string
}

func (s *CouponService) Summarize(ctx context.Context, cart *domain.Cart) (CartSummary, error) {
	summary := CartSummary{Cart: cart}

	adj, err := s.Quote(ctx, cart)
	switch {
	case errors.Is(err, domain.ErrInvalidCoupon):
		summary.Adjustment = domain.NoAdjustment(cart.Total())
		summary.CouponError = err.Error()
	case err != nil:
		return CartSummary{}, err
	default:
		summary.Adjustment = adj
	}
	return summary, nil
}
