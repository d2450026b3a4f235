package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/megstore/storefront/internal/domain"
)

type CouponClient struct {
	client *Client
}

func NewCouponClient(client *Client) *CouponClient {
	return &CouponClient{client: client}
}

// GetCoupon looks a code up. An unknown code is reported as ErrInvalidCoupon.
func (c *CouponClient) GetCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := c.client.Do(ctx, fiber.MethodGet, "/Coupon/"+url.PathEscape(code), nil, &coupon)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCoupon, code)
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon %s: %w", code, err)
	}
	return &coupon, nil
}
