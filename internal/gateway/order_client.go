package gateway

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/megstore/storefront/internal/domain"
)

// OrderClient persists orders through the order service, which is the
// system of record and assigns order and order item ids.
type OrderClient struct {
	client *Client
}

func NewOrderClient(client *Client) *OrderClient {
	return &OrderClient{client: client}
}

func (o *OrderClient) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var created domain.Order
	if err := o.client.Do(ctx, fiber.MethodPost, "/Order", order, &created); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if created.ID == 0 {
		return nil, fmt.Errorf("%w: create order: no order id in response", domain.ErrRemoteFailure)
	}

	if len(created.OrderItems) != len(order.OrderItems) {
		return nil, fmt.Errorf("%w: create order %d: sent %d items, got %d back",
			domain.ErrRemoteFailure, created.ID, len(order.OrderItems), len(created.OrderItems))
	}

	result := order.Clone()
	result.ID = created.ID
	for i := range result.OrderItems {
		result.OrderItems[i].ID = created.OrderItems[i].ID
	}
	return result, nil
}

func (o *OrderClient) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order domain.Order
	if err := o.client.Do(ctx, fiber.MethodGet, fmt.Sprintf("/Order/%d", orderID), nil, &order); err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return &order, nil
}

func (o *OrderClient) UpdateOrder(ctx context.Context, order *domain.Order) error {
	if err := o.client.Do(ctx, fiber.MethodPut, fmt.Sprintf("/Order/%d", order.ID), order, nil); err != nil {
		return fmt.Errorf("update order %d: %w", order.ID, err)
	}
	return nil
}

func (o *OrderClient) DeleteOrder(ctx context.Context, orderID int64) error {
	if err := o.client.Do(ctx, fiber.MethodDelete, fmt.Sprintf("/Order/%d", orderID), nil, nil); err != nil {
		return fmt.Errorf("delete order %d: %w", orderID, err)
	}
	return nil
}
