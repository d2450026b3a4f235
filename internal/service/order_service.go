package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/domain"
	"github.com/megstore/storefront/internal/events"
)

type OrderService struct {
	orders    OrderGateway
	carts     *CartService
	coupons   *CouponService
	stock     *StockAdjuster
	publisher EventPublisher
	locks     keyedMutex
	now       func() time.Time
	logger    *zap.Logger
}

func NewOrderService(
	orders OrderGateway,
	carts *CartService,
	coupons *CouponService,
	stock *StockAdjuster,
	publisher EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		coupons:   coupons,
		stock:     stock,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// Create turns the session's cart into a pending order, persists it and
// clears the cart. The cart is kept when anything fails.
func (s *OrderService) Create(ctx context.Context, sessionID string, info domain.ShippingInfo) (*domain.Order, error) {
	var created *domain.Order

	err := s.carts.Checkout(ctx, sessionID, func(cart *domain.Cart) error {
		order, err := domain.NewOrder(cart, info, s.now())
		if err != nil {
			return err
		}

		if cart.CouponCode() != "" {
			adj, err := s.coupons.Quote(ctx, cart)
			if err != nil {
				return err
			}
			order.ApplyDiscount(adj)
		}

		created, err = s.orders.CreateOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("order creation error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Int64("order_id", created.ID),
		zap.Int64("customer_id", created.CustomerID),
		zap.Int("items", len(created.OrderItems)),
		zap.String("total_amount", created.TotalAmount.StringFixed(2)),
		zap.String("discount_amount", created.DiscountAmount.StringFixed(2)),
	)

	s.publish(ctx, events.NewOrderEvent(events.OrderCreatedEvent, created.ID, events.OrderCreatedPayload{
		Order: *created,
	}))
	return created, nil
}

func (s *OrderService) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) lockOrder(orderID int64) func() {
	return s.locks.Lock(strconv.FormatInt(orderID, 10))
}

func (s *OrderService) UpdateShippingInfo(ctx context.Context, orderID int64, update domain.ShippingUpdate) (*domain.Order, error) {
	defer s.lockOrder(orderID)()

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.UpdateShippingInfo(update); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("order update error: %w", err)
	}

	s.publish(ctx, events.NewOrderEvent(events.OrderShippingUpdatedEvent, order.ID, events.OrderUpdatedPayload{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.OrderItems),
	}))
	return order, nil
}

// TransitionTo moves a pending order to Shipped or Rejected. Shipping takes
// the ordered quantities out of stock first; if the status cannot be saved
// afterwards the stock is put back.
func (s *OrderService) TransitionTo(ctx context.Context, orderID int64, next domain.OrderStatus) (*domain.Order, error) {
	defer s.lockOrder(orderID)()

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	staged := order.Clone()
	if err := staged.TransitionTo(next, s.now()); err != nil {
		return nil, err
	}

	var applied []AppliedStock
	if next == domain.OrderStatusShipped {
		applied, err = s.stock.Apply(ctx, order.StockDemand())
		if err != nil {
			s.logger.Warn("order shipment aborted",
				zap.Int64("order_id", orderID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	if err := s.orders.UpdateOrder(ctx, staged); err != nil {
		failure := fmt.Errorf("order status update error: %w", err)
		if len(applied) > 0 {
			return nil, errors.Join(failure, s.stock.Revert(ctx, applied))
		}
		return nil, failure
	}

	s.logger.Info("order status changed",
		zap.Int64("order_id", orderID),
		zap.Stringer("from", order.OrderStatus),
		zap.Stringer("to", staged.OrderStatus),
	)

	eventType := events.OrderRejectedEvent
	if next == domain.OrderStatusShipped {
		eventType = events.OrderShippedEvent
	}
	payload := events.OrderStatusChangedPayload{
		OrderID:     staged.ID,
		Status:      staged.OrderStatus.String(),
		ShippedDate: staged.ShippedDate,
		Previous:    order.OrderStatus,
	}
	for _, write := range applied {
		payload.Stock = append(payload.Stock, events.StockChange{
			ProductID:     write.ProductID,
			Quantity:      write.Quantity,
			StockQuantity: write.StockQuantity,
			IsAvailable:   write.IsAvailable,
		})
	}
	s.publish(ctx, events.NewOrderEvent(eventType, staged.ID, payload))

	return staged, nil
}

func (s *OrderService) RemoveItem(ctx context.Context, orderID, orderItemID int64) (*domain.Order, error) {
	defer s.lockOrder(orderID)()

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.RemoveItem(orderItemID); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("order update error: %w", err)
	}

	s.publish(ctx, events.NewOrderEvent(events.OrderItemRemovedEvent, order.ID, events.OrderUpdatedPayload{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.OrderItems),
		RemovedItem: orderItemID,
	}))
	return order, nil
}

// Delete removes an order in any status.
func (s *OrderService) Delete(ctx context.Context, orderID int64) error {
	defer s.lockOrder(orderID)()

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("order delete error: %w", err)
	}

	s.logger.Info("order deleted",
		zap.Int64("order_id", orderID),
		zap.Stringer("status", order.OrderStatus),
	)

	s.publish(ctx, events.NewOrderEvent(events.OrderDeletedEvent, orderID, events.OrderDeletedPayload{
		OrderID: orderID,
		Status:  order.OrderStatus.String(),
	}))
	return nil
}

// publish never fails the calling operation; the order change is already
// persisted when an event goes out.
func (s *OrderService) publish(ctx context.Context, event events.OrderEvent) {
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Error("order event publish error",
			zap.String("event_type", string(event.EventType)),
			zap.Int64("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}
