package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/megstore/storefront/internal/domain"
)

type OrderEventType string

const (
	OrderCreatedEvent         OrderEventType = "order.created"
	OrderShippingUpdatedEvent OrderEventType = "order.shipping_updated"
	OrderItemRemovedEvent     OrderEventType = "order.item_removed"
	OrderShippedEvent         OrderEventType = "order.shipped"
	OrderRejectedEvent        OrderEventType = "order.rejected"
	OrderDeletedEvent         OrderEventType = "order.deleted"
)

// ServiceName is the origin stamped on every event and used as routing key prefix.
const ServiceName = "storefront"

type OrderEvent struct {
	ID            uuid.UUID      `json:"id"`
	OrderID       int64          `json:"order_id"`
	EventType     OrderEventType `json:"event_type"`
	Payload       interface{}    `json:"payload"`
	Timestamp     time.Time      `json:"timestamp"`
	Service       string         `json:"service"`
	CorrelationID uuid.UUID      `json:"correlation_id"`
}

// NewOrderEvent builds an event for order with a fresh id and correlation id.
func NewOrderEvent(eventType OrderEventType, orderID int64, payload interface{}) OrderEvent {
	return OrderEvent{
		ID:            uuid.New(),
		OrderID:       orderID,
		EventType:     eventType,
		Payload:       payload,
		Timestamp:     time.Now(),
		Service:       ServiceName,
		CorrelationID: uuid.New(),
	}
}

// RoutingKey is "<service>.<event type>", e.g. storefront.order.shipped.
func (e OrderEvent) RoutingKey() string {
	return e.Service + "." + string(e.EventType)
}

type OrderCreatedPayload struct {
	Order domain.Order `json:"order"`
}

type OrderStatusChangedPayload struct {
	OrderID     int64              `json:"order_id"`
	Status      string             `json:"status"`
	ShippedDate *time.Time         `json:"shipped_date,omitempty"`
	Stock       []StockChange      `json:"stock,omitempty"`
	Previous    domain.OrderStatus `json:"previous_status"`
}

type StockChange struct {
	ProductID     int64 `json:"product_id"`
	Quantity      int   `json:"quantity"`
	StockQuantity int   `json:"stock_quantity"`
	IsAvailable   bool  `json:"is_available"`
}

type OrderUpdatedPayload struct {
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
	RemovedItem int64           `json:"removed_item,omitempty"`
}

type OrderDeletedPayload struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}
