package service

import (
	"context"

	"github.com/megstore/storefront/internal/domain"
	"github.com/megstore/storefront/internal/events"
)

// Catalog is the read side of the product service plus the stock write used
// when an order ships.
type Catalog interface {
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	UpdateStock(ctx context.Context, productID int64, stock int, available bool) error
}

// StockDeltaAdjuster is implemented by catalogs that apply a stock change
// against the level current at write time. The result is floored at zero.
type StockDeltaAdjuster interface {
	AdjustStock(ctx context.Context, productID int64, delta int) (previous, current int, err error)
}

// OrderGateway is the order system of record. CreateOrder returns the order
// with its assigned ids and leaves the argument untouched.
type OrderGateway interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
	DeleteOrder(ctx context.Context, orderID int64) error
}

type CouponLookup interface {
	GetCoupon(ctx context.Context, code string) (*domain.Coupon, error)
}

// CartStore persists one cart per session. Load returns an empty cart for
// an unknown session.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart *domain.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Put(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, sessionID string) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event events.OrderEvent) error
}
