package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/domain"
	"github.com/megstore/storefront/internal/events"
	"github.com/megstore/storefront/internal/repository"
)

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(id int64, price string, stock int) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          fmt.Sprintf("product-%d", id),
		Price:         dec(price),
		StockQuantity: stock,
		IsAvailable:   stock > 0,
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []events.OrderEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.OrderEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

type stockWrite struct {
	productID int64
	stock     int
	available bool
}

// plainCatalog is a Catalog without delta adjustment. Writes can be made
// to fail per product.
type plainCatalog struct {
	mu         sync.Mutex
	products   map[int64]domain.Product
	failUpdate map[int64]error
	writes     []stockWrite
	gets       int
}

func newPlainCatalog(products ...domain.Product) *plainCatalog {
	c := &plainCatalog{
		products:   make(map[int64]domain.Product),
		failUpdate: make(map[int64]error),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *plainCatalog) GetProduct(_ context.Context, productID int64) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	p, ok := c.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	return &p, nil
}

func (c *plainCatalog) UpdateStock(_ context.Context, productID int64, stock int, available bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failUpdate[productID]; err != nil {
		return err
	}
	c.writes = append(c.writes, stockWrite{productID: productID, stock: stock, available: available})
	p := c.products[productID]
	p.StockQuantity = stock
	p.IsAvailable = available
	c.products[productID] = p
	return nil
}

func (c *plainCatalog) stock(productID int64) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.products[productID]
	return p.StockQuantity, p.IsAvailable
}

type failingOrderStore struct {
	*repository.MemoryOrderStore
	createErr error
	updateErr error
}

func (s *failingOrderStore) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.MemoryOrderStore.CreateOrder(ctx, order)
}

func (s *failingOrderStore) UpdateOrder(ctx context.Context, order *domain.Order) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.MemoryOrderStore.UpdateOrder(ctx, order)
}

type fixture struct {
	catalog   Catalog
	carts     *repository.MemoryCartStore
	coupons   *repository.MemoryCouponStore
	orders    *failingOrderStore
	publisher *recordingPublisher

	cartService    *CartService
	couponService  *CouponService
	orderService   *OrderService
	sessionService *SessionService
}

func newFixture(catalog Catalog) *fixture {
	logger := zap.NewNop()
	f := &fixture{
		catalog:   catalog,
		carts:     repository.NewMemoryCartStore(),
		coupons:   repository.NewMemoryCouponStore(),
		orders:    &failingOrderStore{MemoryOrderStore: repository.NewMemoryOrderStore()},
		publisher: &recordingPublisher{},
	}

	f.cartService = NewCartService(f.carts, catalog, logger)
	f.couponService = NewCouponService(f.cartService, f.coupons, logger)
	f.couponService.now = func() time.Time { return fixedNow }
	f.orderService = NewOrderService(f.orders, f.cartService, f.couponService, NewStockAdjuster(catalog, logger), f.publisher, logger)
	f.orderService.now = func() time.Time { return fixedNow }
	f.sessionService = NewSessionService(repository.NewMemorySessionStore(), f.cartService, logger)
	f.sessionService.now = func() time.Time { return fixedNow }
	return f
}
