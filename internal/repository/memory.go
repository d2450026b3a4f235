package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/megstore/storefront/internal/domain"
)

type storedCart struct {
	items      []byte
	couponCode string
}

// MemoryCartStore keeps carts in the same serialized form as the Postgres
// store, so a loaded cart never aliases a saved one.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]storedCart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]storedCart)}
}

func (s *MemoryCartStore) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.RLock()
	stored, ok := s.carts[sessionID]
	s.mu.RUnlock()
	if !ok {
		return domain.NewCart(), nil
	}
	return decodeCart(stored.items, stored.couponCode)
}

func (s *MemoryCartStore) Save(_ context.Context, sessionID string, cart *domain.Cart) error {
	itemsJSON, err := encodeItems(cart)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.carts[sessionID] = storedCart{items: itemsJSON, couponCode: cart.CouponCode()}
	s.mu.Unlock()
	return nil
}

func (s *MemoryCartStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
	return nil
}

type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domain.Session)}
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return &session, nil
}

func (s *MemorySessionStore) Put(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	s.sessions[session.ID] = *session
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// MemoryCatalog is an in-process product catalog. Stock adjustments are
// atomic under its lock.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

func NewMemoryCatalog(products ...domain.Product) *MemoryCatalog {
	c := &MemoryCatalog{products: make(map[int64]domain.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// Put adds or replaces a product.
func (c *MemoryCatalog) Put(product domain.Product) {
	c.mu.Lock()
	c.products[product.ID] = product
	c.mu.Unlock()
}

func (c *MemoryCatalog) GetProduct(_ context.Context, productID int64) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	product, ok := c.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	return &product, nil
}

func (c *MemoryCatalog) UpdateStock(_ context.Context, productID int64, stock int, available bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	product, ok := c.products[productID]
	if !ok {
		return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	product.StockQuantity = stock
	product.IsAvailable = available
	c.products[productID] = product
	return nil
}

// AdjustStock adds delta to the stock level, flooring at zero, and derives
// availability from the result.
func (c *MemoryCatalog) AdjustStock(_ context.Context, productID int64, delta int) (previous, current int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	product, ok := c.products[productID]
	if !ok {
		return 0, 0, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	previous = product.StockQuantity
	product = product.WithStock(previous + delta)
	c.products[productID] = product
	return previous, product.StockQuantity, nil
}

// MemoryOrderStore assigns sequential order and order item ids the way the
// order service does.
type MemoryOrderStore struct {
	mu         sync.RWMutex
	orders     map[int64]*domain.Order
	nextOrder  int64
	nextItemID int64
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[int64]*domain.Order)}
}

func (s *MemoryOrderStore) CreateOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := order.Clone()
	s.nextOrder++
	created.ID = s.nextOrder
	for i := range created.OrderItems {
		s.nextItemID++
		created.OrderItems[i].ID = s.nextItemID
	}
	s.orders[created.ID] = created
	return created.Clone(), nil
}

func (s *MemoryOrderStore) GetOrder(_ context.Context, orderID int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	return order.Clone(), nil
}

func (s *MemoryOrderStore) UpdateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; !ok {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, order.ID)
	}
	s.orders[order.ID] = order.Clone()
	return nil
}

func (s *MemoryOrderStore) DeleteOrder(_ context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	delete(s.orders, orderID)
	return nil
}

type MemoryCouponStore struct {
	mu      sync.RWMutex
	coupons map[string]domain.Coupon
}

func NewMemoryCouponStore(coupons ...domain.Coupon) *MemoryCouponStore {
	s := &MemoryCouponStore{coupons: make(map[string]domain.Coupon, len(coupons))}
	for _, c := range coupons {
		s.Put(c)
	}
	return s
}

func (s *MemoryCouponStore) Put(coupon domain.Coupon) {
	s.mu.Lock()
	s.coupons[domain.NormalizeCouponCode(coupon.Code)] = coupon
	s.mu.Unlock()
}

func (s *MemoryCouponStore) GetCoupon(_ context.Context, code string) (*domain.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coupon, ok := s.coupons[domain.NormalizeCouponCode(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCoupon, code)
	}
	return &coupon, nil
}
