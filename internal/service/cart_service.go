package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/domain"
)

// CartService runs cart operations for a session against the cart store.
// Every mutation is load, change, save under the session's lock.
type CartService struct {
	carts   CartStore
	catalog Catalog
	locks   keyedMutex
	logger  *zap.Logger
}

func NewCartService(carts CartStore, catalog Catalog, logger *zap.Logger) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		logger:  logger,
	}
}

func (s *CartService) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("cart load error: %w", err)
	}
	return cart, nil
}

func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(cart *domain.Cart) error) (*domain.Cart, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("cart load error: %w", err)
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, sessionID, cart); err != nil {
		return nil, fmt.Errorf("cart save error: %w", err)
	}
	return cart, nil
}

// AddItem looks the product up and appends it. A product already in the
// cart is rejected with ErrDuplicateItem without a catalog call.
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}

	cart, err := s.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		if _, ok := cart.Item(productID); ok {
			return fmt.Errorf("%w: product %d", domain.ErrDuplicateItem, productID)
		}
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		return cart.AddItem(*product, quantity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cart item added",
		zap.String("session_id", sessionID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return cart, nil
}

func (s *CartService) SetQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		return cart.SetQuantity(productID, quantity)
	})
}

// RemoveItem is idempotent: removing an absent product leaves the cart as is.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		cart.RemoveItem(productID)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("cart clear error: %w", err)
	}
	return nil
}

// Refresh re-reads every line's product from the catalog so the cart prices
// with live values. Lines whose product no longer exists are dropped and
// their ids returned. Any other catalog error leaves the stored cart as is.
func (s *CartService) Refresh(ctx context.Context, sessionID string) (*domain.Cart, []int64, error) {
	var removed []int64
	cart, err := s.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		removed = nil
		for _, item := range cart.Items() {
			product, err := s.catalog.GetProduct(ctx, item.ProductID)
			if errors.Is(err, domain.ErrNotFound) {
				cart.RemoveItem(item.ProductID)
				removed = append(removed, item.ProductID)
				continue
			}
			if err != nil {
				return err
			}
			cart.Resolve(*product)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if len(removed) > 0 {
		s.logger.Info("cart refreshed with missing products removed",
			zap.String("session_id", sessionID),
			zap.Int64s("removed", removed),
		)
	}
	return cart, removed, nil
}

// Checkout runs fn on the session's cart while holding its lock and clears
// the cart when fn succeeds. A failing fn leaves the cart untouched.
func (s *CartService) Checkout(ctx context.Context, sessionID string, fn func(cart *domain.Cart) error) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("cart load error: %w", err)
	}
	if err := fn(cart); err != nil {
		return err
	}
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		// The order exists at this point, so this is only logged.
		s.logger.Error("cart clear after checkout failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
	return nil
}
