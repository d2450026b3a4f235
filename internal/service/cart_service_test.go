package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megstore/storefront/internal/domain"
	"github.com/megstore/storefront/internal/repository"
)

func TestCartService_AddItemPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(repository.NewMemoryCatalog(product(1, "10", 5), product(2, "5", 5)))

	_, err := f.cartService.AddItem(ctx, "s1", 1, 2)
	require.NoError(t, err)
	_, err = f.cartService.AddItem(ctx, "s1", 2, 1)
	require.NoError(t, err)

	cart, err := f.cartService.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Len())
	assert.True(t, cart.Total().Equal(dec("25")))
}

func TestCartService_DuplicateAddIsRejectedWithoutCatalogCall(t *testing.T) {
	ctx := context.Background()
	catalog := newPlainCatalog(product(1, "10", 5))
	f := newFixture(catalog)

	_, err := f.cartService.AddItem(ctx, "s1", 1, 1)
	require.NoError(t, err)
	gets := catalog.gets

	_, err = f.cartService.AddItem(ctx, "s1", 1, 3)

	assert.ErrorIs(t, err, domain.ErrDuplicateItem)
	assert.Equal(t, gets, catalog.gets)
	cart, _ := f.cartService.Get(ctx, "s1")
	item, _ := cart.Item(1)
	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, 1, item.Quantity)
}

func TestCartService_AddItemErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(repository.NewMemoryCatalog(product(1, "10", 0)))

	_, err := f.cartService.AddItem(ctx, "s1", 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.cartService.AddItem(ctx, "s1", 1, 1)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	_, err = f.cartService.AddItem(ctx, "s1", 42, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cart, err := f.cartService.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartService_SetQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(repository.NewMemoryCatalog(product(1, "10", 5), product(2, "5", 5)))
	_, err := f.cartService.AddItem(ctx, "s1", 1, 1)
	require.NoError(t, err)
	_, err = f.cartService.AddItem(ctx, "s1", 2, 1)
	require.NoError(t, err)

	cart, err := f.cartService.SetQuantity(ctx, "s1", 1, 3)
	require.NoError(t, err)
	assert.True(t, cart.Total().Equal(dec("35")))

	_, err = f.cartService.SetQuantity(ctx, "s1", 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.cartService.SetQuantity(ctx, "s1", 9, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cart, err = f.cartService.RemoveItem(ctx, "s1", 2)
	require.NoError(t, err)
	assert.True(t, cart.Total().Equal(dec("30")))

	cart, err = f.cartService.RemoveItem(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Len())

	require.NoError(t, f.cartService.Clear(ctx, "s1"))
	cart, _ = f.cartService.Get(ctx, "s1")
	assert.True(t, cart.IsEmpty())
}

func TestCartService_RefreshUsesLivePrices(t *testing.T) {
	ctx := context.Background()
	catalog := repository.NewMemoryCatalog(product(1, "10", 5), product(2, "5", 5))
	f := newFixture(catalog)
	_, err := f.cartService.AddItem(ctx, "s1", 1, 2)
	require.NoError(t, err)
	_, err = f.cartService.AddItem(ctx, "s1", 2, 1)
	require.NoError(t, err)

	repriced := product(1, "12", 5)
	repriced.DiscountPercentage = dec("50")
	catalog.Put(repriced)

	cart, removed, err := f.cartService.Refresh(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.True(t, cart.Total().Equal(dec("17")), cart.Total().String())

	stored, _ := f.cartService.Get(ctx, "s1")
	assert.True(t, stored.Total().Equal(dec("17")))
}

func TestCartService_RefreshDropsMissingProducts(t *testing.T) {
	ctx := context.Background()
	catalog := newPlainCatalog(product(1, "10", 5), product(2, "5", 5))
	f := newFixture(catalog)
	_, err := f.cartService.AddItem(ctx, "s1", 1, 1)
	require.NoError(t, err)
	_, err = f.cartService.AddItem(ctx, "s1", 2, 1)
	require.NoError(t, err)

	delete(catalog.products, 1)

	cart, removed, err := f.cartService.Refresh(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, removed)
	assert.Equal(t, 1, cart.Len())
}

func TestCartService_ConcurrentAddsFromOneSession(t *testing.T) {
	ctx := context.Background()
	catalog := repository.NewMemoryCatalog()
	for id := int64(1); id <= 20; id++ {
		catalog.Put(product(id, "1", 10))
	}
	f := newFixture(catalog)

	var wg sync.WaitGroup
	for id := int64(1); id <= 20; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _ = f.cartService.AddItem(ctx, "s1", id, 1)
		}(id)
	}
	wg.Wait()

	cart, err := f.cartService.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 20, cart.Len())
}

func TestCartService_CheckoutKeepsCartOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(repository.NewMemoryCatalog(product(1, "10", 5)))
	_, err := f.cartService.AddItem(ctx, "s1", 1, 1)
	require.NoError(t, err)

	err = f.cartService.Checkout(ctx, "s1", func(*domain.Cart) error { return domain.ErrRemoteFailure })
	assert.ErrorIs(t, err, domain.ErrRemoteFailure)
	cart, _ := f.cartService.Get(ctx, "s1")
	assert.Equal(t, 1, cart.Len())

	require.NoError(t, f.cartService.Checkout(ctx, "s1", func(*domain.Cart) error { return nil }))
	cart, _ = f.cartService.Get(ctx, "s1")
	assert.True(t, cart.IsEmpty())
}
