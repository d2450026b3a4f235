package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, price string, stock int) Product {
	return Product{
		ID:            id,
		Name:          "product",
		Price:         dec(price),
		StockQuantity: stock,
		IsAvailable:   stock > 0,
	}
}

func TestCart_AddItem(t *testing.T) {
	cart := NewCart()

	require.NoError(t, cart.AddItem(product(1, "10", 5), 2))
	require.NoError(t, cart.AddItem(product(2, "5", 5), 1))

	assert.Equal(t, 2, cart.Len())
	item, ok := cart.Item(1)
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, cart.Total().Equal(dec("25")))
}

func TestCart_AddDuplicateIsRejected(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(product(1, "10", 5), 1))

	err := cart.AddItem(product(1, "10", 5), 3)

	assert.ErrorIs(t, err, ErrDuplicateItem)
	assert.Equal(t, 1, cart.Len())
	item, _ := cart.Item(1)
	assert.Equal(t, 1, item.Quantity)
}

func TestCart_AddUnavailable(t *testing.T) {
	cart := NewCart()

	err := cart.AddItem(product(1, "10", 0), 1)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, cart.IsEmpty())
}

func TestCart_AddInvalidQuantity(t *testing.T) {
	cart := NewCart()

	assert.ErrorIs(t, cart.AddItem(product(1, "10", 5), 0), ErrInvalidQuantity)
	assert.True(t, cart.IsEmpty())
}

func TestCart_SetQuantity(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(product(1, "10", 5), 1))

	require.NoError(t, cart.SetQuantity(1, 4))
	assert.True(t, cart.Total().Equal(dec("40")))

	assert.ErrorIs(t, cart.SetQuantity(1, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, cart.SetQuantity(99, 2), ErrNotFound)

	item, _ := cart.Item(1)
	assert.Equal(t, 4, item.Quantity)
}

func TestCart_RemoveItemReducesTotalBySubtotal(t *testing.T) {
	cart := NewCart()
	discounted := product(2, "7.50", 5)
	discounted.DiscountPercentage = dec("10")
	require.NoError(t, cart.AddItem(product(1, "10", 5), 2))
	require.NoError(t, cart.AddItem(discounted, 3))
	require.NoError(t, cart.AddItem(product(3, "1.25", 5), 1))

	before := cart.Total()
	item, _ := cart.Item(2)

	assert.True(t, cart.RemoveItem(2))
	assert.True(t, before.Sub(cart.Total()).Equal(item.Subtotal()))
	assert.Equal(t, []int64{1, 3}, productIDs(cart))
}

func TestCart_RemoveAbsentIsNoop(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(product(1, "10", 5), 1))

	assert.False(t, cart.RemoveItem(42))
	assert.Equal(t, 1, cart.Len())
}

func TestCart_TotalIsSumOfSubtotals(t *testing.T) {
	cart := NewCart()
	for i := int64(1); i <= 5; i++ {
		p := product(i, "3.33", 10)
		p.DiscountPercentage = dec("15")
		require.NoError(t, cart.AddItem(p, int(i)))
	}

	sum := dec("0")
	for _, item := range cart.Items() {
		sum = sum.Add(item.Subtotal())
	}
	assert.True(t, cart.Total().Equal(sum))
}

func TestCart_ResolveUpdatesSnapshot(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(product(1, "10", 5), 2))

	assert.True(t, cart.Resolve(product(1, "12", 5)))
	assert.True(t, cart.Total().Equal(dec("24")))
	assert.False(t, cart.Resolve(product(9, "1", 1)))
}

func TestCart_ClearDropsItemsAndCoupon(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(product(1, "10", 5), 2))
	cart.SetCouponCode("SAVE10")

	cart.Clear()

	assert.True(t, cart.IsEmpty())
	assert.Empty(t, cart.CouponCode())
	assert.True(t, cart.Total().IsZero())
}

func TestRestoreCart_EnforcesInvariants(t *testing.T) {
	_, err := RestoreCart([]LineItem{{ProductID: 1, Quantity: 0}}, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = RestoreCart([]LineItem{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 2}}, "")
	assert.ErrorIs(t, err, ErrDuplicateItem)

	cart, err := RestoreCart([]LineItem{{ProductID: 3, Quantity: 1}, {ProductID: 1, Quantity: 2}}, "X")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, productIDs(cart))
	assert.Equal(t, "X", cart.CouponCode())
}

func TestCart_ItemsIsACopy(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(product(1, "10", 5), 2))

	items := cart.Items()
	items[0].Quantity = 99

	item, _ := cart.Item(1)
	assert.Equal(t, 2, item.Quantity)
}

func productIDs(cart *Cart) []int64 {
	var ids []int64
	for _, item := range cart.Items() {
		ids = append(ids, item.ProductID)
	}
	return ids
}
