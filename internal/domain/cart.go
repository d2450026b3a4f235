package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is one product+quantity pairing in a cart. It carries the product
// fields seen when the item was added (or last refreshed) so a persisted cart
// can be priced without a catalog round trip.
type LineItem struct {
	ProductID          int64           `json:"productId"`
	Quantity           int             `json:"quantity"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	StockQuantity      int             `json:"stockQuantity"`
	IsAvailable        bool            `json:"isAvailable"`
}

func newLineItem(product Product, quantity int) LineItem {
	item := LineItem{ProductID: product.ID, Quantity: quantity}
	item.resolve(product)
	return item
}

func (l *LineItem) resolve(product Product) {
	l.Name = product.Name
	l.Price = product.Price
	l.DiscountPercentage = product.DiscountPercentage
	l.StockQuantity = product.StockQuantity
	l.IsAvailable = product.IsAvailable
}

func (l LineItem) EffectiveUnitPrice() decimal.Decimal {
	return EffectiveUnitPrice(l.Price, l.DiscountPercentage)
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered collection of line items, unique by product id.
// The zero value is an empty cart.
type Cart struct {
	items      []LineItem
	couponCode string
}

func NewCart() *Cart {
	return &Cart{}
}

// RestoreCart rebuilds a cart from its persisted form, enforcing the same
// invariants as the mutating operations.
func RestoreCart(items []LineItem, couponCode string) (*Cart, error) {
	cart := &Cart{couponCode: couponCode}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %d has quantity %d", ErrInvalidQuantity, item.ProductID, item.Quantity)
		}
		if cart.indexOf(item.ProductID) >= 0 {
			return nil, fmt.Errorf("%w: product %d", ErrDuplicateItem, item.ProductID)
		}
		cart.items = append(cart.items, item)
	}
	return cart, nil
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem appends a new line. Adding a product that is already present is
// rejected rather than merged.
func (c *Cart) AddItem(product Product, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if c.indexOf(product.ID) >= 0 {
		return fmt.Errorf("%w: product %d", ErrDuplicateItem, product.ID)
	}
	if !product.IsAvailable {
		return fmt.Errorf("%w: product %d", ErrUnavailable, product.ID)
	}

	c.items = append(c.items, newLineItem(product, quantity))
	return nil
}

func (c *Cart) SetQuantity(productID int64, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	i := c.indexOf(productID)
	if i < 0 {
		return fmt.Errorf("%w: product %d not in cart", ErrNotFound, productID)
	}
	c.items[i].Quantity = quantity
	return nil
}

// RemoveItem deletes the line for productID. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID int64) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Resolve replaces the product snapshot of the matching line with product.
func (c *Cart) Resolve(product Product) bool {
	i := c.indexOf(product.ID)
	if i < 0 {
		return false
	}
	c.items[i].resolve(product)
	return true
}

// Total sums the line subtotals. It is recomputed on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Clear empties the cart and drops any applied coupon.
func (c *Cart) Clear() {
	c.items = nil
	c.couponCode = ""
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Items returns a copy of the lines in cart order.
func (c *Cart) Items() []LineItem {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) Item(productID int64) (LineItem, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return LineItem{}, false
	}
	return c.items[i], true
}

func (c *Cart) CouponCode() string {
	return c.couponCode
}

func (c *Cart) SetCouponCode(code string) {
	c.couponCode = code
}
