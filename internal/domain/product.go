package domain

import "github.com/shopspring/decimal"

// Product is the catalog view of a product as served by the product service.
// The storefront never owns it; stock writes go back through the catalog.
type Product struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	StockQuantity      int             `json:"stockQuantity"`
	IsAvailable        bool            `json:"isAvailable"`
	CategoryID         int64           `json:"categoryId,omitempty"`
}

// WithStock returns a copy with the stock level set and availability derived from it.
func (p Product) WithStock(stock int) Product {
	if stock < 0 {
		stock = 0
	}
	p.StockQuantity = stock
	p.IsAvailable = stock > 0
	return p
}

// CanFulfil reports whether quantity units can be taken from stock.
func (p Product) CanFulfil(quantity int) bool {
	return p.IsAvailable && p.StockQuantity >= quantity
}
