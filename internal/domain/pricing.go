package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// LinePrice is the priced form of one product+quantity pairing.
type LinePrice struct {
	EffectiveUnitPrice decimal.Decimal
	Subtotal           decimal.Decimal
}

// ClampDiscount bounds a discount percentage to [0,100].
func ClampDiscount(percentage decimal.Decimal) decimal.Decimal {
	if percentage.IsNegative() {
		return decimal.Zero
	}
	if percentage.GreaterThan(hundred) {
		return hundred
	}
	return percentage
}

// EffectiveUnitPrice applies a discount percentage to a unit price.
// No rounding happens here; see Display.
func EffectiveUnitPrice(unitPrice, discountPercentage decimal.Decimal) decimal.Decimal {
	d := ClampDiscount(discountPercentage)
	return unitPrice.Mul(one.Sub(d.Div(hundred)))
}

// Price computes the effective unit price and subtotal of quantity units of product.
func Price(product Product, quantity int) (LinePrice, error) {
	if quantity < 1 {
		return LinePrice{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	unit := EffectiveUnitPrice(product.Price, product.DiscountPercentage)
	return LinePrice{
		EffectiveUnitPrice: unit,
		Subtotal:           unit.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Display rounds a monetary amount to two places for presentation.
func Display(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
