package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus int

const (
	OrderStatusPending OrderStatus = iota
	OrderStatusShipped
	OrderStatusRejected
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusShipped:
		return "shipped"
	case OrderStatusRejected:
		return "rejected"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// IsTerminal reports whether no further transition or mutation is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusShipped || s == OrderStatusRejected
}

// ParseOrderStatus accepts the status name or its numeric code.
func ParseOrderStatus(value string) (OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pending", "0":
		return OrderStatusPending, nil
	case "shipped", "1":
		return OrderStatusShipped, nil
	case "rejected", "2":
		return OrderStatusRejected, nil
	}
	return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, value)
}

// OrderItem is a priced snapshot of a cart line taken at order creation.
type OrderItem struct {
	ID          int64           `json:"orderItemId,omitempty"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// ShippingInfo is the contact and shipping snapshot captured at checkout.
type ShippingInfo struct {
	CustomerID      int64  `json:"customerId"`
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerAddress string `json:"customerAddress"`
	CustomerPhone   string `json:"customerPhone"`
	OrderNotes      string `json:"orderNotes"`
}

// ShippingUpdate carries the shipping fields to change; nil fields are kept.
type ShippingUpdate struct {
	CustomerName    *string `json:"customerName"`
	CustomerEmail   *string `json:"customerEmail"`
	CustomerAddress *string `json:"customerAddress"`
	CustomerPhone   *string `json:"customerPhone"`
	OrderNotes      *string `json:"orderNotes"`
}

// Order is the system of record for a completed purchase. It owns copies of
// the item prices so later catalog changes do not alter it.
type Order struct {
	ID              int64           `json:"orderId"`
	CustomerID      int64           `json:"customerId"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerAddress string          `json:"customerAddress"`
	CustomerPhone   string          `json:"customerPhone"`
	OrderNotes      string          `json:"orderNotes"`
	OrderDate       time.Time       `json:"orderDate"`
	ShippedDate     *time.Time      `json:"shippedDate"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	OrderItems      []OrderItem     `json:"orderItems"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	CouponCode      string          `json:"couponCode,omitempty"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
}

// NewOrder snapshots every cart line into a pending order.
func NewOrder(cart *Cart, info ShippingInfo, now time.Time) (*Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := cart.Items()
	items := make([]OrderItem, len(lines))
	for i, line := range lines {
		items[i] = OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.EffectiveUnitPrice(),
			TotalPrice:  line.Subtotal(),
		}
	}

	return &Order{
		CustomerID:      info.CustomerID,
		CustomerName:    info.CustomerName,
		CustomerEmail:   info.CustomerEmail,
		CustomerAddress: info.CustomerAddress,
		CustomerPhone:   info.CustomerPhone,
		OrderNotes:      info.OrderNotes,
		OrderDate:       now,
		OrderStatus:     OrderStatusPending,
		OrderItems:      items,
		TotalAmount:     sumItems(items),
		DiscountAmount:  decimal.Zero,
	}, nil
}

func sumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// ApplyDiscount records a coupon adjustment against the order total.
func (o *Order) ApplyDiscount(adj Adjustment) {
	o.CouponCode = adj.Code
	o.DiscountAmount = decimal.Min(adj.Discount, o.TotalAmount)
}

// AmountDue is the total after the recorded discount.
func (o *Order) AmountDue() decimal.Decimal {
	return o.TotalAmount.Sub(o.DiscountAmount)
}

// Clone returns a deep copy so callers can stage changes.
func (o *Order) Clone() *Order {
	c := *o
	c.OrderItems = make([]OrderItem, len(o.OrderItems))
	copy(c.OrderItems, o.OrderItems)
	if o.ShippedDate != nil {
		shipped := *o.ShippedDate
		c.ShippedDate = &shipped
	}
	return &c
}

func (o *Order) requirePending(action string) error {
	if o.OrderStatus != OrderStatusPending {
		return fmt.Errorf("%w: cannot %s order %d in status %s", ErrInvalidState, action, o.ID, o.OrderStatus)
	}
	return nil
}

func (o *Order) UpdateShippingInfo(update ShippingUpdate) error {
	if err := o.requirePending("update shipping info of"); err != nil {
		return err
	}

	if update.CustomerName != nil {
		o.CustomerName = *update.CustomerName
	}
	if update.CustomerEmail != nil {
		o.CustomerEmail = *update.CustomerEmail
	}
	if update.CustomerAddress != nil {
		o.CustomerAddress = *update.CustomerAddress
	}
	if update.CustomerPhone != nil {
		o.CustomerPhone = *update.CustomerPhone
	}
	if update.OrderNotes != nil {
		o.OrderNotes = *update.OrderNotes
	}
	return nil
}

// CanTransitionTo checks a transition without applying it.
func (o *Order) CanTransitionTo(next OrderStatus) error {
	if o.OrderStatus.IsTerminal() {
		return fmt.Errorf("%w: order %d is already %s", ErrInvalidTransition, o.ID, o.OrderStatus)
	}
	if next != OrderStatusShipped && next != OrderStatusRejected {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.OrderStatus, next)
	}
	return nil
}

// TransitionTo moves a pending order to Shipped or Rejected. Shipping stamps
// ShippedDate with now.
func (o *Order) TransitionTo(next OrderStatus, now time.Time) error {
	if err := o.CanTransitionTo(next); err != nil {
		return err
	}

	o.OrderStatus = next
	if next == OrderStatusShipped {
		shipped := now
		o.ShippedDate = &shipped
	}
	return nil
}

// RemoveItem drops one item from a pending order and recomputes the total.
func (o *Order) RemoveItem(orderItemID int64) error {
	if err := o.requirePending("remove items from"); err != nil {
		return err
	}

	for i, item := range o.OrderItems {
		if item.ID == orderItemID {
			o.OrderItems = append(o.OrderItems[:i], o.OrderItems[i+1:]...)
			o.TotalAmount = sumItems(o.OrderItems)
			o.DiscountAmount = decimal.Min(o.DiscountAmount, o.TotalAmount)
			return nil
		}
	}
	return fmt.Errorf("%w: item %d in order %d", ErrNotFound, orderItemID, o.ID)
}

// StockDemand sums item quantities per product, keeping first-seen order.
func (o *Order) StockDemand() []StockLine {
	var lines []StockLine
	index := make(map[int64]int)
	for _, item := range o.OrderItems {
		if i, ok := index[item.ProductID]; ok {
			lines[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// StockLine is the quantity of one product taken from stock by a shipment.
type StockLine struct {
	ProductID int64
	Quantity  int
}
