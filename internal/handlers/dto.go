package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/megstore/storefront/internal/domain"
	"github.com/megstore/storefront/internal/service"
)

type AddItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  *int  `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

type LoginRequest struct {
	Token      string `json:"token"`
	CustomerID int64  `json:"customerId"`
}

type UpdateStatusRequest struct {
	// Status is a name ("shipped") or numeric code (1).
	Status interface{} `json:"status"`
}

type SessionResponse struct {
	SessionID     string    `json:"session_id"`
	CustomerID    int64     `json:"customer_id"`
	Authenticated bool      `json:"authenticated"`
	CreatedAt     time.Time `json:"created_at"`
}

type CartItemResponse struct {
	ProductID          int64           `json:"productId"`
	Name               string          `json:"name"`
	Quantity           int             `json:"quantity"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	EffectiveUnitPrice decimal.Decimal `json:"effectiveUnitPrice"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	StockQuantity      int             `json:"stockQuantity"`
	IsAvailable        bool            `json:"isAvailable"`
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	ItemCount   int                `json:"itemCount"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	CouponCode  string             `json:"couponCode,omitempty"`
	Discount    decimal.Decimal    `json:"discount"`
	Total       decimal.Decimal    `json:"total"`
	CouponError string             `json:"couponError,omitempty"`
	Removed     []int64            `json:"removed,omitempty"`
}

type AdjustmentResponse struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type OrderItemResponse struct {
	ID          int64           `json:"orderItemId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type OrderResponse struct {
	ID              int64               `json:"orderId"`
	CustomerID      int64               `json:"customerId"`
	CustomerName    string              `json:"customerName"`
	CustomerEmail   string              `json:"customerEmail"`
	CustomerAddress string              `json:"customerAddress"`
	CustomerPhone   string              `json:"customerPhone"`
	OrderNotes      string              `json:"orderNotes"`
	OrderDate       time.Time           `json:"orderDate"`
	ShippedDate     *time.Time          `json:"shippedDate"`
	OrderStatus     domain.OrderStatus  `json:"orderStatus"`
	StatusName      string              `json:"statusName"`
	OrderItems      []OrderItemResponse `json:"orderItems"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	CouponCode      string              `json:"couponCode,omitempty"`
	DiscountAmount  decimal.Decimal     `json:"discountAmount"`
	AmountDue       decimal.Decimal     `json:"amountDue"`
}

func mapSession(session *domain.Session) SessionResponse {
	return SessionResponse{
		SessionID:     session.ID,
		CustomerID:    session.CustomerID,
		Authenticated: session.IsAuthenticated(),
		CreatedAt:     session.CreatedAt,
	}
}

func mapCart(summary service.CartSummary) CartResponse {
	items := summary.Cart.Items()
	responses := make([]CartItemResponse, len(items))
	for i, item := range items {
		responses[i] = CartItemResponse{
			ProductID:          item.ProductID,
			Name:               item.Name,
			Quantity:           item.Quantity,
			Price:              domain.Display(item.Price),
			DiscountPercentage: domain.ClampDiscount(item.DiscountPercentage),
			EffectiveUnitPrice: domain.Display(item.EffectiveUnitPrice()),
			Subtotal:           domain.Display(item.Subtotal()),
			StockQuantity:      item.StockQuantity,
			IsAvailable:        item.IsAvailable,
		}
	}

	return CartResponse{
		Items:       responses,
		ItemCount:   len(responses),
		Subtotal:    domain.Display(summary.Adjustment.Subtotal),
		CouponCode:  summary.Cart.CouponCode(),
		Discount:    domain.Display(summary.Adjustment.Discount),
		Total:       domain.Display(summary.Adjustment.Total),
		CouponError: summary.CouponError,
	}
}

func mapAdjustment(adj domain.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		Code:     adj.Code,
		Subtotal: domain.Display(adj.Subtotal),
		Discount: domain.Display(adj.Discount),
		Total:    domain.Display(adj.Total),
	}
}

func mapOrder(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.OrderItems))
	for i, item := range order.OrderItems {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   domain.Display(item.UnitPrice),
			TotalPrice:  domain.Display(item.TotalPrice),
		}
	}

	return OrderResponse{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		CustomerAddress: order.CustomerAddress,
		CustomerPhone:   order.CustomerPhone,
		OrderNotes:      order.OrderNotes,
		OrderDate:       order.OrderDate,
		ShippedDate:     order.ShippedDate,
		OrderStatus:     order.OrderStatus,
		StatusName:      order.OrderStatus.String(),
		OrderItems:      items,
		TotalAmount:     domain.Display(order.TotalAmount),
		CouponCode:      order.CouponCode,
		DiscountAmount:  domain.Display(order.DiscountAmount),
		AmountDue:       domain.Display(order.AmountDue()),
	}
}
