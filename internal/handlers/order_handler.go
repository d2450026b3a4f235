package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/domain"
	sharedHTTP "github.com/megstore/storefront/internal/http"
	"github.com/megstore/storefront/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// Checkout places an order from the session's cart.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var request domain.ShippingInfo
	if err := c.BodyParser(&request); err != nil {
		return sharedHTTP.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	if request.CustomerName == "" {
		return sharedHTTP.BadRequestResponse(c, "Customer name is required", nil)
	}
	if request.CustomerAddress == "" {
		return sharedHTTP.BadRequestResponse(c, "Customer address is required", nil)
	}

	session := currentSession(c)
	if request.CustomerID == 0 {
		request.CustomerID = session.CustomerID
	}

	order, err := h.orders.Create(c.UserContext(), session.ID, request)
	if err != nil {
		h.logger.Error("order creation error", zap.String("session_id", session.ID), zap.Error(err))
		return sharedHTTP.ErrorResponse(c, "Order creation failed", err)
	}

	return sharedHTTP.CreatedResponse(c, "Order created successfully", mapOrder(order))
}

func (h *OrderHandler) GetOrderByID(c *fiber.Ctx) error {
	orderID, ok := parseID(c.Params("id"))
	if !ok {
		return sharedHTTP.BadRequestResponse(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	order, err := h.orders.Get(c.UserContext(), orderID)
	if err != nil {
		return sharedHTTP.ErrorResponse(c, "Order retrieval failed", err)
	}
	return sharedHTTP.SuccessResponse(c, "Order retrieved successfully", mapOrder(order))
}

func (h *OrderHandler) UpdateShipping(c *fiber.Ctx) error {
	orderID, ok := parseID(c.Params("id"))
	if !ok {
		return sharedHTTP.BadRequestResponse(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	var request domain.ShippingUpdate
	if err := c.BodyParser(&request); err != nil {
		return sharedHTTP.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	order, err := h.orders.UpdateShippingInfo(c.UserContext(), orderID, request)
	if err != nil {
		h.logger.Warn("shipping update rejected", zap.Int64("order_id", orderID), zap.Error(err))
		return sharedHTTP.ErrorResponse(c, "Shipping info update failed", err)
	}
	return sharedHTTP.SuccessResponse(c, "Shipping info updated", mapOrder(order))
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	orderID, ok := parseID(c.Params("id"))
	if !ok {
		return sharedHTTP.BadRequestResponse(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	var request UpdateStatusRequest
	if err := c.BodyParser(&request); err != nil {
		return sharedHTTP.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.Status == nil {
		return sharedHTTP.BadRequestResponse(c, "Status is required", nil)
	}

	next, err := domain.ParseOrderStatus(fmt.Sprint(request.Status))
	if err != nil {
		return sharedHTTP.BadRequestResponse(c, "Unknown status", map[string]interface{}{
			"status": request.Status,
		})
	}

	order, err := h.orders.TransitionTo(c.UserContext(), orderID, next)
	if err != nil {
		h.logger.Warn("status change rejected",
			zap.Int64("order_id", orderID),
			zap.Stringer("status", next),
			zap.Error(err),
		)
		return sharedHTTP.ErrorResponse(c, "Status change failed", err)
	}
	return sharedHTTP.SuccessResponse(c, "Order status updated", mapOrder(order))
}

func (h *OrderHandler) RemoveItem(c *fiber.Ctx) error {
	orderID, ok := parseID(c.Params("id"))
	if !ok {
		return sharedHTTP.BadRequestResponse(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}
	itemID, ok := parseID(c.Params("itemId"))
	if !ok {
		return sharedHTTP.BadRequestResponse(c, "Invalid order item ID", map[string]interface{}{
			"item_id": c.Params("itemId"),
		})
	}

	order, err := h.orders.RemoveItem(c.UserContext(), orderID, itemID)
	if err != nil {
		return sharedHTTP.ErrorResponse(c, "Order item removal failed", err)
	}
	return sharedHTTP.SuccessResponse(c, "Order item removed", mapOrder(order))
}

func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	orderID, ok := parseID(c.Params("id"))
	if !ok {
		return sharedHTTP.BadRequestResponse(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	if err := h.orders.Delete(c.UserContext(), orderID); err != nil {
		return sharedHTTP.ErrorResponse(c, "Order deletion failed", err)
	}
	return sharedHTTP.SuccessResponse(c, "Order deleted", fiber.Map{"orderId": orderID})
}

func (h *OrderHandler) HealthCheck(c *fiber.Ctx) error {
	return sharedHTTP.SuccessResponse(c, "Storefront service is healthy", map[string]interface{}{
		"service": "storefront",
		"status":  "healthy",
	})
}
