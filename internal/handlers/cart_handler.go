package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/domain"
	sharedHTTP "github.com/megstore/storefront/internal/http"
	"github.com/megstore/storefront/internal/service"
)

type CartHandler struct {
	carts   *service.CartService
	coupons *service.CouponService
	logger  *zap.Logger
}

func NewCartHandler(carts *service.CartService, coupons *service.CouponService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		coupons: coupons,
		logger:  logger,
	}
}

func (h *CartHandler) respond(c *fiber.Ctx, message string, cart *domain.Cart, removed []int64) error {
	summary, err := h.coupons.Summarize(c.UserContext(), cart)
	if err != nil {
		return sharedHTTP.ErrorResponse(c, "Cart pricing failed", err)
	}
	response := mapCart(summary)
	response.Removed = removed
	return sharedHTTP.SuccessResponse(c, message, response)
}

func (h *CartHandler) fail(c *fiber.Ctx, message string, err error) error {
	h.logger.Warn(message,
		zap.String("session_id", currentSession(c).ID),
		zap.Error(err),
	)
	return sharedHTTP.ErrorResponse(c, message, err)
}

func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := h.carts.Get(c.UserContext(), currentSession(c).ID)
	if err != nil {
		return h.fail(c, "Cart retrieval failed", err)
	}
	return h.respond(c, "Cart retrieved successfully", cart, nil)
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var request AddItemRequest
	if err := c.BodyParser(&request); err != nil {
		return sharedHTTP.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.ProductID <= 0 {
		return sharedHTTP.BadRequestResponse(c, "Invalid product ID", map[string]interface{}{
			"product_id": request.ProductID,
		})
	}

	quantity := 1
	if request.Quantity != nil {
		quantity = *request.Quantity
	}

	cart, err := h.carts.AddItem(c.UserContext(), currentSession(c).ID, request.ProductID, quantity)
	if err != nil {
		return h.fail(c, "Item could not be added", err)
	}
	return h.respond(c, "Item added to cart", cart, nil)
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	productID, ok := parseID(c.Params("productId"))
	if !ok {
		return sharedHTTP.BadRequestResponse(c, "Invalid product ID", map[string]interface{}{
			"product_id": c.Params("productId"),
		})
	}

	var request UpdateItemRequest
	if err := c.BodyParser(&request); err != nil {
		return sharedHTTP.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	cart, err := h.carts.SetQuantity(c.UserContext(), currentSession(c).ID, productID, request.Quantity)
	if err != nil {
		return h.fail(c, "Quantity could not be changed", err)
	}
	return h.respond(c, "Quantity updated", cart, nil)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	productID, ok := parseID(c.Params("productId"))
	if !ok {
		return sharedHTTP.BadRequestResponse(c, "Invalid product ID", map[string]interface{}{
			"product_id": c.Params("productId"),
		})
	}

	cart, err := h.carts.RemoveItem(c.UserContext(), currentSession(c).ID, productID)
	if err != nil {
		return h.fail(c, "Item could not be removed", err)
	}
	return h.respond(c, "Item removed from cart", cart, nil)
}

func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.carts.Clear(c.UserContext(), currentSession(c).ID); err != nil {
		return h.fail(c, "Cart could not be cleared", err)
	}
	return h.respond(c, "Cart cleared", domain.NewCart(), nil)
}

func (h *CartHandler) RefreshCart(c *fiber.Ctx) error {
	cart, removed, err := h.carts.Refresh(c.UserContext(), currentSession(c).ID)
	if err != nil {
		return h.fail(c, "Cart refresh failed", err)
	}
	return h.respond(c, "Cart refreshed", cart, removed)
}

func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	var request ApplyCouponRequest
	if err := c.BodyParser(&request); err != nil {
		return sharedHTTP.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	adj, err := h.coupons.ApplyCode(c.UserContext(), currentSession(c).ID, request.Code)
	if err != nil {
		return h.fail(c, "Coupon could not be applied", err)
	}
	return sharedHTTP.SuccessResponse(c, "Coupon applied", mapAdjustment(adj))
}

func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	cart, err := h.coupons.RemoveCode(c.UserContext(), currentSession(c).ID)
	if err != nil {
		return h.fail(c, "Coupon could not be removed", err)
	}
	return h.respond(c, "Coupon removed", cart, nil)
}

// parseID reads a positive integer route parameter.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
