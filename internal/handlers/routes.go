package handlers

import (
	"github.com/gofiber/fiber/v2"

	sharedHTTP "github.com/megstore/storefront/internal/http"
	"github.com/megstore/storefront/internal/service"
)

type Handlers struct {
	Sessions *SessionHandler
	Carts    *CartHandler
	Orders   *OrderHandler
}

func SetupRoutes(app *fiber.App, h Handlers, sessions *service.SessionService) {
	// API v1 routes
	api := app.Group("/api/v1")

	api.Get("/health", h.Orders.HealthCheck)

	api.Post("/session", h.Sessions.Login)

	requireSession := RequireSession(sessions)
	api.Delete("/session", requireSession, h.Sessions.Logout)

	// Cart routes
	cart := api.Group("/cart", requireSession)
	cart.Get("/", h.Carts.GetCart)
	cart.Delete("/", h.Carts.ClearCart)
	cart.Post("/items", h.Carts.AddItem)
	cart.Put("/items/:productId", h.Carts.UpdateItem)
	cart.Delete("/items/:productId", h.Carts.RemoveItem)
	cart.Post("/refresh", h.Carts.RefreshCart)
	cart.Post("/coupon", h.Carts.ApplyCoupon)
	cart.Delete("/coupon", h.Carts.RemoveCoupon)

	api.Post("/checkout", requireSession, h.Orders.Checkout)

	// Order routes; changes need a signed-in session
	orders := api.Group("/orders", requireSession)
	orders.Get("/:id", h.Orders.GetOrderByID)

	signedIn := RequireAuthenticated()
	orders.Put("/:id/shipping", signedIn, h.Orders.UpdateShipping)
	orders.Put("/:id/status", signedIn, h.Orders.UpdateStatus)
	orders.Delete("/:id/items/:itemId", signedIn, h.Orders.RemoveItem)
	orders.Delete("/:id", signedIn, h.Orders.DeleteOrder)

	// Route not found
	app.Use("*", func(c *fiber.Ctx) error {
		return sharedHTTP.NotFoundResponse(c, "Route not found")
	})
}
