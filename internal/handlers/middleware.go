package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/megstore/storefront/internal/domain"
	"github.com/megstore/storefront/internal/gateway"
	sharedHTTP "github.com/megstore/storefront/internal/http"
	"github.com/megstore/storefront/internal/service"
)

const (
	HeaderSessionID = "X-Session-ID"
	sessionLocalKey = "session"
)

// RequireSession resolves the X-Session-ID header to a stored session and
// puts its backend token and the request id on the request context.
func RequireSession(sessions *service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Get(HeaderSessionID)
		if sessionID == "" {
			return sharedHTTP.UnauthorizedResponse(c, "Session header is required")
		}

		session, err := sessions.Get(c.UserContext(), sessionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return sharedHTTP.UnauthorizedResponse(c, "Unknown session")
			}
			return sharedHTTP.ErrorResponse(c, "Session lookup failed", err)
		}

		ctx := gateway.WithToken(c.UserContext(), session.Token)
		ctx = gateway.WithRequestID(ctx, sharedHTTP.RequestID(c))
		c.SetUserContext(ctx)
		c.Locals(sessionLocalKey, session)

		return c.Next()
	}
}

// RequireAuthenticated runs after RequireSession and rejects guest sessions,
// which carry no backend token.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !currentSession(c).IsAuthenticated() {
			return sharedHTTP.ForbiddenResponse(c, "Signed-in session is required")
		}
		return c.Next()
	}
}

func currentSession(c *fiber.Ctx) *domain.Session {
	session, _ := c.Locals(sessionLocalKey).(*domain.Session)
	return session
}
