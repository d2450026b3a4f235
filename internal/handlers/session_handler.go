package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	sharedHTTP "github.com/megstore/storefront/internal/http"
	"github.com/megstore/storefront/internal/service"
)

type SessionHandler struct {
	sessions *service.SessionService
	logger   *zap.Logger
}

func NewSessionHandler(sessions *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// Login starts or upgrades a session. Without a token the session is a guest.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&request); err != nil {
			return sharedHTTP.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
				"parse_error": err.Error(),
			})
		}
	}
	if request.CustomerID < 0 {
		return sharedHTTP.BadRequestResponse(c, "Invalid customer ID", map[string]interface{}{
			"customer_id": request.CustomerID,
		})
	}

	session, err := h.sessions.Login(c.UserContext(), c.Get(HeaderSessionID), request.Token, request.CustomerID)
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		return sharedHTTP.ErrorResponse(c, "Login failed", err)
	}

	c.Set(HeaderSessionID, session.ID)
	return sharedHTTP.CreatedResponse(c, "Session started", mapSession(session))
}

func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	session := currentSession(c)
	if err := h.sessions.Logout(c.UserContext(), session.ID); err != nil {
		h.logger.Error("logout failed", zap.String("session_id", session.ID), zap.Error(err))
		return sharedHTTP.ErrorResponse(c, "Logout failed", err)
	}
	return sharedHTTP.SuccessResponse(c, "Session ended", nil)
}
