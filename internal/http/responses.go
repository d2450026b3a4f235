package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/megstore/storefront/internal/domain"
)

const HeaderRequestID = "X-Request-ID"

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
}

type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: RequestID(c),
	})
}

func CreatedResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: RequestID(c),
	})
}

func errorResponse(c *fiber.Ctx, status int, code, message string, details map[string]interface{}) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
		RequestID: RequestID(c),
	})
}

func BadRequestResponse(c *fiber.Ctx, message string, details map[string]interface{}) error {
	return errorResponse(c, fiber.StatusBadRequest, "BAD_REQUEST", message, details)
}

func UnauthorizedResponse(c *fiber.Ctx, message string) error {
	return errorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func NotFoundResponse(c *fiber.Ctx, message string) error {
	return errorResponse(c, fiber.StatusNotFound, "NOT_FOUND", message, nil)
}

func ForbiddenResponse(c *fiber.Ctx, message string) error {
	return errorResponse(c, fiber.StatusForbidden, "FORBIDDEN", message, nil)
}

func BadGatewayResponse(c *fiber.Ctx, message string, details map[string]interface{}) error {
	return errorResponse(c, fiber.StatusBadGateway, "BAD_GATEWAY", message, details)
}

func InternalServerErrorResponse(c *fiber.Ctx, message string, details map[string]interface{}) error {
	return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, details)
}

// ErrorResponse writes err with the status and code of the domain error it wraps.
func ErrorResponse(c *fiber.Ctx, message string, err error) error {
	details := map[string]interface{}{"error": err.Error()}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errorResponse(c, fiber.StatusNotFound, "NOT_FOUND", message, details)
	case errors.Is(err, domain.ErrInvalidQuantity):
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_QUANTITY", message, details)
	case errors.Is(err, domain.ErrInvalidCoupon):
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_COUPON", message, details)
	case errors.Is(err, domain.ErrDuplicateItem):
		return errorResponse(c, fiber.StatusConflict, "DUPLICATE_ITEM", message, details)
	case errors.Is(err, domain.ErrUnavailable):
		return errorResponse(c, fiber.StatusConflict, "UNAVAILABLE", message, details)
	case errors.Is(err, domain.ErrInvalidState):
		return errorResponse(c, fiber.StatusConflict, "INVALID_STATE", message, details)
	case errors.Is(err, domain.ErrInvalidTransition):
		return errorResponse(c, fiber.StatusConflict, "INVALID_TRANSITION", message, details)
	case errors.Is(err, domain.ErrEmptyCart):
		return errorResponse(c, fiber.StatusConflict, "EMPTY_CART", message, details)
	case errors.Is(err, domain.ErrRemoteFailure):
		return BadGatewayResponse(c, message, details)
	}
	return InternalServerErrorResponse(c, message, details)
}

// RequestID returns the request id of c, generating and echoing one when
// the caller did not send it.
func RequestID(c *fiber.Ctx) string {
	if requestID, ok := c.Locals(HeaderRequestID).(string); ok && requestID != "" {
		return requestID
	}
	requestID := c.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	c.Locals(HeaderRequestID, requestID)
	c.Set(HeaderRequestID, requestID)
	return requestID
}
