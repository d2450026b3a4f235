package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/domain"
)

func init() {
	// The backend expects money as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Config struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// Consecutive failures before the breaker opens.
	MaxFailures uint32        `yaml:"max_failures"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:5000/api",
		Timeout:     10 * time.Second,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

type tokenKey struct{}

// WithToken attaches the backend auth token of the current session to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Client is a JSON REST client for the backend, shared by the product,
// order and coupon gateways.
type Client struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{cfg: cfg, logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "backend",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.MaxFailures > 0 && counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: isAnswer,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

// statusError is a response the backend actually gave. 4xx statuses are
// answers about the request; only 5xx counts against the breaker.
type statusError struct {
	method string
	path   string
	code   int
	body   string
	kind   error
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("%v: %s %s returned %d", e.kind, e.method, e.path, e.code)
	}
	return fmt.Sprintf("%v: %s %s returned %d: %s", e.kind, e.method, e.path, e.code, e.body)
}

func (e *statusError) Unwrap() error { return e.kind }

// isAnswer reports whether err leaves the breaker's failure count alone:
// no error, a client error status, or a caller that gave up.
func isAnswer(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *statusError
	return errors.As(err, &se) && se.code < fiber.StatusInternalServerError
}

// Do sends one request and decodes the JSON response into out when out is
// not nil. 404 maps to domain.ErrNotFound; every other failure, including an
// open breaker, maps to domain.ErrRemoteFailure. Only transport errors,
// timeouts and 5xx responses trip the breaker.
func (c *Client) Do(ctx context.Context, method, path string, in, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.send(ctx, method, path, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrRemoteFailure, method, path, err)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, in, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrRemoteFailure, method, path, err)
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.cfg.BaseURL + path)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok && requestID != "" {
		req.Header.Set(fiber.HeaderXRequestID, requestID)
	}

	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			fiber.ReleaseAgent(agent)
			return fmt.Errorf("request serialization error: %w", err)
		}
		req.Header.SetContentType(fiber.MIMEApplicationJSON)
		req.SetBody(body)
	}

	agent.Timeout(c.timeout(ctx))

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("%w: %s %s: %v", domain.ErrRemoteFailure, method, path, err)
	}

	start := time.Now()
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		c.logger.Error("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Errors("errors", errs),
		)
		return fmt.Errorf("%w: %s %s: %v", domain.ErrRemoteFailure, method, path, errors.Join(errs...))
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", code),
		zap.Duration("latency", time.Since(start)),
	)

	switch {
	case code == fiber.StatusNotFound:
		return &statusError{method: method, path: path, code: code, kind: domain.ErrNotFound}
	case code >= fiber.StatusBadRequest:
		return &statusError{method: method, path: path, code: code, body: truncate(body, 200), kind: domain.ErrRemoteFailure}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s %s: response deserialization error: %v", domain.ErrRemoteFailure, method, path, err)
	}
	return nil
}

func (c *Client) timeout(ctx context.Context) time.Duration {
	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
