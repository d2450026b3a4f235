package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/domain"
)

type SessionService struct {
	sessions SessionStore
	carts    *CartService
	now      func() time.Time
	logger   *zap.Logger
}

func NewSessionService(sessions SessionStore, carts *CartService, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		carts:    carts,
		now:      time.Now,
		logger:   logger,
	}
}

// Login stores token and customerID on the session, creating the session
// when sessionID is empty or unknown. An empty token makes a guest session.
func (s *SessionService) Login(ctx context.Context, sessionID, token string, customerID int64) (*domain.Session, error) {
	now := s.now()
	session := &domain.Session{ID: sessionID, CreatedAt: now}

	if sessionID == "" {
		session.ID = uuid.New().String()
	} else {
		existing, err := s.sessions.Get(ctx, sessionID)
		switch {
		case err == nil:
			session.CreatedAt = existing.CreatedAt
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("session receive error: %w", err)
		}
	}

	session.Token = token
	session.CustomerID = customerID
	session.UpdatedAt = now

	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session started",
		zap.String("session_id", session.ID),
		zap.Int64("customer_id", customerID),
		zap.Bool("authenticated", session.IsAuthenticated()),
	)
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Logout forgets the session and its cart.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		return err
	}

	s.logger.Info("session ended", zap.String("session_id", sessionID))
	return nil
}
