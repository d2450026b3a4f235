package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/megstore/storefront/internal/domain"
)

type PostgresSessionStore struct {
	db *sql.DB
}

func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

func (r *PostgresSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, customer_id, token, created_at, updated_at
		FROM sessions
		WHERE session_id = $1
	`

	session := &domain.Session{}
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.CustomerID,
		&session.Token,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("session receive error: %w", err)
	}
	return session, nil
}

func (r *PostgresSessionStore) Put(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (session_id, customer_id, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id)
		DO UPDATE SET customer_id = EXCLUDED.customer_id, token = EXCLUDED.token, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.CustomerID,
		session.Token,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("session save error: %w", err)
	}
	return nil
}

func (r *PostgresSessionStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("session delete error: %w", err)
	}
	return nil
}
