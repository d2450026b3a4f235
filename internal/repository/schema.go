package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS carts (
		session_id  TEXT PRIMARY KEY,
		items       JSONB NOT NULL DEFAULT '[]',
		coupon_code TEXT NOT NULL DEFAULT '',
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		session_id  TEXT PRIMARY KEY,
		customer_id BIGINT NOT NULL DEFAULT 0,
		token       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the storefront tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema migration error: %w", err)
		}
	}
	return nil
}
