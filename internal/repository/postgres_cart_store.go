package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/megstore/storefront/internal/domain"
)

// PostgresCartStore keeps one row per session holding the serialized line
// items and the applied coupon code.
type PostgresCartStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresCartStore(db *sql.DB) *PostgresCartStore {
	return &PostgresCartStore{db: db, now: time.Now}
}

// Load returns the stored cart, or an empty cart when the session has none.
func (r *PostgresCartStore) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	query := `
		SELECT items, coupon_code
		FROM carts
		WHERE session_id = $1
	`

	var itemsJSON []byte
	var couponCode string
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&itemsJSON, &couponCode)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewCart(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart receive error: %w", err)
	}

	return decodeCart(itemsJSON, couponCode)
}

func (r *PostgresCartStore) Save(ctx context.Context, sessionID string, cart *domain.Cart) error {
	itemsJSON, err := encodeItems(cart)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO carts (session_id, items, coupon_code, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id)
		DO UPDATE SET items = EXCLUDED.items, coupon_code = EXCLUDED.coupon_code, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, sessionID, itemsJSON, cart.CouponCode(), r.now()); err != nil {
		return fmt.Errorf("cart save error: %w", err)
	}
	return nil
}

func (r *PostgresCartStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("cart clear error: %w", err)
	}
	return nil
}

func encodeItems(cart *domain.Cart) ([]byte, error) {
	items := cart.Items()
	if items == nil {
		items = []domain.LineItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("items serialization error: %w", err)
	}
	return itemsJSON, nil
}

func decodeCart(itemsJSON []byte, couponCode string) (*domain.Cart, error) {
	var items []domain.LineItem
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &items); err != nil {
			return nil, fmt.Errorf("items deserialization error: %w", err)
		}
	}

	cart, err := domain.RestoreCart(items, couponCode)
	if err != nil {
		return nil, fmt.Errorf("stored cart is invalid: %w", err)
	}
	return cart, nil
}
