package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megstore/storefront/internal/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS carts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sessions").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCartStore_LoadMissingIsEmpty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT items, coupon_code FROM carts WHERE session_id = $1")).
		WithArgs("s1").
		WillReturnError(sql.ErrNoRows)

	cart, err := NewPostgresCartStore(db).Load(context.Background(), "s1")

	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCartStore_Load(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"items", "coupon_code"}).
		AddRow([]byte(`[{"productId":2,"quantity":3,"name":"Mug","price":"4.5","discountPercentage":"0","isAvailable":true,"stockQuantity":9},{"productId":1,"quantity":1,"name":"Pen","price":2,"discountPercentage":10,"isAvailable":true,"stockQuantity":1}]`), "SAVE10")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT items, coupon_code FROM carts")).
		WithArgs("s1").
		WillReturnRows(rows)

	cart, err := NewPostgresCartStore(db).Load(context.Background(), "s1")
	require.NoError(t, err)

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ProductID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, int64(1), items[1].ProductID)
	assert.Equal(t, "SAVE10", cart.CouponCode())
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("15.3")), cart.Total().String())
}

func TestPostgresCartStore_LoadRejectsCorruptRows(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"items", "coupon_code"}).
		AddRow([]byte(`[{"productId":1,"quantity":0}]`), "")
	mock.ExpectQuery("SELECT items, coupon_code FROM carts").WillReturnRows(rows)

	_, err := NewPostgresCartStore(db).Load(context.Background(), "s1")

	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestPostgresCartStore_SaveUpserts(t *testing.T) {
	db, mock := newMock(t)
	store := NewPostgresCartStore(db)
	store.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	cart := domain.NewCart()
	require.NoError(t, cart.AddItem(domain.Product{ID: 1, Name: "Pen", Price: decimal.NewFromInt(2), StockQuantity: 5, IsAvailable: true}, 2))
	cart.SetCouponCode("SAVE10")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO carts (session_id, items, coupon_code, updated_at)")).
		WithArgs("s1", sqlmock.AnyArg(), "SAVE10", store.now()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), "s1", cart))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCartStore_SaveError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO carts").WillReturnError(errors.New("connection reset"))

	err := NewPostgresCartStore(db).Save(context.Background(), "s1", domain.NewCart())

	assert.ErrorContains(t, err, "connection reset")
}

func TestPostgresCartStore_Clear(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM carts WHERE session_id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresCartStore(db).Clear(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionStore_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT session_id, customer_id, token").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := NewPostgresSessionStore(db).Get(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresSessionStore_PutThenGet(t *testing.T) {
	db, mock := newMock(t)
	store := NewPostgresSessionStore(db)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	session := &domain.Session{ID: "s1", CustomerID: 7, Token: "tok", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("s1", int64(7), "tok", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT session_id, customer_id, token").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "customer_id", "token", "created_at", "updated_at"}).
			AddRow("s1", int64(7), "tok", now, now))

	require.NoError(t, store.Put(context.Background(), session))
	got, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, session, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionStore_Delete(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("DELETE FROM sessions").WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresSessionStore(db).Delete(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
