package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBatch(t *testing.T, qty int64, cost string, purchaseDate time.Time) *PurchaseBatch {
	t.Helper()
	b, err := NewPurchaseBatch(testProductID, testWarehouseID, qty,
		decimal.RequireFromString(cost), decimal.RequireFromString(cost).Mul(decimal.NewFromFloat(1.3)),
		BatchInfo{PurchaseDate: purchaseDate})
	require.NoError(t, err)
	return b
}

var (
	testProductID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testWarehouseID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	day1            = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day2            = day1.AddDate(0, 0, 1)
)

func TestNewPurchaseBatch(t *testing.T) {
	t.Run("creates active batch with full quantity", func(t *testing.T) {
		b := newTestBatch(t, 10, "10.00", day1)
		assert.Equal(t, int64(10), b.QuantityPurchased)
		assert.Equal(t, int64(10), b.QuantityAvailable)
		assert.Equal(t, BatchStatusActive, b.Status)
		assert.Equal(t, uuid.Version(7), b.ID.Version())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewPurchaseBatch(testProductID, testWarehouseID, 0, decimal.NewFromInt(1), decimal.NewFromInt(1), BatchInfo{})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewPurchaseBatch(testProductID, testWarehouseID, 1, decimal.NewFromInt(-1), decimal.NewFromInt(1), BatchInfo{})
		require.Error(t, err)
	})

	t.Run("defaults purchase date to creation time", func(t *testing.T) {
		b, err := NewPurchaseBatch(testProductID, testWarehouseID, 1, decimal.NewFromInt(1), decimal.NewFromInt(1), BatchInfo{})
		require.NoError(t, err)
		assert.Equal(t, b.CreatedAt, b.PurchaseDate)
	})
}

func TestPurchaseBatch_Consume(t *testing.T) {
	t.Run("depletes exactly at zero", func(t *testing.T) {
		b := newTestBatch(t, 10, "10.00", day1)
		require.NoError(t, b.Consume(4))
		assert.Equal(t, BatchStatusActive, b.Status)
		require.NoError(t, b.Consume(6))
		assert.Equal(t, int64(0), b.QuantityAvailable)
		assert.Equal(t, BatchStatusDepleted, b.Status)
	})

	t.Run("fails when quantity exceeds available", func(t *testing.T) {
		b := newTestBatch(t, 3, "10.00", day1)
		err := b.Consume(4)
		assert.True(t, errors.Is(err, ErrInsufficientBatchStock))
		assert.Equal(t, int64(3), b.QuantityAvailable)
	})

	t.Run("refuses inactive batch", func(t *testing.T) {
		b := newTestBatch(t, 3, "10.00", day1)
		_, err := b.Deactivate()
		require.NoError(t, err)
		assert.ErrorIs(t, b.Consume(1), ErrBatchNotActive)
	})
}

func TestPurchaseBatch_Restore(t *testing.T) {
	t.Run("reactivates depleted batch", func(t *testing.T) {
		b := newTestBatch(t, 10, "10.00", day1)
		require.NoError(t, b.Consume(10))
		require.NoError(t, b.Restore(10))
		assert.Equal(t, int64(10), b.QuantityAvailable)
		assert.Equal(t, BatchStatusActive, b.Status)
	})

	t.Run("cannot exceed purchased quantity", func(t *testing.T) {
		b := newTestBatch(t, 10, "10.00", day1)
		require.NoError(t, b.Consume(2))
		err := b.Restore(3)
		assert.ErrorIs(t, err, ErrInventoryInconsistency)
		assert.Equal(t, int64(8), b.QuantityAvailable)
	})
}

func TestPurchaseBatch_Reactivate(t *testing.T) {
	b := newTestBatch(t, 5, "1.00", day1)
	withdrawn, err := b.Deactivate()
	require.NoError(t, err)
	assert.Equal(t, int64(5), withdrawn)
	assert.False(t, b.IsConsumable())

	restored, err := b.Reactivate()
	require.NoError(t, err)
	assert.Equal(t, int64(5), restored)
	assert.True(t, b.IsConsumable())

	_, err = b.Reactivate()
	assert.Error(t, err)
}
