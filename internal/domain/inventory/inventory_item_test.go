package inventory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T, available int64) *InventoryItem {
	t.Helper()
	item, err := NewInventoryItem(testProductID, testWarehouseID)
	require.NoError(t, err)
	if available > 0 {
		require.NoError(t, item.Receive(available))
	}
	return item
}

func TestNewInventoryItem(t *testing.T) {
	_, err := NewInventoryItem(uuid.Nil, testWarehouseID)
	assert.Error(t, err)
	_, err = NewInventoryItem(testProductID, uuid.Nil)
	assert.Error(t, err)
}

func TestInventoryItem_Reserve(t *testing.T) {
	t.Run("moves available to reserved", func(t *testing.T) {
		item := newTestItem(t, 20)
		require.NoError(t, item.Reserve(15))
		assert.Equal(t, int64(5), item.AvailableStock)
		assert.Equal(t, int64(15), item.ReservedStock)
		assert.Len(t, item.GetDomainEvents(), 1)
	})

	t.Run("reports requested and available on shortage", func(t *testing.T) {
		item := newTestItem(t, 4)
		err := item.Reserve(5)

		var stockErr *InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, int64(5), stockErr.Requested)
		assert.Equal(t, int64(4), stockErr.Available)
		assert.Equal(t, int64(4), item.AvailableStock)
	})
}

func TestInventoryItem_ReleaseAndSettle(t *testing.T) {
	item := newTestItem(t, 20)
	require.NoError(t, item.Reserve(15))

	require.NoError(t, item.Release(5))
	assert.Equal(t, int64(10), item.AvailableStock)
	assert.Equal(t, int64(10), item.ReservedStock)

	require.NoError(t, item.Settle(10))
	assert.Equal(t, int64(10), item.AvailableStock)
	assert.Equal(t, int64(0), item.ReservedStock)

	assert.ErrorIs(t, item.Settle(1), ErrInventoryInconsistency)
	assert.ErrorIs(t, item.Release(1), ErrInventoryInconsistency)
}

func TestInventoryItem_IsBelow(t *testing.T) {
	item := newTestItem(t, 3)
	assert.True(t, item.IsBelow(5))
	assert.False(t, item.IsBelow(3))
	assert.False(t, item.IsBelow(0))
}
