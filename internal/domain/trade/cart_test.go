package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_SetItem(t *testing.T) {
	product, warehouse := uuid.New(), uuid.New()

	t.Run("adds then updates a line", func(t *testing.T) {
		cart, err := NewCart(nil, "PEN")
		require.NoError(t, err)

		item, err := cart.SetItem(product, warehouse, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), item.Quantity)

		other := uuid.New()
		_, err = cart.SetItem(product, other, 5)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, int64(5), cart.Items[0].Quantity)
		assert.Equal(t, other, cart.Items[0].WarehouseID)
	})

	t.Run("zero quantity deletes the line", func(t *testing.T) {
		cart, _ := NewCart(nil, "PEN")
		_, err := cart.SetItem(product, warehouse, 3)
		require.NoError(t, err)

		item, err := cart.SetItem(product, warehouse, 0)
		require.NoError(t, err)
		assert.Nil(t, item)
		assert.True(t, cart.IsEmpty())
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		cart, _ := NewCart(nil, "PEN")
		_, err := cart.SetItem(product, warehouse, -1)
		assert.Error(t, err)
	})

	t.Run("checked out cart is frozen", func(t *testing.T) {
		cart, _ := NewCart(nil, "PEN")
		_, err := cart.SetItem(product, warehouse, 1)
		require.NoError(t, err)
		require.NoError(t, cart.MarkCheckedOut())

		_, err = cart.SetItem(product, warehouse, 2)
		assert.ErrorIs(t, err, ErrCartNotOpen)
		assert.ErrorIs(t, cart.MarkCheckedOut(), ErrCartNotOpen)
	})
}

func TestCart_MarkCheckedOut_Empty(t *testing.T) {
	cart, _ := NewCart(nil, "PEN")
	assert.ErrorIs(t, cart.MarkCheckedOut(), ErrEmptyCart)
}

func TestNewCart_InvalidCurrency(t *testing.T) {
	_, err := NewCart(nil, "SOLES")
	assert.Error(t, err)
}
