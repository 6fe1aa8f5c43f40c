package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWarehouse(t *testing.T, code string, isMain bool, priority int) *Warehouse {
	t.Helper()
	w, err := NewWarehouse(code, code+" warehouse", isMain, priority)
	require.NoError(t, err)
	return w
}

func TestSelectWarehouse(t *testing.T) {
	main := mustWarehouse(t, "main", true, 9)
	east := mustWarehouse(t, "east", false, 1)
	west := mustWarehouse(t, "west", false, 2)

	t.Run("main warehouse wins when it has stock", func(t *testing.T) {
		w, avail := SelectWarehouse([]WarehouseCandidate{
			{Warehouse: east, AvailableStock: 50},
			{Warehouse: main, AvailableStock: 10},
		}, 10)
		assert.Equal(t, main, w)
		assert.Equal(t, int64(10), avail)
	})

	t.Run("picking priority breaks ties", func(t *testing.T) {
		w, _ := SelectWarehouse([]WarehouseCandidate{
			{Warehouse: main, AvailableStock: 1},
			{Warehouse: west, AvailableStock: 50},
			{Warehouse: east, AvailableStock: 50},
		}, 10)
		assert.Equal(t, east, w)
	})

	t.Run("inactive warehouses are ignored", func(t *testing.T) {
		closed := mustWarehouse(t, "closed", true, 0)
		closed.IsActive = false
		w, _ := SelectWarehouse([]WarehouseCandidate{
			{Warehouse: closed, AvailableStock: 100},
			{Warehouse: west, AvailableStock: 20},
		}, 10)
		assert.Equal(t, west, w)
	})

	t.Run("reports best quantity when nothing qualifies", func(t *testing.T) {
		w, best := SelectWarehouse([]WarehouseCandidate{
			{Warehouse: east, AvailableStock: 3},
			{Warehouse: west, AvailableStock: 7},
		}, 10)
		assert.Nil(t, w)
		assert.Equal(t, int64(7), best)
	})
}

func TestPickPrice(t *testing.T) {
	list, product := uuid.New(), uuid.New()
	wh := uuid.New()
	other := uuid.New()

	generic, err := NewPriceListItem(list, product, nil, decimal.RequireFromString("15.50"))
	require.NoError(t, err)
	specific, err := NewPriceListItem(list, product, &wh, decimal.RequireFromString("14.999"))
	require.NoError(t, err)
	items := []PriceListItem{*generic, *specific}

	assert.Equal(t, "15.00", PickPrice(items, &wh).StringFixed(2))
	assert.Equal(t, "15.50", PickPrice(items, &other).StringFixed(2))
	assert.Equal(t, "15.50", PickPrice(items, nil).StringFixed(2))
	assert.Nil(t, PickPrice(nil, &wh))

	_, err = NewPriceListItem(list, product, nil, decimal.NewFromInt(-1))
	assert.Error(t, err)
}
