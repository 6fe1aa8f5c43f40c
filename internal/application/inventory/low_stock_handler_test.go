package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []StockAlert
	err    error
}

func (n *recordingNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return n.err
}

func lowStockItem(available int64) *inventory.InventoryItem {
	item, _ := inventory.NewInventoryItem(uuid.New(), uuid.New())
	item.AvailableStock = available
	item.ReservedStock = 2
	return item
}

func TestLowStockHandler_Handle(t *testing.T) {
	t.Run("low stock", func(t *testing.T) {
		notifier := &recordingNotifier{}
		h := NewLowStockHandler(zaptest.NewLogger(t)).WithNotifier(notifier)

		item := lowStockItem(3)
		require.NoError(t, h.Handle(context.Background(), inventory.NewLowStockEvent(item, 5)))

		require.Len(t, notifier.alerts, 1)
		a := notifier.alerts[0]
		assert.Equal(t, "low_stock", a.AlertType)
		assert.Equal(t, item.ProductID.String(), a.ProductID)
		assert.Equal(t, int64(3), a.AvailableStock)
		assert.Equal(t, int64(5), a.Threshold)
	})

	t.Run("out of stock", func(t *testing.T) {
		notifier := &recordingNotifier{}
		h := NewLowStockHandler(zaptest.NewLogger(t)).WithNotifier(notifier)

		require.NoError(t, h.Handle(context.Background(), inventory.NewLowStockEvent(lowStockItem(0), 5)))
		require.Len(t, notifier.alerts, 1)
		assert.Equal(t, "out_of_stock", notifier.alerts[0].AlertType)
	})

	t.Run("notifier failure is swallowed", func(t *testing.T) {
		notifier := &recordingNotifier{err: errors.New("smtp down")}
		h := NewLowStockHandler(zaptest.NewLogger(t)).WithNotifier(notifier)

		assert.NoError(t, h.Handle(context.Background(), inventory.NewLowStockEvent(lowStockItem(1), 5)))
	})

	t.Run("wrong event type", func(t *testing.T) {
		h := NewLowStockHandler(zaptest.NewLogger(t))
		other := &shared.BaseDomainEvent{Type: "Other"}
		assert.Error(t, h.Handle(context.Background(), other))
	})
}

func TestLowStockHandler_EventTypes(t *testing.T) {
	h := NewLowStockHandler(zaptest.NewLogger(t))
	assert.Equal(t, []string{inventory.EventTypeLowStock}, h.EventTypes())
}
