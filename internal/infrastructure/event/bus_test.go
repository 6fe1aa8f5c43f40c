package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func newRecordingHandler(types ...string) *recordingHandler {
	return &recordingHandler{types: types}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func stockEvent(eventType string) shared.DomainEvent {
	item, _ := inventory.NewInventoryItem(uuid.New(), uuid.New())
	e := shared.NewBaseDomainEvent(eventType, inventory.AggregateTypeInventoryItem, item.ID)
	return &e
}

func TestInMemoryEventBus_PublishByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	allocated := newRecordingHandler()
	low := newRecordingHandler()
	bus.Subscribe(allocated, inventory.EventTypeStockAllocated)
	bus.Subscribe(low, inventory.EventTypeLowStock)

	err := bus.Publish(context.Background(),
		stockEvent(inventory.EventTypeStockAllocated),
		stockEvent(inventory.EventTypeStockAllocated),
		stockEvent(inventory.EventTypeLowStock))
	require.NoError(t, err)

	assert.Equal(t, 2, allocated.count())
	assert.Equal(t, 1, low.count())

	published, failed := bus.Stats()
	assert.Equal(t, int64(3), published)
	assert.Zero(t, failed)
}

func TestInMemoryEventBus_SubscribeUsesHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h := newRecordingHandler(inventory.EventTypeLowStock)
	bus.Subscribe(h)

	_ = bus.Publish(context.Background(), stockEvent(inventory.EventTypeLowStock), stockEvent("Other"))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_Wildcard(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	all := newRecordingHandler()
	bus.Subscribe(all)

	_ = bus.Publish(context.Background(), stockEvent("A"), stockEvent("B"))
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))

	failing := newRecordingHandler()
	failing.err = errors.New("handler error")
	panicking := newRecordingHandler()
	panicking.panics = true
	ok := newRecordingHandler()

	bus.Subscribe(failing, "E")
	bus.Subscribe(panicking, "E")
	bus.Subscribe(ok, "E")

	require.NoError(t, bus.Publish(context.Background(), stockEvent("E")))
	assert.Equal(t, 1, ok.count())

	_, failed := bus.Stats()
	assert.Equal(t, int64(2), failed)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h := newRecordingHandler()
	bus.Subscribe(h, "E", "F")
	_ = bus.Publish(context.Background(), stockEvent("E"))

	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), stockEvent("E"), stockEvent("F"))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_StopDropsEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newRecordingHandler()
	bus.Subscribe(h, "E")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	require.NoError(t, bus.Publish(context.Background(), stockEvent("E")))
	assert.Zero(t, h.count())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), stockEvent("E")))
	assert.Equal(t, 1, h.count())
}

func TestLoggingHandler(t *testing.T) {
	h := NewLoggingHandler(zaptest.NewLogger(t))
	assert.Empty(t, h.EventTypes())
	assert.NoError(t, h.Handle(context.Background(), stockEvent("E")))
}
