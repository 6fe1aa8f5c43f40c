package inventory

import (
	"context"
	"sort"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockEffects collects what a unit of work did to the ledger so that cache
// invalidation and event publishing can run after commit.
type StockEffects struct {
	items  map[inventory.StockKey]*inventory.InventoryItem
	events []shared.DomainEvent
}

// NewStockEffects creates an empty effect set
func NewStockEffects() *StockEffects {
	return &StockEffects{items: make(map[inventory.StockKey]*inventory.InventoryItem)}
}

// Touch records a ledger row changed by the unit of work
func (e *StockEffects) Touch(item *inventory.InventoryItem) {
	e.items[item.Key()] = item
}

// AddEvents queues events for post-commit publishing
func (e *StockEffects) AddEvents(events ...shared.DomainEvent) {
	e.events = append(e.events, events...)
}

// Keys returns the touched ledger keys in lock order
func (e *StockEffects) Keys() []inventory.StockKey {
	keys := make([]inventory.StockKey, 0, len(e.items))
	for k := range e.items {
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}

// Events returns the queued events followed by the domain events raised on
// touched ledger rows, plus LowStock for rows that ended below threshold.
func (e *StockEffects) Events(lowStockThreshold int64) []shared.DomainEvent {
	events := make([]shared.DomainEvent, 0, len(e.events)+len(e.items))
	events = append(events, e.events...)
	for _, k := range e.Keys() {
		item := e.items[k]
		events = append(events, item.GetDomainEvents()...)
		item.ClearDomainEvents()
		if item.IsBelow(lowStockThreshold) {
			events = append(events, inventory.NewLowStockEvent(item, lowStockThreshold))
		}
	}
	return events
}

// SortKeys orders ledger keys for locking
func SortKeys(keys []inventory.StockKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

// AllocateInScope locks the ledger row of the pair and allocates quantity
// units from its batches oldest first. The batches, movements and ledger row
// are written through repos; nothing is visible until the scope commits.
func AllocateInScope(
	ctx context.Context,
	repos TransactionalRepositories,
	allocator *inventory.StockAllocator,
	productID, warehouseID uuid.UUID,
	quantity int64,
	ref inventory.StockReference,
	effects *StockEffects,
) (*inventory.AllocationResult, error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	item, err := repos.LockInventory(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if !item.CanReserve(quantity) {
		return nil, inventory.NewInsufficientStockError(productID, warehouseID, quantity, item.AvailableStock)
	}

	batches, err := repos.BatchRepo().ListActive(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}

	allocation, err := allocator.Allocate(item, batches, quantity, ref)
	if err != nil {
		return nil, reportIntegrity(ctx, err, productID, warehouseID)
	}

	if err := repos.BatchRepo().SaveBatch(ctx, allocation.Batches); err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Append(ctx, allocation.Movements...); err != nil {
		return nil, err
	}
	if err := repos.InventoryRepo().Save(ctx, item); err != nil {
		return nil, err
	}

	effects.Touch(item)
	effects.AddEvents(inventory.NewStockAllocatedEvent(item.ID, allocation.Result, ref))
	return allocation.Result, nil
}

// ReleaseInScope locks the ledger row of the pair and reverses the recorded
// consumptions, restoring batches in reverse sequence order.
func ReleaseInScope(
	ctx context.Context,
	repos TransactionalRepositories,
	allocator *inventory.StockAllocator,
	productID, warehouseID uuid.UUID,
	consumptions []inventory.BatchConsumption,
	ref inventory.StockReference,
	effects *StockEffects,
) (*inventory.Release, error) {
	item, err := repos.LockInventory(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(consumptions))
	for i, c := range consumptions {
		ids[i] = c.BatchID
	}
	batches, err := repos.BatchRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	release, err := allocator.Release(item, batches, consumptions, ref)
	if err != nil {
		return nil, reportIntegrity(ctx, err, productID, warehouseID)
	}

	if err := repos.BatchRepo().SaveBatch(ctx, release.Batches); err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Append(ctx, release.Movements...); err != nil {
		return nil, err
	}
	if err := repos.InventoryRepo().Save(ctx, item); err != nil {
		return nil, err
	}

	effects.Touch(item)
	return release, nil
}

// SettleInScope locks the ledger row of the pair and drops quantity units
// from reserved stock. Available stock and batches are left alone.
func SettleInScope(
	ctx context.Context,
	repos TransactionalRepositories,
	productID, warehouseID uuid.UUID,
	quantity int64,
	effects *StockEffects,
) error {
	item, err := repos.LockInventory(ctx, productID, warehouseID)
	if err != nil {
		return err
	}
	if err := item.Settle(quantity); err != nil {
		return reportIntegrity(ctx, err, productID, warehouseID)
	}
	if err := repos.InventoryRepo().Save(ctx, item); err != nil {
		return err
	}
	effects.Touch(item)
	return nil
}

// reportIntegrity logs ledger/batch drift at ERROR. The error is returned
// unchanged so the caller's unit of work rolls back.
func reportIntegrity(ctx context.Context, err error, productID, warehouseID uuid.UUID) error {
	if inventory.IsIntegrityError(err) {
		logger.L(ctx).Error("Inventory integrity alarm",
			append(logger.Stock(productID, warehouseID), zap.Error(err))...)
	}
	return err
}
