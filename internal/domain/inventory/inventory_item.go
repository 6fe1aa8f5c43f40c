package inventory

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryItem is the stock ledger row for one (product, warehouse) pair.
// It is the aggregate root for reservation bookkeeping.
//
// Batches are debited at reservation time, so AvailableStock always equals
// the sum of QuantityAvailable over the pair's active batches, and
// ReservedStock equals the units held by pending orders.
type InventoryItem struct {
	shared.BaseAggregateRoot
	ProductID      uuid.UUID
	WarehouseID    uuid.UUID
	AvailableStock int64
	ReservedStock  int64
}

// NewInventoryItem creates an empty ledger row for a product-warehouse pair
func NewInventoryItem(productID, warehouseID uuid.UUID) (*InventoryItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
	}, nil
}

// TotalStock returns available plus reserved stock
func (i *InventoryItem) TotalStock() int64 {
	return i.AvailableStock + i.ReservedStock
}

// CanReserve reports whether quantity units are currently available
func (i *InventoryItem) CanReserve(quantity int64) bool {
	return quantity > 0 && i.AvailableStock >= quantity
}

// Receive adds freshly replenished units to available stock
func (i *InventoryItem) Receive(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	i.AvailableStock += quantity
	i.touch()
	return nil
}

// Reserve moves quantity units from available to reserved stock
func (i *InventoryItem) Reserve(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.AvailableStock < quantity {
		return NewInsufficientStockError(i.ProductID, i.WarehouseID, quantity, i.AvailableStock)
	}
	i.AvailableStock -= quantity
	i.ReservedStock += quantity
	i.touch()
	i.AddDomainEvent(NewStockReservedEvent(i, quantity))
	return nil
}

// Release moves quantity units from reserved back to available stock
func (i *InventoryItem) Release(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.ReservedStock < quantity {
		return inconsistency("release of %d exceeds reserved %d for product %s in warehouse %s",
			quantity, i.ReservedStock, i.ProductID, i.WarehouseID)
	}
	i.ReservedStock -= quantity
	i.AvailableStock += quantity
	i.touch()
	i.AddDomainEvent(NewStockReleasedEvent(i, quantity))
	return nil
}

// Settle drops quantity units from reserved stock once they have been sold.
// Available stock is untouched: the units already left their batches at
// reservation time.
func (i *InventoryItem) Settle(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.ReservedStock < quantity {
		return inconsistency("settle of %d exceeds reserved %d for product %s in warehouse %s",
			quantity, i.ReservedStock, i.ProductID, i.WarehouseID)
	}
	i.ReservedStock -= quantity
	i.touch()
	i.AddDomainEvent(NewStockSettledEvent(i, quantity))
	return nil
}

// Withdraw removes quantity units from available stock without reserving
// them, as when a batch is taken out of rotation
func (i *InventoryItem) Withdraw(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.AvailableStock < quantity {
		return inconsistency("withdrawal of %d exceeds available %d for product %s in warehouse %s",
			quantity, i.AvailableStock, i.ProductID, i.WarehouseID)
	}
	i.AvailableStock -= quantity
	i.touch()
	return nil
}

// IsBelow reports whether available stock is under threshold
func (i *InventoryItem) IsBelow(threshold int64) bool {
	return threshold > 0 && i.AvailableStock < threshold
}

func (i *InventoryItem) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}
