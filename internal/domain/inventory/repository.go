package inventory

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryItemRepository persists ledger rows
type InventoryItemRepository interface {
	// FindByProductAndWarehouse returns the ledger row without locking it
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*InventoryItem, error)

	// LockByProductAndWarehouse returns the ledger row holding an exclusive
	// row lock until the surrounding transaction ends. A missing row is
	// created first so that the lock always has a target.
	LockByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*InventoryItem, error)

	// FindByProduct returns the product's ledger rows across warehouses
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]InventoryItem, error)

	// FindAll lists ledger rows
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryItem, error)

	// Save persists counters and bumps the version
	Save(ctx context.Context, item *InventoryItem) error
}

// PurchaseBatchRepository persists purchase batches
type PurchaseBatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseBatch, error)

	// FindByIDs returns the batches with the given IDs; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*PurchaseBatch, error)

	// ListActive returns consumable batches in FIFO order
	ListActive(ctx context.Context, productID, warehouseID uuid.UUID) ([]*PurchaseBatch, error)

	// ListByProductAndWarehouse returns all batches of the pair in FIFO order
	ListByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]*PurchaseBatch, error)

	// SumActiveAvailable returns the units held by active batches of the pair
	SumActiveAvailable(ctx context.Context, productID, warehouseID uuid.UUID) (int64, error)

	Save(ctx context.Context, batch *PurchaseBatch) error
	SaveBatch(ctx context.Context, batches []*PurchaseBatch) error
}

// MovementFilter narrows a movement listing
type MovementFilter struct {
	shared.Filter
	ProductID     *uuid.UUID
	WarehouseID   *uuid.UUID
	ReferenceType *ReferenceType
	ReferenceID   *uuid.UUID
}

// StockMovementRepository is append-only
type StockMovementRepository interface {
	Append(ctx context.Context, movements ...*StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]StockMovement, int64, error)
}
