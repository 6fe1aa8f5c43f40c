package inventory

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/google/uuid"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the stock repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Lock scope:
//   - LockInventory takes an exclusive row lock on the ledger row of a
//     (product, warehouse) pair and holds it until commit or rollback.
//   - Batches have no locks of their own. Every batch read or write for a
//     pair happens after LockInventory for that pair inside the same scope.
//   - Callers locking several pairs do so in StockKey.Less order.
type TransactionalRepositories interface {
	// LockInventory locks and returns the ledger row, creating it when missing
	LockInventory(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryItem, error)
	// InventoryRepo returns the ledger repository scoped to the current transaction
	InventoryRepo() inventory.InventoryItemRepository
	// BatchRepo returns the purchase batch repository scoped to the current transaction
	BatchRepo() inventory.PurchaseBatchRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() inventory.StockMovementRepository
}
