package inventory

import (
	"errors"
	"fmt"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// Inventory error codes
const (
	CodeInsufficientBatchStock = "INSUFFICIENT_BATCH_STOCK"
	CodeInventoryInconsistency = "INVENTORY_INCONSISTENCY"
	CodeInvalidQuantity        = "INVALID_QUANTITY"
	CodeBatchNotActive         = "BATCH_NOT_ACTIVE"
)

// Integrity errors. Both indicate that the ledger and the batch totals have
// drifted apart; they are never recoverable by the caller.
var (
	ErrInsufficientBatchStock = shared.NewDomainError(CodeInsufficientBatchStock, "Batch does not hold the requested quantity")
	ErrInventoryInconsistency = shared.NewDomainError(CodeInventoryInconsistency, "Inventory ledger and batch totals disagree")
	ErrInvalidQuantity        = shared.NewDomainError(CodeInvalidQuantity, "Quantity must be positive")
	ErrBatchNotActive         = shared.NewDomainError(CodeBatchNotActive, "Batch is not active")
)

// InsufficientStockError is returned when the ledger's available stock cannot
// cover a request. It is recoverable: the caller may retry with a lower
// quantity or another warehouse.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s in warehouse %s: requested %d, available %d",
		e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

// Unwrap exposes the shared INSUFFICIENT_STOCK domain error
func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}

// NewInsufficientStockError creates a new InsufficientStockError
func NewInsufficientStockError(productID, warehouseID uuid.UUID, requested, available int64) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Requested:   requested,
		Available:   available,
	}
}

// IsIntegrityError reports whether err signals ledger/batch drift.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrInventoryInconsistency) || errors.Is(err, ErrInsufficientBatchStock)
}

func inconsistency(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInventoryInconsistency, fmt.Sprintf(format, args...))
}
