package inventory

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchStatus is the lifecycle state of a purchase batch
type BatchStatus string

// Batch statuses
const (
	BatchStatusActive   BatchStatus = "active"
	BatchStatusInactive BatchStatus = "inactive"
	BatchStatusDepleted BatchStatus = "depleted"
)

// IsValid returns true if the status is a known value
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusActive, BatchStatusInactive, BatchStatusDepleted:
		return true
	}
	return false
}

// PurchaseBatch is a lot of stock received in a single replenishment.
// Batches of one (product, warehouse) pair are consumed oldest first.
type PurchaseBatch struct {
	shared.BaseEntity
	ProductID         uuid.UUID
	WarehouseID       uuid.UUID
	PurchaseID        *uuid.UUID
	PurchaseDate      time.Time
	QuantityPurchased int64
	QuantityAvailable int64
	PurchasePrice     decimal.Decimal
	DistributionPrice decimal.Decimal
	ExpiryDate        *time.Time
	Status            BatchStatus
}

// BatchInfo carries the optional attributes of a new batch
type BatchInfo struct {
	PurchaseID   *uuid.UUID
	PurchaseDate time.Time
	ExpiryDate   *time.Time
}

// NewPurchaseBatch creates an active batch holding quantity units.
// Batch IDs are UUIDv7 so that ID order follows creation order.
func NewPurchaseBatch(
	productID, warehouseID uuid.UUID,
	quantity int64,
	purchasePrice, distributionPrice decimal.Decimal,
	info BatchInfo,
) (*PurchaseBatch, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if purchasePrice.IsNegative() || distributionPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	base := shared.NewBaseEntity()
	purchaseDate := info.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = base.CreatedAt
	}

	return &PurchaseBatch{
		BaseEntity:        base,
		ProductID:         productID,
		WarehouseID:       warehouseID,
		PurchaseID:        info.PurchaseID,
		PurchaseDate:      purchaseDate,
		QuantityPurchased: quantity,
		QuantityAvailable: quantity,
		PurchasePrice:     shared.RoundMoney(purchasePrice),
		DistributionPrice: shared.RoundMoney(distributionPrice),
		ExpiryDate:        info.ExpiryDate,
		Status:            BatchStatusActive,
	}, nil
}

// IsConsumable returns true if FIFO may draw from this batch
func (b *PurchaseBatch) IsConsumable() bool {
	return b.Status == BatchStatusActive && b.QuantityAvailable > 0
}

// IsExpired returns true if the batch has an expiry date in the past
func (b *PurchaseBatch) IsExpired(now time.Time) bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(now)
}

// Consume removes quantity units from the batch.
// The batch becomes depleted exactly when nothing is left.
func (b *PurchaseBatch) Consume(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Status != BatchStatusActive {
		return ErrBatchNotActive
	}
	if quantity > b.QuantityAvailable {
		return ErrInsufficientBatchStock.WithMessage(
			"batch " + b.ID.String() + " cannot supply the requested quantity")
	}
	b.QuantityAvailable -= quantity
	if b.QuantityAvailable == 0 {
		b.Status = BatchStatusDepleted
	}
	b.Touch()
	return nil
}

// Restore puts back quantity units previously consumed.
// A depleted batch becomes active again.
func (b *PurchaseBatch) Restore(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.QuantityAvailable+quantity > b.QuantityPurchased {
		return inconsistency("restoring %d to batch %s would exceed purchased quantity %d",
			quantity, b.ID, b.QuantityPurchased)
	}
	b.QuantityAvailable += quantity
	if b.Status == BatchStatusDepleted {
		b.Status = BatchStatusActive
	}
	b.Touch()
	return nil
}

// Deactivate takes the batch out of FIFO rotation.
// It returns the units withdrawn from sale.
func (b *PurchaseBatch) Deactivate() (int64, error) {
	if b.Status != BatchStatusActive {
		return 0, ErrBatchNotActive
	}
	b.Status = BatchStatusInactive
	b.Touch()
	return b.QuantityAvailable, nil
}

// Reactivate returns an inactive batch to FIFO rotation.
// It returns the units put back on sale.
func (b *PurchaseBatch) Reactivate() (int64, error) {
	if b.Status != BatchStatusInactive {
		return 0, shared.ErrInvalidState.WithMessage("only inactive batches can be reactivated")
	}
	if b.QuantityAvailable == 0 {
		b.Status = BatchStatusDepleted
	} else {
		b.Status = BatchStatusActive
	}
	b.Touch()
	return b.QuantityAvailable, nil
}

// AvailableValue returns the remaining quantity valued at purchase price
func (b *PurchaseBatch) AvailableValue() decimal.Decimal {
	return b.PurchasePrice.Mul(decimal.NewFromInt(b.QuantityAvailable))
}

// fifoLess orders batches by purchase date, then by ID (creation order)
func fifoLess(a, b *PurchaseBatch) bool {
	if !a.PurchaseDate.Equal(b.PurchaseDate) {
		return a.PurchaseDate.Before(b.PurchaseDate)
	}
	return a.ID.String() < b.ID.String()
}
