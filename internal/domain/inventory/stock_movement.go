package inventory

import (
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType is the direction of a stock movement
type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// ReferenceType identifies the document that caused a movement
type ReferenceType string

const (
	ReferencePurchase    ReferenceType = "purchase"
	ReferenceOrder       ReferenceType = "order"
	ReferenceOrderCancel ReferenceType = "order_cancel"
	ReferenceSale        ReferenceType = "sale"
	ReferenceAdjustment  ReferenceType = "adjustment"
)

// IsValid returns true if the reference type is known
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferencePurchase, ReferenceOrder, ReferenceOrderCancel, ReferenceSale, ReferenceAdjustment:
		return true
	}
	return false
}

// StockReference points at the document behind a movement
type StockReference struct {
	Type ReferenceType
	ID   uuid.UUID
}

// StockMovement is an append-only audit entry. Movements are never updated
// or deleted once written.
type StockMovement struct {
	shared.BaseEntity
	Type          MovementType
	ProductID     uuid.UUID
	WarehouseID   uuid.UUID
	BatchID       uuid.UUID
	Quantity      int64
	UnitCost      decimal.Decimal
	ReferenceType ReferenceType
	ReferenceID   uuid.UUID
}

// NewStockMovement records quantity units of batch moving in the given direction
func NewStockMovement(movementType MovementType, batch *PurchaseBatch, quantity int64, unitCost decimal.Decimal, ref StockReference) *StockMovement {
	return NewBatchMovement(movementType, batch.ProductID, batch.WarehouseID, batch.ID, quantity, unitCost, ref)
}

// NewBatchMovement records a movement against a batch known only by ID
func NewBatchMovement(
	movementType MovementType,
	productID, warehouseID, batchID uuid.UUID,
	quantity int64,
	unitCost decimal.Decimal,
	ref StockReference,
) *StockMovement {
	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		Type:          movementType,
		ProductID:     productID,
		WarehouseID:   warehouseID,
		BatchID:       batchID,
		Quantity:      quantity,
		UnitCost:      unitCost,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
	}
}

// TotalCost returns quantity times unit cost
func (m *StockMovement) TotalCost() decimal.Decimal {
	return m.UnitCost.Mul(decimal.NewFromInt(m.Quantity))
}
