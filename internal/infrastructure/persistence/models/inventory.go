package models

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItemModel is the ledger row of one (product, warehouse) pair.
type InventoryItemModel struct {
	AggregateModel
	ProductID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_item_product_warehouse,priority:1"`
	WarehouseID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_item_product_warehouse,priority:2"`
	AvailableStock int64     `gorm:"not null;default:0;check:chk_inventory_available_nonneg,available_stock >= 0"`
	ReservedStock  int64     `gorm:"not null;default:0;check:chk_inventory_reserved_nonneg,reserved_stock >= 0"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	return &inventory.InventoryItem{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ProductID:         m.ProductID,
		WarehouseID:       m.WarehouseID,
		AvailableStock:    m.AvailableStock,
		ReservedStock:     m.ReservedStock,
	}
}

// FromDomain populates the persistence model from a domain InventoryItem
func (m *InventoryItemModel) FromDomain(i *inventory.InventoryItem) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.ProductID = i.ProductID
	m.WarehouseID = i.WarehouseID
	m.AvailableStock = i.AvailableStock
	m.ReservedStock = i.ReservedStock
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}

// PurchaseBatchModel is the persistence model for a purchase batch.
// The (product_id, warehouse_id, status, purchase_date, id) index serves the
// FIFO scan.
type PurchaseBatchModel struct {
	BaseModel
	ProductID         uuid.UUID             `gorm:"type:uuid;not null;index:idx_batch_fifo,priority:1"`
	WarehouseID       uuid.UUID             `gorm:"type:uuid;not null;index:idx_batch_fifo,priority:2"`
	Status            inventory.BatchStatus `gorm:"type:varchar(20);not null;default:'active';index:idx_batch_fifo,priority:3"`
	PurchaseDate      time.Time             `gorm:"not null;index:idx_batch_fifo,priority:4"`
	PurchaseID        *uuid.UUID            `gorm:"type:uuid;index"`
	QuantityPurchased int64                 `gorm:"not null"`
	QuantityAvailable int64                 `gorm:"not null;check:chk_batch_available_range,quantity_available >= 0 AND quantity_available <= quantity_purchased"`
	PurchasePrice     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	DistributionPrice decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ExpiryDate        *time.Time            `gorm:"index"`
}

// TableName returns the table name for GORM
func (PurchaseBatchModel) TableName() string {
	return "purchase_batches"
}

// ToDomain converts the persistence model to a domain PurchaseBatch
func (m *PurchaseBatchModel) ToDomain() *inventory.PurchaseBatch {
	return &inventory.PurchaseBatch{
		BaseEntity:        m.BaseModel.ToDomain(),
		ProductID:         m.ProductID,
		WarehouseID:       m.WarehouseID,
		PurchaseID:        m.PurchaseID,
		PurchaseDate:      m.PurchaseDate,
		QuantityPurchased: m.QuantityPurchased,
		QuantityAvailable: m.QuantityAvailable,
		PurchasePrice:     m.PurchasePrice,
		DistributionPrice: m.DistributionPrice,
		ExpiryDate:        m.ExpiryDate,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain PurchaseBatch
func (m *PurchaseBatchModel) FromDomain(b *inventory.PurchaseBatch) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.ProductID = b.ProductID
	m.WarehouseID = b.WarehouseID
	m.PurchaseID = b.PurchaseID
	m.PurchaseDate = b.PurchaseDate
	m.QuantityPurchased = b.QuantityPurchased
	m.QuantityAvailable = b.QuantityAvailable
	m.PurchasePrice = b.PurchasePrice
	m.DistributionPrice = b.DistributionPrice
	m.ExpiryDate = b.ExpiryDate
	m.Status = b.Status
}

// PurchaseBatchModelFromDomain creates a new persistence model from a domain PurchaseBatch
func PurchaseBatchModelFromDomain(b *inventory.PurchaseBatch) *PurchaseBatchModel {
	m := &PurchaseBatchModel{}
	m.FromDomain(b)
	return m
}

// StockMovementModel is an append-only audit row
type StockMovementModel struct {
	BaseModel
	Type          inventory.MovementType  `gorm:"type:varchar(10);not null"`
	ProductID     uuid.UUID               `gorm:"type:uuid;not null;index:idx_movement_pair,priority:1"`
	WarehouseID   uuid.UUID               `gorm:"type:uuid;not null;index:idx_movement_pair,priority:2"`
	BatchID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	Quantity      int64                   `gorm:"not null;check:chk_movement_quantity_positive,quantity > 0"`
	UnitCost      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	ReferenceType inventory.ReferenceType `gorm:"type:varchar(20);not null;index:idx_movement_ref,priority:1"`
	ReferenceID   uuid.UUID               `gorm:"type:uuid;not null;index:idx_movement_ref,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		BaseEntity:    m.BaseModel.ToDomain(),
		Type:          m.Type,
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		BatchID:       m.BatchID,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
	}
}

// FromDomain populates the persistence model from a domain StockMovement
func (m *StockMovementModel) FromDomain(s *inventory.StockMovement) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Type = s.Type
	m.ProductID = s.ProductID
	m.WarehouseID = s.WarehouseID
	m.BatchID = s.BatchID
	m.Quantity = s.Quantity
	m.UnitCost = s.UnitCost
	m.ReferenceType = s.ReferenceType
	m.ReferenceID = s.ReferenceID
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{}
	m.FromDomain(s)
	return m
}
