package inventory

import (
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeInventoryItem = "InventoryItem"
	AggregateTypePurchaseBatch = "PurchaseBatch"
)

// Event type constants
const (
	EventTypeStockReplenished = "StockReplenished"
	EventTypeStockReserved    = "StockReserved"
	EventTypeStockReleased    = "StockReleased"
	EventTypeStockSettled     = "StockSettled"
	EventTypeStockAllocated   = "StockAllocated"
	EventTypeLowStock         = "LowStock"
)

// StockQuantityEvent is raised when a ledger row's counters change
type StockQuantityEvent struct {
	shared.BaseDomainEvent
	ProductID      uuid.UUID `json:"product_id"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	Quantity       int64     `json:"quantity"`
	AvailableStock int64     `json:"available_stock"`
	ReservedStock  int64     `json:"reserved_stock"`
}

func newStockQuantityEvent(eventType string, item *InventoryItem, quantity int64) *StockQuantityEvent {
	return &StockQuantityEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInventoryItem, item.ID),
		ProductID:       item.ProductID,
		WarehouseID:     item.WarehouseID,
		Quantity:        quantity,
		AvailableStock:  item.AvailableStock,
		ReservedStock:   item.ReservedStock,
	}
}

// NewStockReservedEvent creates an event for units moved to reserved stock
func NewStockReservedEvent(item *InventoryItem, quantity int64) *StockQuantityEvent {
	return newStockQuantityEvent(EventTypeStockReserved, item, quantity)
}

// NewStockReleasedEvent creates an event for units moved back to available stock
func NewStockReleasedEvent(item *InventoryItem, quantity int64) *StockQuantityEvent {
	return newStockQuantityEvent(EventTypeStockReleased, item, quantity)
}

// NewStockSettledEvent creates an event for reserved units that were sold
func NewStockSettledEvent(item *InventoryItem, quantity int64) *StockQuantityEvent {
	return newStockQuantityEvent(EventTypeStockSettled, item, quantity)
}

// NewLowStockEvent creates an event for available stock under threshold
func NewLowStockEvent(item *InventoryItem, threshold int64) *LowStockEvent {
	return &LowStockEvent{
		StockQuantityEvent: *newStockQuantityEvent(EventTypeLowStock, item, 0),
		Threshold:          threshold,
	}
}

// LowStockEvent is raised after a mutation leaves available stock under the
// configured threshold
type LowStockEvent struct {
	StockQuantityEvent
	Threshold int64 `json:"threshold"`
}

// StockReplenishedEvent is raised when a new batch is received
type StockReplenishedEvent struct {
	shared.BaseDomainEvent
	BatchID           uuid.UUID       `json:"batch_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	Quantity          int64           `json:"quantity"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	DistributionPrice decimal.Decimal `json:"distribution_price"`
}

// NewStockReplenishedEvent creates a new StockReplenishedEvent
func NewStockReplenishedEvent(batch *PurchaseBatch) *StockReplenishedEvent {
	return &StockReplenishedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockReplenished, AggregateTypePurchaseBatch, batch.ID),
		BatchID:           batch.ID,
		ProductID:         batch.ProductID,
		WarehouseID:       batch.WarehouseID,
		Quantity:          batch.QuantityPurchased,
		PurchasePrice:     batch.PurchasePrice,
		DistributionPrice: batch.DistributionPrice,
	}
}

// StockAllocatedEvent is raised when an allocation commits
type StockAllocatedEvent struct {
	shared.BaseDomainEvent
	ProductID           uuid.UUID       `json:"product_id"`
	WarehouseID         uuid.UUID       `json:"warehouse_id"`
	Quantity            int64           `json:"quantity"`
	BatchCount          int             `json:"batch_count"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	WeightedAverageCost decimal.Decimal `json:"weighted_average_cost"`
	ReferenceType       ReferenceType   `json:"reference_type"`
	ReferenceID         uuid.UUID       `json:"reference_id"`
}

// NewStockAllocatedEvent creates a new StockAllocatedEvent
func NewStockAllocatedEvent(itemID uuid.UUID, result *AllocationResult, ref StockReference) *StockAllocatedEvent {
	return &StockAllocatedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeStockAllocated, AggregateTypeInventoryItem, itemID),
		ProductID:           result.ProductID,
		WarehouseID:         result.WarehouseID,
		Quantity:            result.Quantity,
		BatchCount:          len(result.Consumptions),
		TotalCost:           result.TotalCost,
		WeightedAverageCost: result.WeightedAverageCost,
		ReferenceType:       ref.Type,
		ReferenceID:         ref.ID,
	}
}
