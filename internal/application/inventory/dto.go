package inventory

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockResponse represents a ledger row in API responses
type StockResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	AvailableStock int64     `json:"available_stock"`
	ReservedStock  int64     `json:"reserved_stock"`
	TotalStock     int64     `json:"total_stock"`
	Version        int       `json:"version"`
	ReadAt         time.Time `json:"read_at"`
	Cached         bool      `json:"cached"`
}

// ReplenishRequest creates a purchase batch and receives its units
type ReplenishRequest struct {
	ProductID         uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID       uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity          int64           `json:"quantity" binding:"required,gt=0"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	DistributionPrice decimal.Decimal `json:"distribution_price"`
	PurchaseID        *uuid.UUID      `json:"purchase_id"`
	PurchaseDate      *time.Time      `json:"purchase_date"`
	ExpiryDate        *time.Time      `json:"expiry_date"`
}

// AllocateRequest reserves stock outside of a checkout
type AllocateRequest struct {
	ProductID     uuid.UUID  `json:"product_id" binding:"required"`
	WarehouseID   uuid.UUID  `json:"warehouse_id" binding:"required"`
	Quantity      int64      `json:"quantity" binding:"required,gt=0"`
	ReferenceType string     `json:"reference_type" binding:"omitempty,oneof=order sale adjustment"`
	ReferenceID   *uuid.UUID `json:"reference_id"`
}

// ConsumptionResponse is one batch draw of an allocation
type ConsumptionResponse struct {
	BatchID           uuid.UUID       `json:"batch_id"`
	Quantity          int64           `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	DistributionPrice decimal.Decimal `json:"distribution_price"`
	Sequence          int             `json:"sequence"`
}

// AllocationResponse represents an allocation result
type AllocationResponse struct {
	ProductID           uuid.UUID             `json:"product_id"`
	WarehouseID         uuid.UUID             `json:"warehouse_id"`
	Quantity            int64                 `json:"quantity"`
	Consumptions        []ConsumptionResponse `json:"consumptions"`
	TotalCost           decimal.Decimal       `json:"total_cost"`
	WeightedAverageCost decimal.Decimal       `json:"weighted_average_cost"`
}

// BatchResponse represents a purchase batch in API responses
type BatchResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	PurchaseID        *uuid.UUID      `json:"purchase_id,omitempty"`
	PurchaseDate      time.Time       `json:"purchase_date"`
	QuantityPurchased int64           `json:"quantity_purchased"`
	QuantityAvailable int64           `json:"quantity_available"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	DistributionPrice decimal.Decimal `json:"distribution_price"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BatchListFilter represents filter options for batch listings
type BatchListFilter struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Status      string
	Page        int
	PageSize    int
	OrderBy     string
	OrderDir    string
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	ProductID     uuid.UUID       `json:"product_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	BatchID       uuid.UUID       `json:"batch_id"`
	Quantity      int64           `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementListFilter represents filter options for the movement log
type MovementListFilter struct {
	ProductID     *uuid.UUID
	WarehouseID   *uuid.UUID
	ReferenceType string
	ReferenceID   *uuid.UUID
	Page          int
	PageSize      int
	OrderBy       string
	OrderDir      string
}

// ToDomainFilter converts the request filter
func (f MovementListFilter) ToDomainFilter() inventory.MovementFilter {
	filter := inventory.MovementFilter{
		Filter:      pageFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir),
		ProductID:   f.ProductID,
		WarehouseID: f.WarehouseID,
		ReferenceID: f.ReferenceID,
	}
	if f.ReferenceType != "" {
		rt := inventory.ReferenceType(f.ReferenceType)
		filter.ReferenceType = &rt
	}
	return filter
}

func pageFilter(page, pageSize int, orderBy, orderDir string) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir != "" {
		filter.OrderDir = orderDir
	}
	return filter
}

// ToStockResponse converts a snapshot
func ToStockResponse(s inventory.StockSnapshot, cached bool) StockResponse {
	return StockResponse{
		ProductID:      s.ProductID,
		WarehouseID:    s.WarehouseID,
		AvailableStock: s.AvailableStock,
		ReservedStock:  s.ReservedStock,
		TotalStock:     s.AvailableStock + s.ReservedStock,
		Version:        s.Version,
		ReadAt:         s.ReadAt,
		Cached:         cached,
	}
}

// ToAllocationResponse converts an allocation result
func ToAllocationResponse(r *inventory.AllocationResult) AllocationResponse {
	consumptions := make([]ConsumptionResponse, len(r.Consumptions))
	for i, c := range r.Consumptions {
		consumptions[i] = ConsumptionResponse{
			BatchID:           c.BatchID,
			Quantity:          c.Quantity,
			UnitCost:          c.UnitCost,
			DistributionPrice: c.DistributionPrice,
			Sequence:          c.Sequence,
		}
	}
	return AllocationResponse{
		ProductID:           r.ProductID,
		WarehouseID:         r.WarehouseID,
		Quantity:            r.Quantity,
		Consumptions:        consumptions,
		TotalCost:           r.TotalCost,
		WeightedAverageCost: r.WeightedAverageCost,
	}
}

// ToBatchResponse converts a purchase batch
func ToBatchResponse(b *inventory.PurchaseBatch) BatchResponse {
	return BatchResponse{
		ID:                b.ID,
		ProductID:         b.ProductID,
		WarehouseID:       b.WarehouseID,
		PurchaseID:        b.PurchaseID,
		PurchaseDate:      b.PurchaseDate,
		QuantityPurchased: b.QuantityPurchased,
		QuantityAvailable: b.QuantityAvailable,
		PurchasePrice:     b.PurchasePrice,
		DistributionPrice: b.DistributionPrice,
		ExpiryDate:        b.ExpiryDate,
		Status:            string(b.Status),
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// ToBatchResponses converts a slice of batches
func ToBatchResponses(batches []*inventory.PurchaseBatch) []BatchResponse {
	responses := make([]BatchResponse, len(batches))
	for i, b := range batches {
		responses[i] = ToBatchResponse(b)
	}
	return responses
}

// ToMovementResponses converts movement log entries
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		m := &movements[i]
		responses[i] = MovementResponse{
			ID:            m.ID,
			Type:          string(m.Type),
			ProductID:     m.ProductID,
			WarehouseID:   m.WarehouseID,
			BatchID:       m.BatchID,
			Quantity:      m.Quantity,
			UnitCost:      m.UnitCost,
			ReferenceType: string(m.ReferenceType),
			ReferenceID:   m.ReferenceID,
			CreatedAt:     m.CreatedAt,
		}
	}
	return responses
}
