package catalog

import (
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceListItem is a product price within a price list. A nil WarehouseID
// makes it the list's default price for every warehouse.
type PriceListItem struct {
	shared.BaseEntity
	PriceListID uuid.UUID
	ProductID   uuid.UUID
	WarehouseID *uuid.UUID
	Price       decimal.Decimal
}

// NewPriceListItem creates a new price list entry
func NewPriceListItem(priceListID, productID uuid.UUID, warehouseID *uuid.UUID, price decimal.Decimal) (*PriceListItem, error) {
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &PriceListItem{
		BaseEntity:  shared.NewBaseEntity(),
		PriceListID: priceListID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Price:       shared.RoundMoney(price),
	}, nil
}

// PickPrice returns the warehouse-specific price if present, else the
// list default, else nil.
func PickPrice(items []PriceListItem, warehouseID *uuid.UUID) *decimal.Decimal {
	var fallback *decimal.Decimal
	for i := range items {
		it := &items[i]
		if it.WarehouseID == nil {
			if fallback == nil {
				fallback = &it.Price
			}
			continue
		}
		if warehouseID != nil && *it.WarehouseID == *warehouseID {
			return &it.Price
		}
	}
	return fallback
}
