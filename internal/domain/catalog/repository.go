package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductReader looks up products
type ProductReader interface {
	FindProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}

// CategoryReader looks up categories
type CategoryReader interface {
	FindCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	// FindAncestry returns the category followed by its ancestors, nearest first
	FindAncestry(ctx context.Context, id uuid.UUID) ([]*Category, error)
}

// WarehouseReader looks up warehouses
type WarehouseReader interface {
	FindWarehouse(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	ListActiveWarehouses(ctx context.Context) ([]*Warehouse, error)
}

// PriceListReader resolves list prices
type PriceListReader interface {
	// GetPrice returns nil when the list has no price for the product
	GetPrice(ctx context.Context, productID, priceListID uuid.UUID, warehouseID *uuid.UUID) (*decimal.Decimal, error)
}

// CatalogWriter seeds catalog data. The core only reads the catalog; this is
// used by migrations, the simulator and tests.
type CatalogWriter interface {
	SaveCategory(ctx context.Context, c *Category) error
	SaveProduct(ctx context.Context, p *Product) error
	SaveWarehouse(ctx context.Context, w *Warehouse) error
	SavePriceListItem(ctx context.Context, item *PriceListItem) error
}
