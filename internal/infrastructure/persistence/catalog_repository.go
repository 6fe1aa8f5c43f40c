package persistence

import (
	"context"
	"errors"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCatalogRepository serves the catalog reads of the fulfillment core and
// the seed writes used by migrations and the simulator.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) first(ctx context.Context, dest any, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

// FindProduct finds a product by ID
func (r *GormCatalogRepository) FindProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.first(ctx, &m, id); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindCategory finds a category by ID
func (r *GormCatalogRepository) FindCategory(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var m models.CategoryModel
	if err := r.first(ctx, &m, id); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAncestry walks up from the category, at most MaxCategoryDepth levels.
// A cycle in parent links ends the walk.
func (r *GormCatalogRepository) FindAncestry(ctx context.Context, id uuid.UUID) ([]*catalog.Category, error) {
	chain := make([]*catalog.Category, 0, catalog.MaxCategoryDepth)
	seen := make(map[uuid.UUID]bool, catalog.MaxCategoryDepth)
	next := &id
	for next != nil && len(chain) < catalog.MaxCategoryDepth && !seen[*next] {
		c, err := r.FindCategory(ctx, *next)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) && len(chain) > 0 {
				break
			}
			return nil, err
		}
		seen[c.ID] = true
		chain = append(chain, c)
		next = c.ParentID
	}
	return chain, nil
}

// FindWarehouse finds a warehouse by ID
func (r *GormCatalogRepository) FindWarehouse(ctx context.Context, id uuid.UUID) (*catalog.Warehouse, error) {
	var m models.WarehouseModel
	if err := r.first(ctx, &m, id); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// ListActiveWarehouses returns active warehouses in picking order
func (r *GormCatalogRepository) ListActiveWarehouses(ctx context.Context) ([]*catalog.Warehouse, error) {
	var rows []models.WarehouseModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("is_main DESC, picking_priority ASC, code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.Warehouse, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// GetPrice returns the warehouse-specific price of a product in a list,
// falling back to the list-wide price. It returns nil when neither exists.
func (r *GormCatalogRepository) GetPrice(ctx context.Context, productID, priceListID uuid.UUID, warehouseID *uuid.UUID) (*decimal.Decimal, error) {
	var rows []models.PriceListItemModel
	if err := r.db.WithContext(ctx).
		Where("price_list_id = ? AND product_id = ?", priceListID, productID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]catalog.PriceListItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return catalog.PickPrice(items, warehouseID), nil
}

// SaveCategory creates or updates a category
func (r *GormCatalogRepository) SaveCategory(ctx context.Context, c *catalog.Category) error {
	var m models.CategoryModel
	m.FromDomain(c)
	return r.db.WithContext(ctx).Save(&m).Error
}

// SaveProduct creates or updates a product
func (r *GormCatalogRepository) SaveProduct(ctx context.Context, p *catalog.Product) error {
	var m models.ProductModel
	m.FromDomain(p)
	return r.db.WithContext(ctx).Save(&m).Error
}

// SaveWarehouse creates or updates a warehouse
func (r *GormCatalogRepository) SaveWarehouse(ctx context.Context, w *catalog.Warehouse) error {
	var m models.WarehouseModel
	m.FromDomain(w)
	return r.db.WithContext(ctx).Save(&m).Error
}

// SavePriceListItem creates or updates a price list entry
func (r *GormCatalogRepository) SavePriceListItem(ctx context.Context, item *catalog.PriceListItem) error {
	var m models.PriceListItemModel
	m.FromDomain(item)
	return r.db.WithContext(ctx).Save(&m).Error
}

// Ensure GormCatalogRepository implements the catalog ports
var (
	_ catalog.ProductReader   = (*GormCatalogRepository)(nil)
	_ catalog.CategoryReader  = (*GormCatalogRepository)(nil)
	_ catalog.WarehouseReader = (*GormCatalogRepository)(nil)
	_ catalog.PriceListReader = (*GormCatalogRepository)(nil)
	_ catalog.CatalogWriter   = (*GormCatalogRepository)(nil)
)
