package persistence

import (
	"context"
	"errors"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByProductAndWarehouse finds the ledger row of a pair
func (r *GormInventoryItemRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryItem, error) {
	var m models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// LockByProductAndWarehouse selects the ledger row FOR UPDATE, creating it
// first when the pair has never been stocked. Must run inside a transaction.
func (r *GormInventoryItemRepository) LockByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryItem, error) {
	item, err := r.selectForUpdate(ctx, productID, warehouseID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	fresh, err := inventory.NewInventoryItem(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	// A concurrent creator wins the race; the select below then blocks on its row.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
			DoNothing: true,
		}).
		Create(models.InventoryItemModelFromDomain(fresh)).Error; err != nil {
		return nil, err
	}

	return r.selectForUpdate(ctx, productID, warehouseID)
}

func (r *GormInventoryItemRepository) selectForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryItem, error) {
	var m models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByProduct returns the product's ledger rows across warehouses
func (r *GormInventoryItemRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("warehouse_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return itemsToDomain(rows), nil
}

// FindAll lists ledger rows. Supported filters: product_id, warehouse_id, has_stock.
func (r *GormInventoryItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryItem, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryItemModel{})
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "has_stock":
			if value == true {
				query = query.Where("available_stock > 0")
			}
		}
	}
	orderBy := ValidateSortField(filter.OrderBy, InventoryItemSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).Limit(filter.Limit())

	var rows []models.InventoryItemModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return itemsToDomain(rows), nil
}

// Save writes the ledger counters. Callers hold the row lock.
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"available_stock": item.AvailableStock,
			"reserved_stock":  item.ReservedStock,
			"version":         item.Version,
			"updated_at":      item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func itemsToDomain(rows []models.InventoryItemModel) []inventory.InventoryItem {
	items := make([]inventory.InventoryItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items
}

// Ensure GormInventoryItemRepository implements InventoryItemRepository
var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
