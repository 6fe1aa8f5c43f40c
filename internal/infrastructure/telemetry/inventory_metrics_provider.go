package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryMetricsProvider implements InventoryMetricsProvider using GORM.
// It aggregates the inventory_items table directly.
type GormInventoryMetricsProvider struct {
	db *gorm.DB
}

// NewGormInventoryMetricsProvider creates a new GormInventoryMetricsProvider.
func NewGormInventoryMetricsProvider(db *gorm.DB) *GormInventoryMetricsProvider {
	return &GormInventoryMetricsProvider{db: db}
}

// GetReservedQuantityByWarehouse returns reserved units per warehouse.
func (p *GormInventoryMetricsProvider) GetReservedQuantityByWarehouse(ctx context.Context) (map[uuid.UUID]int64, error) {
	type result struct {
		WarehouseID   uuid.UUID `gorm:"column:warehouse_id"`
		ReservedStock int64     `gorm:"column:reserved_stock"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("inventory_items").
		Select("warehouse_id, COALESCE(SUM(reserved_stock), 0) AS reserved_stock").
		Group("warehouse_id").
		Having("SUM(reserved_stock) > 0").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		m[r.WarehouseID] = r.ReservedStock
	}
	return m, nil
}

// GetLowStockCount counts ledger rows with available stock below threshold.
// A non-positive threshold disables the check.
func (p *GormInventoryMetricsProvider) GetLowStockCount(ctx context.Context, threshold int64) (int64, error) {
	if threshold <= 0 {
		return 0, nil
	}
	var count int64
	err := p.db.WithContext(ctx).
		Table("inventory_items").
		Where("available_stock < ?", threshold).
		Count(&count).Error
	return count, err
}

var _ InventoryMetricsProvider = (*GormInventoryMetricsProvider)(nil)
