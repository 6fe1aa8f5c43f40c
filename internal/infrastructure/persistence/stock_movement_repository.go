package persistence

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements the append-only movement log
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append inserts movements. Movements are never updated or deleted.
func (r *GormStockMovementRepository) Append(ctx context.Context, movements ...*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]*models.StockMovementModel, len(movements))
	for i, m := range movements {
		rows[i] = models.StockMovementModelFromDomain(m)
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

// List returns a page of movements and the total matching count
func (r *GormStockMovementRepository) List(ctx context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	query := r.scoped(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, StockMovementSortFields, "created_at")
	var rows []models.StockMovementModel
	if err := r.scoped(ctx, filter).
		Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Order("id").
		Offset(filter.Offset()).Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

func (r *GormStockMovementRepository) scoped(ctx context.Context, filter inventory.MovementFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.ReferenceType != nil {
		query = query.Where("reference_type = ?", *filter.ReferenceType)
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}
	return query
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
