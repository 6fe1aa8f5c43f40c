package persistence

import (
	"context"
	"errors"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseBatchRepository implements PurchaseBatchRepository using GORM.
//
// Batches carry no row locks of their own: every mutation of a pair's
// batches happens while the pair's ledger row is locked.
type GormPurchaseBatchRepository struct {
	db *gorm.DB
}

// NewGormPurchaseBatchRepository creates a new GormPurchaseBatchRepository
func NewGormPurchaseBatchRepository(db *gorm.DB) *GormPurchaseBatchRepository {
	return &GormPurchaseBatchRepository{db: db}
}

const fifoOrder = "purchase_date ASC, id ASC"

// FindByID finds a batch by ID
func (r *GormPurchaseBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.PurchaseBatch, error) {
	var m models.PurchaseBatchModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByIDs returns the batches with the given IDs in FIFO order
func (r *GormPurchaseBatchRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*inventory.PurchaseBatch, error) {
	if len(ids) == 0 {
		return []*inventory.PurchaseBatch{}, nil
	}
	var rows []models.PurchaseBatchModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order(fifoOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return batchesToDomain(rows), nil
}

// ListActive returns the consumable batches of a pair, oldest first
func (r *GormPurchaseBatchRepository) ListActive(ctx context.Context, productID, warehouseID uuid.UUID) ([]*inventory.PurchaseBatch, error) {
	var rows []models.PurchaseBatchModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ? AND status = ? AND quantity_available > 0",
			productID, warehouseID, inventory.BatchStatusActive).
		Order(fifoOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return batchesToDomain(rows), nil
}

// ListByProductAndWarehouse returns all batches of a pair. Supported filters: status.
func (r *GormPurchaseBatchRepository) ListByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]*inventory.PurchaseBatch, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID)
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, PurchaseBatchSortFields, "purchase_date")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	}

	var rows []models.PurchaseBatchModel
	if err := query.Order(fifoOrder).
		Offset(filter.Offset()).Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return batchesToDomain(rows), nil
}

// SumActiveAvailable returns the units held by the active batches of a pair
func (r *GormPurchaseBatchRepository) SumActiveAvailable(ctx context.Context, productID, warehouseID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseBatchModel{}).
		Select("COALESCE(SUM(quantity_available), 0)").
		Where("product_id = ? AND warehouse_id = ? AND status = ?", productID, warehouseID, inventory.BatchStatusActive).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates a batch
func (r *GormPurchaseBatchRepository) Save(ctx context.Context, batch *inventory.PurchaseBatch) error {
	return r.db.WithContext(ctx).Save(models.PurchaseBatchModelFromDomain(batch)).Error
}

// SaveBatch writes quantity and status of several batches
func (r *GormPurchaseBatchRepository) SaveBatch(ctx context.Context, batches []*inventory.PurchaseBatch) error {
	for _, b := range batches {
		result := r.db.WithContext(ctx).
			Model(&models.PurchaseBatchModel{}).
			Where("id = ?", b.ID).
			Updates(map[string]any{
				"quantity_available": b.QuantityAvailable,
				"status":             b.Status,
				"updated_at":         b.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound.WithMessage("batch " + b.ID.String() + " not found")
		}
	}
	return nil
}

func batchesToDomain(rows []models.PurchaseBatchModel) []*inventory.PurchaseBatch {
	out := make([]*inventory.PurchaseBatch, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormPurchaseBatchRepository implements PurchaseBatchRepository
var _ inventory.PurchaseBatchRepository = (*GormPurchaseBatchRepository)(nil)
