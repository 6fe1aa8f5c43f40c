package persistence

import (
	"context"
	"errors"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID loads a sale with its lines
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderID loads the sale created from an order
func (r *GormSaleRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*trade.Sale, error) {
	return r.findOne(ctx, "order_id = ?", orderID)
}

func (r *GormSaleRepository) findOne(ctx context.Context, cond string, arg uuid.UUID) (*trade.Sale, error) {
	var m models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Details").
		Where(cond, arg).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Create inserts the sale and its lines. The unique order_id index rejects a
// second sale for the same order.
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	var m models.SaleModel
	m.FromDomain(sale)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists.WithMessage("A sale already exists for this order")
		}
		return err
	}
	return nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
