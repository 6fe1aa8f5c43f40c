package persistence

import (
	"context"
	"errors"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByID loads a cart with its items
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Cart, error) {
	var m models.CartModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Save upserts the cart row and replaces its item set
func (r *GormCartRepository) Save(ctx context.Context, cart *trade.Cart) error {
	var m models.CartModel
	m.FromDomain(cart)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&m).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItemModel{}).Error; err != nil {
			return err
		}
		if len(m.Items) == 0 {
			return nil
		}
		return tx.Create(&m.Items).Error
	})
}

// Ensure GormCartRepository implements CartRepository
var _ trade.CartRepository = (*GormCartRepository)(nil)
