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

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID loads an order with its lines and allocations
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadDetails(ctx, &m); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// LockByID loads an order FOR UPDATE. Lines are read without locks; they
// never change after creation.
func (r *GormOrderRepository) LockByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadDetails(ctx, &m); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *GormOrderRepository) loadDetails(ctx context.Context, m *models.OrderModel) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", m.ID).
		Preload("Allocations", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Order("id").
		Find(&m.Details).Error
}

// Create inserts the order with its lines and allocations
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	var m models.OrderModel
	m.FromDomain(order)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists.WithMessage("An order already exists for this cart")
		}
		return err
	}
	return nil
}

// UpdateStatus writes the status and payment fields. It fails with
// ErrConcurrencyConflict if the stored version is not the one the caller loaded.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, order *trade.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]any{
			"status":            order.Status,
			"payment_method":    order.PaymentMethod,
			"payment_reference": order.PaymentReference,
			"converted_at":      order.ConvertedAt,
			"cancelled_at":      order.CancelledAt,
			"version":           order.Version,
			"updated_at":        order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
