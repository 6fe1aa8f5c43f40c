package persistence

import (
	"context"
	"fmt"
	"time"

	appinv "github.com/erp/fulfillment/internal/application/inventory"
	apptrade "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionScope implements both the stock and the trade
// TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// WithLockTimeout bounds how long a statement waits for a row lock.
// Only PostgreSQL honours it.
func (s *GormTransactionScope) WithLockTimeout(d time.Duration) *GormTransactionScope {
	s.lockTimeout = d
	return s
}

// Execute runs fn within a database transaction with stock repositories.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.run(ctx, func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

// Trade returns a view of the scope that exposes the trade repositories
func (s *GormTransactionScope) Trade() *GormTradeTransactionScope {
	return &GormTradeTransactionScope{scope: s}
}

func (s *GormTransactionScope) run(ctx context.Context, fn func(repos *gormTransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormTradeTransactionScope runs trade units of work
type GormTradeTransactionScope struct {
	scope *GormTransactionScope
}

// Execute runs fn within a database transaction with stock and trade repositories.
func (s *GormTradeTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.scope.run(ctx, func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

// gormTransactionalRepositories binds every repository to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) LockInventory(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryItem, error) {
	return NewGormInventoryItemRepository(r.tx).LockByProductAndWarehouse(ctx, productID, warehouseID)
}

func (r *gormTransactionalRepositories) LockOrder(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return NewGormOrderRepository(r.tx).LockByID(ctx, id)
}

func (r *gormTransactionalRepositories) InventoryRepo() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) BatchRepo() inventory.PurchaseBatchRepository {
	return NewGormPurchaseBatchRepository(r.tx)
}

func (r *gormTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) CartRepo() trade.CartRepository {
	return NewGormCartRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) SaleRepo() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// Ensure implementations satisfy the interfaces
var (
	_ appinv.TransactionScope            = (*GormTransactionScope)(nil)
	_ apptrade.TransactionScope          = (*GormTradeTransactionScope)(nil)
	_ appinv.TransactionalRepositories   = (*gormTransactionalRepositories)(nil)
	_ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
