package trade

import (
	"context"

	appinventory "github.com/erp/fulfillment/internal/application/inventory"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/google/uuid"
)

// TransactionScope runs checkout, confirmation and cancellation as one
// database transaction spanning the stock and trade repositories.
type TransactionScope interface {
	// Execute runs fn within a transaction. An error from fn rolls
	// everything back; success commits.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories extends the stock repositories with the trade
// aggregates. LockOrder takes an exclusive row lock on the order that is
// held until the transaction ends; it is always taken before any ledger row.
type TransactionalRepositories interface {
	appinventory.TransactionalRepositories

	// LockOrder locks and returns the order with its lines and allocations
	LockOrder(ctx context.Context, id uuid.UUID) (*trade.Order, error)
	CartRepo() trade.CartRepository
	OrderRepo() trade.OrderRepository
	SaleRepo() trade.SaleRepository
}
