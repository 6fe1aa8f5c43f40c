package trade

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository persists carts with their items
type CartRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	// Save writes the cart and replaces its item set
	Save(ctx context.Context, cart *Cart) error
}

// OrderRepository persists orders with their lines and allocations
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// LockByID loads the order holding a row lock until the transaction ends
	LockByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// Create inserts a new order with its details and allocations
	Create(ctx context.Context, order *Order) error
	// UpdateStatus writes status and payment fields, checking the version
	UpdateStatus(ctx context.Context, order *Order) error
}

// SaleRepository persists sales. Sales are insert-only.
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Sale, error)
	Create(ctx context.Context, sale *Sale) error
}
