package trade

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// CartStatus represents the status of a cart
type CartStatus string

const (
	CartStatusOpen       CartStatus = "open"
	CartStatusCheckedOut CartStatus = "checked_out"
)

// CartItem is a line of a cart. Quantities are advisory until checkout.
type CartItem struct {
	ID          uuid.UUID
	CartID      uuid.UUID
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Quantity    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Cart accumulates items for a not-yet-placed order. It holds no stock.
type Cart struct {
	shared.BaseAggregateRoot
	PriceListID *uuid.UUID
	Currency    string
	Status      CartStatus
	Items       []CartItem
}

// NewCart creates a new open cart
func NewCart(priceListID *uuid.UUID, currency string) (*Cart, error) {
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PriceListID:       priceListID,
		Currency:          currency,
		Status:            CartStatusOpen,
		Items:             make([]CartItem, 0),
	}, nil
}

// IsOpen returns true if the cart can still be edited
func (c *Cart) IsOpen() bool {
	return c.Status == CartStatusOpen
}

// IsEmpty returns true if the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// SetItem upserts the line for productID. A zero quantity removes it.
// It returns the resulting line, or nil when the line was removed.
func (c *Cart) SetItem(productID, warehouseID uuid.UUID, quantity int64) (*CartItem, error) {
	if !c.IsOpen() {
		return nil, ErrCartNotOpen
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	idx := c.indexOf(productID)
	if quantity == 0 {
		if idx >= 0 {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.Touch()
		}
		return nil, nil
	}

	now := time.Now()
	if idx >= 0 {
		item := &c.Items[idx]
		item.WarehouseID = warehouseID
		item.Quantity = quantity
		item.UpdatedAt = now
		c.Touch()
		return item, nil
	}

	c.Items = append(c.Items, CartItem{
		ID:          uuid.New(),
		CartID:      c.ID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	c.Touch()
	return &c.Items[len(c.Items)-1], nil
}

// Item returns the line for productID, or nil
func (c *Cart) Item(productID uuid.UUID) *CartItem {
	if idx := c.indexOf(productID); idx >= 0 {
		return &c.Items[idx]
	}
	return nil
}

// MarkCheckedOut closes the cart
func (c *Cart) MarkCheckedOut() error {
	if !c.IsOpen() {
		return ErrCartNotOpen
	}
	if c.IsEmpty() {
		return ErrEmptyCart
	}
	c.Status = CartStatusCheckedOut
	c.Touch()
	c.IncrementVersion()
	return nil
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
