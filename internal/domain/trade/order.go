package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConverted OrderStatus = "converted"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConverted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for converted and cancelled orders
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusConverted || s == OrderStatusCancelled
}

// OrderAllocation records units of one batch reserved for an order line.
// Sequence is the batch's position in the FIFO walk done at checkout.
type OrderAllocation struct {
	ID            uuid.UUID
	OrderDetailID uuid.UUID
	BatchID       uuid.UUID
	Quantity      int64
	UnitCost      decimal.Decimal
	Sequence      int
}

// OrderDetail is an order line. Its stock was fixed at checkout by the
// allocations it carries.
type OrderDetail struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Quantity    int64
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	UnitCost    decimal.Decimal
	Allocations []OrderAllocation
}

// Consumptions converts the line's allocations back to batch consumptions
func (d *OrderDetail) Consumptions() []inventory.BatchConsumption {
	out := make([]inventory.BatchConsumption, len(d.Allocations))
	for i, a := range d.Allocations {
		out[i] = inventory.BatchConsumption{
			BatchID:  a.BatchID,
			Quantity: a.Quantity,
			UnitCost: a.UnitCost,
			Sequence: a.Sequence,
		}
	}
	return out
}

// TotalCost returns the line's cost at the consumed batches' purchase prices
func (d *OrderDetail) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, a := range d.Allocations {
		total = total.Add(a.UnitCost.Mul(decimal.NewFromInt(a.Quantity)))
	}
	return total
}

// Order is created at checkout with its stock already reserved.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber      string
	CartID           *uuid.UUID
	Customer         CustomerSnapshot
	Address          AddressSnapshot
	Currency         string
	Subtotal         decimal.Decimal
	Total            decimal.Decimal
	Status           OrderStatus
	PaymentMethod    string
	PaymentReference string
	ConvertedAt      *time.Time
	CancelledAt      *time.Time
	Details          []OrderDetail
}

// NewOrder creates a pending order with no lines yet
func NewOrder(cartID *uuid.UUID, customer CustomerSnapshot, address AddressSnapshot, currency string) (*Order, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CartID:            cartID,
		Customer:          customer,
		Address:           address,
		Currency:          strings.ToUpper(currency),
		Subtotal:          decimal.Zero,
		Total:             decimal.Zero,
		Status:            OrderStatusPending,
		Details:           make([]OrderDetail, 0),
	}
	o.OrderNumber = documentNumber("ORD", o.CreatedAt, o.ID)
	return o, nil
}

// AddDetail appends a line backed by an allocation result
func (o *Order) AddDetail(unitPrice decimal.Decimal, result *inventory.AllocationResult) (*OrderDetail, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.ErrInvalidState.WithMessage("Lines can only be added to pending orders")
	}
	if result == nil || result.Quantity <= 0 || len(result.Consumptions) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("Order line requires a non-empty allocation")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	unitPrice = shared.RoundMoney(unitPrice)
	detail := OrderDetail{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   result.ProductID,
		WarehouseID: result.WarehouseID,
		Quantity:    result.Quantity,
		UnitPrice:   unitPrice,
		LineTotal:   shared.RoundMoney(unitPrice.Mul(decimal.NewFromInt(result.Quantity))),
		UnitCost:    result.WeightedAverageCost,
		Allocations: make([]OrderAllocation, 0, len(result.Consumptions)),
	}
	for _, c := range result.Consumptions {
		detail.Allocations = append(detail.Allocations, OrderAllocation{
			ID:            uuid.New(),
			OrderDetailID: detail.ID,
			BatchID:       c.BatchID,
			Quantity:      c.Quantity,
			UnitCost:      c.UnitCost,
			Sequence:      c.Sequence,
		})
	}

	o.Details = append(o.Details, detail)
	o.recalculateTotals()
	return &o.Details[len(o.Details)-1], nil
}

// Place finalizes a freshly built order and raises OrderCreated
func (o *Order) Place() error {
	if len(o.Details) == 0 {
		return ErrEmptyCart
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return nil
}

// Convert marks the order as paid. Only pending orders can be converted, so
// a second confirmation never yields a second sale.
func (o *Order) Convert(paymentMethod, reference string) error {
	if o.Status != OrderStatusPending {
		return ErrOrderNotConfirmable.WithMessage(
			fmt.Sprintf("Order %s is %s and cannot be confirmed", o.OrderNumber, o.Status))
	}
	if strings.TrimSpace(paymentMethod) == "" {
		return shared.ErrInvalidInput.WithMessage("Payment method is required")
	}
	now := time.Now()
	o.Status = OrderStatusConverted
	o.PaymentMethod = paymentMethod
	o.PaymentReference = reference
	o.ConvertedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderConvertedEvent(o))
	return nil
}

// Cancel releases the order. Only pending orders can be cancelled.
func (o *Order) Cancel() error {
	if o.Status != OrderStatusPending {
		return ErrOrderNotCancellable.WithMessage(
			fmt.Sprintf("Order %s is %s and cannot be cancelled", o.OrderNumber, o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderCancelledEvent(o))
	return nil
}

// TotalQuantity returns the units across all lines
func (o *Order) TotalQuantity() int64 {
	var total int64
	for _, d := range o.Details {
		total += d.Quantity
	}
	return total
}

// IsPending returns true if the order still holds its reservation
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, d := range o.Details {
		subtotal = subtotal.Add(d.LineTotal)
	}
	o.Subtotal = shared.RoundMoney(subtotal)
	o.Total = o.Subtotal
	o.UpdatedAt = time.Now()
}

func documentNumber(prefix string, at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), strings.ToUpper(id.String()[:8]))
}
