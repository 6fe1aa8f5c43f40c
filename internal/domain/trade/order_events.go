package trade

import (
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type for order events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated   = "OrderCreated"
	EventTypeOrderConverted = "OrderConverted"
	EventTypeOrderCancelled = "OrderCancelled"
)

// OrderEventLine summarizes an order line inside an event
type OrderEventLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
}

// OrderEvent is raised on every order state change
type OrderEvent struct {
	shared.BaseDomainEvent
	OrderNumber string           `json:"order_number"`
	Status      OrderStatus      `json:"status"`
	Total       decimal.Decimal  `json:"total"`
	Lines       []OrderEventLine `json:"lines"`
}

func newOrderEvent(eventType string, o *Order) *OrderEvent {
	lines := make([]OrderEventLine, len(o.Details))
	for i, d := range o.Details {
		lines[i] = OrderEventLine{ProductID: d.ProductID, WarehouseID: d.WarehouseID, Quantity: d.Quantity}
	}
	return &OrderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		Total:           o.Total,
		Lines:           lines,
	}
}

// NewOrderCreatedEvent creates an OrderCreated event
func NewOrderCreatedEvent(o *Order) *OrderEvent {
	return newOrderEvent(EventTypeOrderCreated, o)
}

// NewOrderConvertedEvent creates an OrderConverted event
func NewOrderConvertedEvent(o *Order) *OrderEvent {
	return newOrderEvent(EventTypeOrderConverted, o)
}

// NewOrderCancelledEvent creates an OrderCancelled event
func NewOrderCancelledEvent(o *Order) *OrderEvent {
	return newOrderEvent(EventTypeOrderCancelled, o)
}
