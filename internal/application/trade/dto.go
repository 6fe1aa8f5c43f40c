package trade

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Cart DTOs ====================

// CreateCartRequest represents a request to open a cart
type CreateCartRequest struct {
	PriceListID *uuid.UUID `json:"price_list_id"`
	Currency    string     `json:"currency" binding:"omitempty,len=3"`
}

// SetCartItemRequest upserts a cart line. Quantity 0 removes the line; a
// missing warehouse is chosen by the warehouse-selection rule.
type SetCartItemRequest struct {
	ProductID   uuid.UUID  `json:"product_id" binding:"required"`
	WarehouseID *uuid.UUID `json:"warehouse_id"`
	Quantity    int64      `json:"quantity" binding:"min=0"`
}

// CartItemResponse represents a cart line
type CartItemResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	ID          uuid.UUID          `json:"id"`
	PriceListID *uuid.UUID         `json:"price_list_id,omitempty"`
	Currency    string             `json:"currency"`
	Status      string             `json:"status"`
	Items       []CartItemResponse `json:"items"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CheckoutRequest carries the normalized customer and address snapshots
type CheckoutRequest struct {
	Customer trade.CustomerSnapshot
	Address  trade.AddressSnapshot
}

// ==================== Order DTOs ====================

// ConfirmOrderRequest represents a payment confirmation
type ConfirmOrderRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,min=1,max=50"`
	Reference     string `json:"reference" binding:"max=100"`
}

// OrderAllocationResponse is one batch draw backing an order line
type OrderAllocationResponse struct {
	BatchID  uuid.UUID       `json:"batch_id"`
	Quantity int64           `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Sequence int             `json:"sequence"`
}

// OrderDetailResponse represents an order line
type OrderDetailResponse struct {
	ID          uuid.UUID                 `json:"id"`
	ProductID   uuid.UUID                 `json:"product_id"`
	WarehouseID uuid.UUID                 `json:"warehouse_id"`
	Quantity    int64                     `json:"quantity"`
	UnitPrice   decimal.Decimal           `json:"unit_price"`
	LineTotal   decimal.Decimal           `json:"line_total"`
	UnitCost    decimal.Decimal           `json:"unit_cost"`
	Allocations []OrderAllocationResponse `json:"allocations"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID              `json:"id"`
	OrderNumber      string                 `json:"order_number"`
	CartID           *uuid.UUID             `json:"cart_id,omitempty"`
	Customer         trade.CustomerSnapshot `json:"customer"`
	Address          trade.AddressSnapshot  `json:"address"`
	Currency         string                 `json:"currency"`
	Subtotal         decimal.Decimal        `json:"subtotal"`
	Total            decimal.Decimal        `json:"total"`
	Status           string                 `json:"status"`
	PaymentMethod    string                 `json:"payment_method,omitempty"`
	PaymentReference string                 `json:"payment_reference,omitempty"`
	Details          []OrderDetailResponse  `json:"details"`
	ConvertedAt      *time.Time             `json:"converted_at,omitempty"`
	CancelledAt      *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	Version          int                    `json:"version"`
}

// ==================== Sale DTOs ====================

// SaleDetailResponse represents a sale line
type SaleDetailResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Revenue        decimal.Decimal `json:"revenue"`
	Cost           decimal.Decimal `json:"cost"`
	Margin         decimal.Decimal `json:"margin"`
	MarginPct      decimal.Decimal `json:"margin_pct"`
	BelowMinMargin bool            `json:"below_min_margin"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID               uuid.UUID              `json:"id"`
	SaleNumber       string                 `json:"sale_number"`
	OrderID          uuid.UUID              `json:"order_id"`
	Customer         trade.CustomerSnapshot `json:"customer"`
	Currency         string                 `json:"currency"`
	PaymentMethod    string                 `json:"payment_method"`
	PaymentReference string                 `json:"payment_reference,omitempty"`
	TotalRevenue     decimal.Decimal        `json:"total_revenue"`
	TotalCost        decimal.Decimal        `json:"total_cost"`
	Margin           decimal.Decimal        `json:"margin"`
	MarginPct        decimal.Decimal        `json:"margin_pct"`
	HasMarginAlerts  bool                   `json:"has_margin_alerts"`
	Details          []SaleDetailResponse   `json:"details"`
	CreatedAt        time.Time              `json:"created_at"`
}

// ToCartResponse converts a cart
func ToCartResponse(c *trade.Cart) CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = CartItemResponse{
			ProductID:   it.ProductID,
			WarehouseID: it.WarehouseID,
			Quantity:    it.Quantity,
			UpdatedAt:   it.UpdatedAt,
		}
	}
	return CartResponse{
		ID:          c.ID,
		PriceListID: c.PriceListID,
		Currency:    c.Currency,
		Status:      string(c.Status),
		Items:       items,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToOrderResponse converts an order with its lines and allocations
func ToOrderResponse(o *trade.Order) OrderResponse {
	details := make([]OrderDetailResponse, len(o.Details))
	for i := range o.Details {
		d := &o.Details[i]
		allocations := make([]OrderAllocationResponse, len(d.Allocations))
		for j, a := range d.Allocations {
			allocations[j] = OrderAllocationResponse{
				BatchID:  a.BatchID,
				Quantity: a.Quantity,
				UnitCost: a.UnitCost,
				Sequence: a.Sequence,
			}
		}
		details[i] = OrderDetailResponse{
			ID:          d.ID,
			ProductID:   d.ProductID,
			WarehouseID: d.WarehouseID,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			LineTotal:   d.LineTotal,
			UnitCost:    d.UnitCost,
			Allocations: allocations,
		}
	}
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		CartID:           o.CartID,
		Customer:         o.Customer,
		Address:          o.Address,
		Currency:         o.Currency,
		Subtotal:         o.Subtotal,
		Total:            o.Total,
		Status:           string(o.Status),
		PaymentMethod:    o.PaymentMethod,
		PaymentReference: o.PaymentReference,
		Details:          details,
		ConvertedAt:      o.ConvertedAt,
		CancelledAt:      o.CancelledAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}

// ToSaleResponse converts a sale
func ToSaleResponse(s *trade.Sale) SaleResponse {
	details := make([]SaleDetailResponse, len(s.Details))
	for i, d := range s.Details {
		details[i] = SaleDetailResponse{
			ProductID:      d.ProductID,
			WarehouseID:    d.WarehouseID,
			Quantity:       d.Quantity,
			UnitPrice:      d.UnitPrice,
			UnitCost:       d.UnitCost,
			Revenue:        d.Revenue,
			Cost:           d.Cost,
			Margin:         d.Margin,
			MarginPct:      d.MarginPct,
			BelowMinMargin: d.BelowMinMargin,
		}
	}
	return SaleResponse{
		ID:               s.ID,
		SaleNumber:       s.SaleNumber,
		OrderID:          s.OrderID,
		Customer:         s.Customer,
		Currency:         s.Currency,
		PaymentMethod:    s.PaymentMethod,
		PaymentReference: s.PaymentReference,
		TotalRevenue:     s.TotalRevenue,
		TotalCost:        s.TotalCost,
		Margin:           s.Margin,
		MarginPct:        s.MarginPct,
		HasMarginAlerts:  s.HasMarginAlerts(),
		Details:          details,
		CreatedAt:        s.CreatedAt,
	}
}
