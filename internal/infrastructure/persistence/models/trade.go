package models

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartModel is the persistence model for the Cart aggregate
type CartModel struct {
	AggregateModel
	PriceListID *uuid.UUID       `gorm:"type:uuid"`
	Currency    string           `gorm:"type:varchar(3);not null"`
	Status      trade.CartStatus `gorm:"type:varchar(20);not null;default:'open'"`
	Items       []CartItemModel  `gorm:"foreignKey:CartID;references:ID"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain converts the persistence model to a domain Cart
func (m *CartModel) ToDomain() *trade.Cart {
	c := &trade.Cart{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PriceListID:       m.PriceListID,
		Currency:          m.Currency,
		Status:            m.Status,
		Items:             make([]trade.CartItem, len(m.Items)),
	}
	for i := range m.Items {
		c.Items[i] = m.Items[i].ToDomain()
	}
	return c
}

// FromDomain populates the persistence model from a domain Cart
func (m *CartModel) FromDomain(c *trade.Cart) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.PriceListID = c.PriceListID
	m.Currency = c.Currency
	m.Status = c.Status
	m.Items = make([]CartItemModel, len(c.Items))
	for i := range c.Items {
		m.Items[i].FromDomain(&c.Items[i])
	}
}

// CartItemModel is one line of a cart, unique per product
type CartItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	CartID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product,priority:1"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product,priority:2"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity    int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the persistence model to a domain CartItem
func (m *CartItemModel) ToDomain() trade.CartItem {
	return trade.CartItem{
		ID:          m.ID,
		CartID:      m.CartID,
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		Quantity:    m.Quantity,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain CartItem
func (m *CartItemModel) FromDomain(i *trade.CartItem) {
	m.ID = i.ID
	m.CartID = i.CartID
	m.ProductID = i.ProductID
	m.WarehouseID = i.WarehouseID
	m.Quantity = i.Quantity
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// OrderModel is the persistence model for the Order aggregate.
// Customer and address snapshots are flattened into prefixed columns.
type OrderModel struct {
	AggregateModel
	OrderNumber      string                 `gorm:"type:varchar(32);not null;uniqueIndex"`
	CartID           *uuid.UUID             `gorm:"type:uuid;uniqueIndex"`
	Customer         trade.CustomerSnapshot `gorm:"embedded;embeddedPrefix:customer_"`
	Address          trade.AddressSnapshot  `gorm:"embedded;embeddedPrefix:ship_"`
	Currency         string                 `gorm:"type:varchar(3);not null"`
	Subtotal         decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Total            decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Status           trade.OrderStatus      `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod    string                 `gorm:"type:varchar(50)"`
	PaymentReference string                 `gorm:"type:varchar(100)"`
	ConvertedAt      *time.Time
	CancelledAt      *time.Time
	Details          []OrderDetailModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		CartID:            m.CartID,
		Customer:          m.Customer,
		Address:           m.Address,
		Currency:          m.Currency,
		Subtotal:          m.Subtotal,
		Total:             m.Total,
		Status:            m.Status,
		PaymentMethod:     m.PaymentMethod,
		PaymentReference:  m.PaymentReference,
		ConvertedAt:       m.ConvertedAt,
		CancelledAt:       m.CancelledAt,
		Details:           make([]trade.OrderDetail, len(m.Details)),
	}
	for i := range m.Details {
		o.Details[i] = m.Details[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CartID = o.CartID
	m.Customer = o.Customer
	m.Address = o.Address
	m.Currency = o.Currency
	m.Subtotal = o.Subtotal
	m.Total = o.Total
	m.Status = o.Status
	m.PaymentMethod = o.PaymentMethod
	m.PaymentReference = o.PaymentReference
	m.ConvertedAt = o.ConvertedAt
	m.CancelledAt = o.CancelledAt
	m.Details = make([]OrderDetailModel, len(o.Details))
	for i := range o.Details {
		m.Details[i].FromDomain(&o.Details[i])
	}
}

// OrderDetailModel is one order line
type OrderDetailModel struct {
	ID          uuid.UUID              `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID              `gorm:"type:uuid;not null"`
	Quantity    int64                  `gorm:"not null"`
	UnitPrice   decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	LineTotal   decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	UnitCost    decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Allocations []OrderAllocationModel `gorm:"foreignKey:OrderDetailID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderDetailModel) TableName() string {
	return "order_details"
}

// ToDomain converts the persistence model to a domain OrderDetail
func (m *OrderDetailModel) ToDomain() trade.OrderDetail {
	d := trade.OrderDetail{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
		UnitCost:    m.UnitCost,
		Allocations: make([]trade.OrderAllocation, len(m.Allocations)),
	}
	for i, a := range m.Allocations {
		d.Allocations[i] = trade.OrderAllocation{
			ID:            a.ID,
			OrderDetailID: a.OrderDetailID,
			BatchID:       a.BatchID,
			Quantity:      a.Quantity,
			UnitCost:      a.UnitCost,
			Sequence:      a.Sequence,
		}
	}
	return d
}

// FromDomain populates the persistence model from a domain OrderDetail
func (m *OrderDetailModel) FromDomain(d *trade.OrderDetail) {
	m.ID = d.ID
	m.OrderID = d.OrderID
	m.ProductID = d.ProductID
	m.WarehouseID = d.WarehouseID
	m.Quantity = d.Quantity
	m.UnitPrice = d.UnitPrice
	m.LineTotal = d.LineTotal
	m.UnitCost = d.UnitCost
	m.Allocations = make([]OrderAllocationModel, len(d.Allocations))
	for i, a := range d.Allocations {
		m.Allocations[i] = OrderAllocationModel{
			ID:            a.ID,
			OrderDetailID: a.OrderDetailID,
			BatchID:       a.BatchID,
			Quantity:      a.Quantity,
			UnitCost:      a.UnitCost,
			Sequence:      a.Sequence,
		}
	}
}

// OrderAllocationModel records the units of one batch held by an order line
type OrderAllocationModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderDetailID uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      int64           `gorm:"not null"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Sequence      int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderAllocationModel) TableName() string {
	return "order_allocations"
}

// SaleModel is the persistence model for a Sale
type SaleModel struct {
	BaseModel
	SaleNumber       string                 `gorm:"type:varchar(32);not null;uniqueIndex"`
	OrderID          uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex"`
	Customer         trade.CustomerSnapshot `gorm:"embedded;embeddedPrefix:customer_"`
	Currency         string                 `gorm:"type:varchar(3);not null"`
	PaymentMethod    string                 `gorm:"type:varchar(50);not null"`
	PaymentReference string                 `gorm:"type:varchar(100)"`
	TotalRevenue     decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	TotalCost        decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Margin           decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	MarginPct        decimal.Decimal        `gorm:"type:decimal(9,2);not null"`
	Details          []SaleDetailModel      `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale
func (m *SaleModel) ToDomain() *trade.Sale {
	s := &trade.Sale{
		BaseEntity:       m.BaseModel.ToDomain(),
		SaleNumber:       m.SaleNumber,
		OrderID:          m.OrderID,
		Customer:         m.Customer,
		Currency:         m.Currency,
		PaymentMethod:    m.PaymentMethod,
		PaymentReference: m.PaymentReference,
		TotalRevenue:     m.TotalRevenue,
		TotalCost:        m.TotalCost,
		Margin:           m.Margin,
		MarginPct:        m.MarginPct,
		Details:          make([]trade.SaleDetail, len(m.Details)),
	}
	for i, d := range m.Details {
		s.Details[i] = trade.SaleDetail{
			ID:             d.ID,
			SaleID:         d.SaleID,
			OrderDetailID:  d.OrderDetailID,
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
	return s
}

// FromDomain populates the persistence model from a domain Sale
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.SaleNumber = s.SaleNumber
	m.OrderID = s.OrderID
	m.Customer = s.Customer
	m.Currency = s.Currency
	m.PaymentMethod = s.PaymentMethod
	m.PaymentReference = s.PaymentReference
	m.TotalRevenue = s.TotalRevenue
	m.TotalCost = s.TotalCost
	m.Margin = s.Margin
	m.MarginPct = s.MarginPct
	m.Details = make([]SaleDetailModel, len(s.Details))
	for i, d := range s.Details {
		m.Details[i] = SaleDetailModel{
			ID:             d.ID,
			SaleID:         d.SaleID,
			OrderDetailID:  d.OrderDetailID,
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
}

// SaleDetailModel is one line of a sale
type SaleDetailModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderDetailID  uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity       int64           `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Revenue        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Cost           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Margin         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	MarginPct      decimal.Decimal `gorm:"type:decimal(9,2);not null"`
	BelowMinMargin bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SaleDetailModel) TableName() string {
	return "sale_details"
}
