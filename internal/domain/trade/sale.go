package trade

import (
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SaleDetail is an immutable copy of an order line with its realized margin
type SaleDetail struct {
	ID             uuid.UUID
	SaleID         uuid.UUID
	OrderDetailID  uuid.UUID
	ProductID      uuid.UUID
	WarehouseID    uuid.UUID
	Quantity       int64
	UnitPrice      decimal.Decimal
	UnitCost       decimal.Decimal
	Revenue        decimal.Decimal
	Cost           decimal.Decimal
	Margin         decimal.Decimal
	MarginPct      decimal.Decimal
	BelowMinMargin bool
}

// Sale is created exactly once from a converted order and never changes.
// Its cost basis is the weighted average purchase price of the batches the
// order consumed.
type Sale struct {
	shared.BaseEntity
	SaleNumber       string
	OrderID          uuid.UUID
	Customer         CustomerSnapshot
	Currency         string
	PaymentMethod    string
	PaymentReference string
	TotalRevenue     decimal.Decimal
	TotalCost        decimal.Decimal
	Margin           decimal.Decimal
	MarginPct        decimal.Decimal
	Details          []SaleDetail
}

// NewSaleFromOrder builds the sale for a converted order. minMargins maps a
// product ID to its category's resolved minimum margin percentage; lines
// priced under it are flagged.
func NewSaleFromOrder(order *Order, minMargins map[uuid.UUID]decimal.Decimal) (*Sale, error) {
	if order.Status != OrderStatusConverted {
		return nil, ErrOrderNotConfirmable.WithMessage("Sales can only be created from converted orders")
	}

	s := &Sale{
		BaseEntity:       shared.NewBaseEntity(),
		OrderID:          order.ID,
		Customer:         order.Customer,
		Currency:         order.Currency,
		PaymentMethod:    order.PaymentMethod,
		PaymentReference: order.PaymentReference,
		Details:          make([]SaleDetail, 0, len(order.Details)),
	}
	s.SaleNumber = documentNumber("SAL", s.CreatedAt, s.ID)

	revenue, cost := decimal.Zero, decimal.Zero
	for i := range order.Details {
		d := &order.Details[i]
		lineCost := shared.RoundMoney(d.TotalCost())
		margin := d.LineTotal.Sub(lineCost)
		marginPct := percentOf(margin, d.LineTotal)

		detail := SaleDetail{
			ID:            uuid.New(),
			SaleID:        s.ID,
			OrderDetailID: d.ID,
			ProductID:     d.ProductID,
			WarehouseID:   d.WarehouseID,
			Quantity:      d.Quantity,
			UnitPrice:     d.UnitPrice,
			UnitCost:      shared.WeightedAverage(d.TotalCost(), d.Quantity),
			Revenue:       d.LineTotal,
			Cost:          lineCost,
			Margin:        margin,
			MarginPct:     marginPct,
		}
		if minPct, ok := minMargins[d.ProductID]; ok && minPct.IsPositive() {
			detail.BelowMinMargin = marginPct.LessThan(minPct)
		}
		s.Details = append(s.Details, detail)

		revenue = revenue.Add(d.LineTotal)
		cost = cost.Add(lineCost)
	}

	s.TotalRevenue = shared.RoundMoney(revenue)
	s.TotalCost = shared.RoundMoney(cost)
	s.Margin = s.TotalRevenue.Sub(s.TotalCost)
	s.MarginPct = percentOf(s.Margin, s.TotalRevenue)
	return s, nil
}

// WeightedUnitCost returns total cost over total units
func (s *Sale) WeightedUnitCost() decimal.Decimal {
	var qty int64
	for _, d := range s.Details {
		qty += d.Quantity
	}
	return shared.WeightedAverage(s.TotalCost, qty)
}

// HasMarginAlerts returns true if any line sold below its minimum margin
func (s *Sale) HasMarginAlerts() bool {
	for _, d := range s.Details {
		if d.BelowMinMargin {
			return true
		}
	}
	return false
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return shared.RoundMoney(part.Div(whole).Mul(hundred))
}
