package trade

import (
	"context"
	"sort"
	"strings"

	appinventory "github.com/erp/fulfillment/internal/application/inventory"
	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService confirms pending orders into sales or cancels them
type OrderService struct {
	orderRepo       trade.OrderRepository
	saleRepo        trade.SaleRepository
	catalog         CatalogProvider
	stock           *appinventory.AllocationService
	txScope         TransactionScope
	businessMetrics *telemetry.BusinessMetrics
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	saleRepo trade.SaleRepository,
	catalogProvider CatalogProvider,
	stock *appinventory.AllocationService,
	txScope TransactionScope,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		saleRepo:  saleRepo,
		catalog:   catalogProvider,
		stock:     stock,
		txScope:   txScope,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *OrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// GetOrder returns an order with its lines and allocations
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetSale returns a sale by ID
func (s *OrderService) GetSale(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetSaleByOrder returns the sale created from an order
func (s *OrderService) GetSaleByOrder(ctx context.Context, orderID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// ConfirmOrder converts a pending order into a sale. Reserved stock is
// settled line by line using the allocations recorded at checkout. Batches
// and the movement log are not touched again: the checkout's out movements
// (reference order, ID the sale's OrderID) already record the units leaving. The status check happens under the order row lock,
// so a repeated confirm fails with ORDER_NOT_CONFIRMABLE.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID uuid.UUID, req ConfirmOrderRequest) (*SaleResponse, error) {
	ctx = logger.WithOperation(ctx, "confirm_order")

	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Payment method is required")
	}

	// Margins come from the catalog and are resolved before the transaction.
	probe, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !probe.IsPending() {
		return nil, trade.ErrOrderNotConfirmable
	}
	minMargins, err := s.resolveMinMargins(ctx, probe)
	if err != nil {
		return nil, err
	}

	effects := appinventory.NewStockEffects()
	var order *trade.Order
	var sale *trade.Sale
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.Convert(req.PaymentMethod, req.Reference); err != nil {
			return err
		}

		for _, d := range detailsInLockOrder(order) {
			if err := appinventory.SettleInScope(ctx, repos, d.ProductID, d.WarehouseID, d.Quantity, effects); err != nil {
				return err
			}
		}

		sale, err = trade.NewSaleFromOrder(order, minMargins)
		if err != nil {
			return err
		}

		if err := repos.OrderRepo().UpdateStatus(ctx, order); err != nil {
			return err
		}
		return repos.SaleRepo().Create(ctx, sale)
	})
	if err != nil {
		logger.L(ctx).Warn("Order confirmation rejected", logger.Order(orderID), zap.Error(err))
		return nil, err
	}

	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	s.stock.PublishAfterCommit(ctx, effects, events...)

	alerts := 0
	for _, d := range sale.Details {
		if d.BelowMinMargin {
			alerts++
		}
	}
	if alerts > 0 {
		logger.L(ctx).Warn("Sale below minimum margin", logger.Order(orderID), zap.Int("lines", alerts))
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderConfirmed(ctx, sale.PaymentMethod, sale.Currency, sale.TotalRevenue, alerts)
	}

	logger.L(ctx).Info("Order confirmed",
		logger.Order(orderID),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("margin", sale.Margin.String()))

	response := ToSaleResponse(sale)
	return &response, nil
}

// CancelOrder cancels a pending order and restores every allocation to its
// batch in reverse consumption order.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	ctx = logger.WithOperation(ctx, "cancel_order")

	effects := appinventory.NewStockEffects()
	var order *trade.Order
	var restored int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.Cancel(); err != nil {
			return err
		}

		ref := inventory.StockReference{Type: inventory.ReferenceOrderCancel, ID: order.ID}
		for _, d := range detailsInLockOrder(order) {
			release, err := appinventory.ReleaseInScope(ctx, repos, s.stock.Allocator(),
				d.ProductID, d.WarehouseID, d.Consumptions(), ref, effects)
			if err != nil {
				return err
			}
			restored += release.Quantity
		}

		return repos.OrderRepo().UpdateStatus(ctx, order)
	})
	if err != nil {
		logger.L(ctx).Warn("Order cancellation rejected", logger.Order(orderID), zap.Error(err))
		return nil, err
	}

	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	s.stock.PublishAfterCommit(ctx, effects, events...)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderCancelled(ctx, restored)
	}
	logger.L(ctx).Info("Order cancelled", logger.Order(orderID), logger.Quantity(restored))

	response := ToOrderResponse(order)
	return &response, nil
}

// resolveMinMargins maps each ordered product to its category's effective
// minimum margin. Products without a category are omitted.
func (s *OrderService) resolveMinMargins(ctx context.Context, order *trade.Order) (map[uuid.UUID]decimal.Decimal, error) {
	margins := make(map[uuid.UUID]decimal.Decimal, len(order.Details))
	byCategory := make(map[uuid.UUID]decimal.Decimal)
	for _, d := range order.Details {
		product, err := s.catalog.FindProduct(ctx, d.ProductID)
		if err != nil {
			return nil, err
		}
		if product.CategoryID == nil {
			continue
		}
		minPct, ok := byCategory[*product.CategoryID]
		if !ok {
			chain, err := s.catalog.FindAncestry(ctx, *product.CategoryID)
			if err != nil {
				return nil, err
			}
			minPct = catalog.ResolveMargins(chain).MinMarginPct
			byCategory[*product.CategoryID] = minPct
		}
		margins[d.ProductID] = minPct
	}
	return margins, nil
}

func detailsInLockOrder(order *trade.Order) []*trade.OrderDetail {
	details := make([]*trade.OrderDetail, len(order.Details))
	for i := range order.Details {
		details[i] = &order.Details[i]
	}
	sort.Slice(details, func(i, j int) bool {
		a := inventory.StockKey{ProductID: details[i].ProductID, WarehouseID: details[i].WarehouseID}
		b := inventory.StockKey{ProductID: details[j].ProductID, WarehouseID: details[j].WarehouseID}
		return a.Less(b)
	})
	return details
}
