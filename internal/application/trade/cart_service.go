package trade

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

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

// CatalogProvider is the read-only catalog the trade services consult
type CatalogProvider interface {
	catalog.ProductReader
	catalog.CategoryReader
	catalog.WarehouseReader
	catalog.PriceListReader
}

// CartService manages carts and turns them into pending orders
type CartService struct {
	cartRepo        trade.CartRepository
	catalog         CatalogProvider
	stock           *appinventory.AllocationService
	txScope         TransactionScope
	businessMetrics *telemetry.BusinessMetrics
	defaultCurrency string
}

// NewCartService creates a new CartService
func NewCartService(
	cartRepo trade.CartRepository,
	catalogProvider CatalogProvider,
	stock *appinventory.AllocationService,
	txScope TransactionScope,
	defaultCurrency string,
) *CartService {
	return &CartService{
		cartRepo:        cartRepo,
		catalog:         catalogProvider,
		stock:           stock,
		txScope:         txScope,
		defaultCurrency: defaultCurrency,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *CartService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// CreateCart opens an empty cart
func (s *CartService) CreateCart(ctx context.Context, req CreateCartRequest) (*CartResponse, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	cart, err := trade.NewCart(req.PriceListID, currency)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	response := ToCartResponse(cart)
	return &response, nil
}

// GetCart returns a cart by ID
func (s *CartService) GetCart(ctx context.Context, cartID uuid.UUID) (*CartResponse, error) {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	response := ToCartResponse(cart)
	return &response, nil
}

// AddOrUpdateItem upserts a cart line after an advisory stock check. No
// stock is reserved; Checkout re-checks under lock.
func (s *CartService) AddOrUpdateItem(ctx context.Context, cartID uuid.UUID, req SetCartItemRequest) (*CartResponse, error) {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.IsOpen() {
		return nil, trade.ErrCartNotOpen
	}

	if req.Quantity == 0 {
		if _, err := cart.SetItem(req.ProductID, uuid.Nil, 0); err != nil {
			return nil, err
		}
		return s.saveCart(ctx, cart)
	}

	product, err := s.catalog.FindProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.CanBeSold() {
		return nil, trade.ErrProductNotSellable
	}

	var warehouseID uuid.UUID
	if req.WarehouseID != nil {
		warehouseID, err = s.checkWarehouse(ctx, req.ProductID, *req.WarehouseID, req.Quantity)
	} else {
		warehouseID, err = s.selectWarehouse(ctx, req.ProductID, req.Quantity)
	}
	if err != nil {
		return nil, err
	}

	if _, err := cart.SetItem(req.ProductID, warehouseID, req.Quantity); err != nil {
		return nil, err
	}
	return s.saveCart(ctx, cart)
}

func (s *CartService) saveCart(ctx context.Context, cart *trade.Cart) (*CartResponse, error) {
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	response := ToCartResponse(cart)
	return &response, nil
}

func (s *CartService) checkWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, quantity int64) (uuid.UUID, error) {
	warehouse, err := s.catalog.FindWarehouse(ctx, warehouseID)
	if err != nil {
		return uuid.Nil, err
	}
	if !warehouse.IsActive {
		return uuid.Nil, trade.ErrWarehouseUnavailable
	}
	stock, err := s.stock.GetStock(ctx, productID, warehouseID)
	if err != nil {
		return uuid.Nil, err
	}
	if stock.AvailableStock < quantity {
		return uuid.Nil, inventory.NewInsufficientStockError(productID, warehouseID, quantity, stock.AvailableStock)
	}
	return warehouseID, nil
}

func (s *CartService) selectWarehouse(ctx context.Context, productID uuid.UUID, quantity int64) (uuid.UUID, error) {
	warehouses, err := s.catalog.ListActiveWarehouses(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	candidates := make([]catalog.WarehouseCandidate, 0, len(warehouses))
	for _, w := range warehouses {
		stock, err := s.stock.GetStock(ctx, productID, w.ID)
		if err != nil {
			return uuid.Nil, err
		}
		candidates = append(candidates, catalog.WarehouseCandidate{Warehouse: w, AvailableStock: stock.AvailableStock})
	}

	chosen, best := catalog.SelectWarehouse(candidates, quantity)
	if chosen == nil {
		return uuid.Nil, inventory.NewInsufficientStockError(productID, uuid.Nil, quantity, best)
	}
	return chosen.ID, nil
}

// checkoutLine is a cart line prepared for allocation
type checkoutLine struct {
	position  int
	item      trade.CartItem
	listPrice *decimal.Decimal
}

// Checkout turns an open cart into a pending order. Every line is allocated
// in one transaction; the first failing line rolls back the whole checkout
// and is named in the returned CheckoutLineError.
func (s *CartService) Checkout(ctx context.Context, cartID uuid.UUID, req CheckoutRequest) (*OrderResponse, error) {
	ctx = logger.WithOperation(ctx, "checkout")

	if err := req.Customer.Validate(); err != nil {
		return nil, err
	}
	if err := req.Address.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.IsOpen() {
		return nil, trade.ErrCartNotOpen
	}
	if cart.IsEmpty() {
		return nil, trade.ErrEmptyCart
	}

	// Catalog reads happen before the transaction opens.
	lines, err := s.prepareLines(ctx, cart)
	if err != nil {
		return nil, err
	}

	order, err := trade.NewOrder(&cart.ID, req.Customer, req.Address, cart.Currency)
	if err != nil {
		return nil, err
	}
	ref := inventory.StockReference{Type: inventory.ReferenceOrder, ID: order.ID}

	start := time.Now()
	effects := appinventory.NewStockEffects()
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, line := range lines {
			result, err := appinventory.AllocateInScope(ctx, repos, s.stock.Allocator(),
				line.item.ProductID, line.item.WarehouseID, line.item.Quantity, ref, effects)
			if err != nil {
				return &trade.CheckoutLineError{
					Line:        line.position,
					ProductID:   line.item.ProductID,
					WarehouseID: line.item.WarehouseID,
					Requested:   line.item.Quantity,
					Err:         err,
				}
			}

			unitPrice := result.WeightedDistributionPrice()
			if line.listPrice != nil {
				unitPrice = *line.listPrice
			}
			if _, err := order.AddDetail(unitPrice, result); err != nil {
				return err
			}
		}

		if err := order.Place(); err != nil {
			return err
		}
		if err := repos.OrderRepo().Create(ctx, order); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return trade.ErrCartNotOpen
			}
			return err
		}
		if err := cart.MarkCheckedOut(); err != nil {
			return err
		}
		return repos.CartRepo().Save(ctx, cart)
	})
	if err != nil {
		s.stock.RecordFailure(ctx, err)
		logger.L(ctx).Warn("Checkout rejected", logger.Cart(cartID), zap.Error(err))
		return nil, err
	}

	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	s.stock.PublishAfterCommit(ctx, effects, events...)

	if s.businessMetrics != nil {
		elapsed := time.Since(start)
		for _, d := range order.Details {
			s.businessMetrics.RecordAllocation(ctx, d.WarehouseID, d.Quantity, len(d.Allocations), elapsed)
		}
		s.businessMetrics.RecordOrderPlaced(ctx, len(order.Details))
	}

	logger.L(ctx).Info("Order placed",
		logger.Order(order.ID), logger.Cart(cartID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", len(order.Details)))

	response := ToOrderResponse(order)
	return &response, nil
}

// prepareLines validates each cart line against the catalog, resolves its
// list price and returns the lines in ledger lock order.
func (s *CartService) prepareLines(ctx context.Context, cart *trade.Cart) ([]checkoutLine, error) {
	lines := make([]checkoutLine, 0, len(cart.Items))
	warehouses := make(map[uuid.UUID]bool)
	for i, item := range cart.Items {
		lineErr := func(err error) error {
			return &trade.CheckoutLineError{
				Line:        i + 1,
				ProductID:   item.ProductID,
				WarehouseID: item.WarehouseID,
				Requested:   item.Quantity,
				Err:         err,
			}
		}

		product, err := s.catalog.FindProduct(ctx, item.ProductID)
		if err != nil {
			return nil, lineErr(err)
		}
		if !product.CanBeSold() {
			return nil, lineErr(trade.ErrProductNotSellable)
		}

		active, seen := warehouses[item.WarehouseID]
		if !seen {
			warehouse, err := s.catalog.FindWarehouse(ctx, item.WarehouseID)
			if err != nil {
				return nil, lineErr(err)
			}
			active = warehouse.IsActive
			warehouses[item.WarehouseID] = active
		}
		if !active {
			return nil, lineErr(trade.ErrWarehouseUnavailable)
		}

		line := checkoutLine{position: i + 1, item: item}
		if cart.PriceListID != nil {
			warehouseID := item.WarehouseID
			line.listPrice, err = s.catalog.GetPrice(ctx, item.ProductID, *cart.PriceListID, &warehouseID)
			if err != nil {
				return nil, lineErr(err)
			}
		}
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		a := inventory.StockKey{ProductID: lines[i].item.ProductID, WarehouseID: lines[i].item.WarehouseID}
		b := inventory.StockKey{ProductID: lines[j].item.ProductID, WarehouseID: lines[j].item.WarehouseID}
		return a.Less(b)
	})
	return lines, nil
}
