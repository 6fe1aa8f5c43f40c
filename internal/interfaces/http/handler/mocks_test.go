package handler

import (
	"context"

	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) Replenish(ctx context.Context, req inventoryapp.ReplenishRequest) (*inventoryapp.BatchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.BatchResponse), args.Error(1)
}

func (m *MockStockService) Allocate(ctx context.Context, req inventoryapp.AllocateRequest) (*inventoryapp.AllocationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.AllocationResponse), args.Error(1)
}

func (m *MockStockService) GetStock(ctx context.Context, productID, warehouseID uuid.UUID) (*inventoryapp.StockResponse, error) {
	args := m.Called(ctx, productID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.StockResponse), args.Error(1)
}

func (m *MockStockService) ListStockByProduct(ctx context.Context, productID uuid.UUID) ([]inventoryapp.StockResponse, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventoryapp.StockResponse), args.Error(1)
}

func (m *MockStockService) ListBatches(ctx context.Context, filter inventoryapp.BatchListFilter) ([]inventoryapp.BatchResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventoryapp.BatchResponse), args.Error(1)
}

func (m *MockStockService) ListMovements(ctx context.Context, filter inventoryapp.MovementListFilter) (*shared.Paginated[inventoryapp.MovementResponse], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[inventoryapp.MovementResponse]), args.Error(1)
}

func (m *MockStockService) CheckConsistency(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.ConsistencyReport, error) {
	args := m.Called(ctx, productID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ConsistencyReport), args.Error(1)
}

func (m *MockStockService) DeactivateBatch(ctx context.Context, batchID uuid.UUID) (*inventoryapp.BatchResponse, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.BatchResponse), args.Error(1)
}

func (m *MockStockService) ReactivateBatch(ctx context.Context, batchID uuid.UUID) (*inventoryapp.BatchResponse, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.BatchResponse), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) CreateCart(ctx context.Context, req tradeapp.CreateCartRequest) (*tradeapp.CartResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.CartResponse), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, cartID uuid.UUID) (*tradeapp.CartResponse, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.CartResponse), args.Error(1)
}

func (m *MockCartService) AddOrUpdateItem(ctx context.Context, cartID uuid.UUID, req tradeapp.SetCartItemRequest) (*tradeapp.CartResponse, error) {
	args := m.Called(ctx, cartID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.CartResponse), args.Error(1)
}

func (m *MockCartService) Checkout(ctx context.Context, cartID uuid.UUID, req tradeapp.CheckoutRequest) (*tradeapp.OrderResponse, error) {
	args := m.Called(ctx, cartID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.OrderResponse), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*tradeapp.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetSale(ctx context.Context, saleID uuid.UUID) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func (m *MockOrderService) GetSaleByOrder(ctx context.Context, orderID uuid.UUID) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func (m *MockOrderService) ConfirmOrder(ctx context.Context, orderID uuid.UUID, req tradeapp.ConfirmOrderRequest) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (*tradeapp.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.OrderResponse), args.Error(1)
}
