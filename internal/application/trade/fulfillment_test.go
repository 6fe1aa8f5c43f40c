package trade_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scenario struct {
	*testutil.Fixture
	productID uuid.UUID
	b1, b2    uuid.UUID
}

// newScenario stocks B1 (day 1, 10 @ 10.00) and B2 (day 2, 10 @ 12.00).
// B2 is received first so that FIFO cannot lean on insertion order.
func newScenario(t *testing.T) *scenario {
	f := testutil.NewFixture(t)
	p := f.SeedProduct(t, "WIDGET")
	s := &scenario{Fixture: f, productID: p.ID}
	s.b2 = f.Replenish(t, p.ID, f.Warehouse.ID, 10, "12.00", 2)
	s.b1 = f.Replenish(t, p.ID, f.Warehouse.ID, 10, "10.00", 1)
	return s
}

func (s *scenario) checkout(t *testing.T, qty int64) *tradeapp.OrderResponse {
	t.Helper()
	cartID := s.OpenCart(t, testutil.Line(s.productID, s.Warehouse.ID, qty))
	order, err := s.Carts.Checkout(context.Background(), cartID, testutil.Buyer())
	require.NoError(t, err)
	return order
}

func (s *scenario) requireState(t *testing.T, available, reserved, b1, b2 int64) {
	t.Helper()
	ledger := s.Ledger(t, s.productID, s.Warehouse.ID)
	assert.Equal(t, available, ledger.AvailableStock, "available")
	assert.Equal(t, reserved, ledger.ReservedStock, "reserved")
	assert.Equal(t, b1, s.Batch(t, s.b1).QuantityAvailable, "B1")
	assert.Equal(t, b2, s.Batch(t, s.b2).QuantityAvailable, "B2")
	s.RequireConsistent(t, s.productID, s.Warehouse.ID)
	s.requireMovementsBalance(t)
}

// movementNet sums the pair's movement log, in minus out
func (s *scenario) movementNet(t *testing.T) (net int64, byRef map[string]int64) {
	t.Helper()
	page, err := s.Stock.ListMovements(context.Background(), inventoryapp.MovementListFilter{
		ProductID:   &s.productID,
		WarehouseID: &s.Warehouse.ID,
		PageSize:    100,
	})
	require.NoError(t, err)
	byRef = map[string]int64{}
	for _, m := range page.Items {
		q := m.Quantity
		if m.Type == string(inventory.MovementOut) {
			q = -q
		}
		net += q
		byRef[m.ReferenceType] += q
	}
	return net, byRef
}

// requireMovementsBalance checks that the movement log accounts for exactly
// the units still held in batches
func (s *scenario) requireMovementsBalance(t *testing.T) {
	t.Helper()
	net, _ := s.movementNet(t)
	ledger := s.Ledger(t, s.productID, s.Warehouse.ID)
	assert.Equal(t, ledger.AvailableStock, net, "movement log vs available stock")
}

func TestCheckout_DrawsOldestBatchFirst(t *testing.T) {
	s := newScenario(t)

	order := s.checkout(t, 15)

	require.Len(t, order.Details, 1)
	line := order.Details[0]
	assert.Equal(t, "pending", order.Status)
	assert.True(t, decimal.RequireFromString("10.67").Equal(line.UnitCost), "got %s", line.UnitCost)
	require.Len(t, line.Allocations, 2)
	assert.Equal(t, s.b1, line.Allocations[0].BatchID)
	assert.Equal(t, int64(10), line.Allocations[0].Quantity)
	assert.Equal(t, s.b2, line.Allocations[1].BatchID)
	assert.Equal(t, int64(5), line.Allocations[1].Quantity)

	s.requireState(t, 5, 15, 0, 5)
	assert.Equal(t, inventory.BatchStatusDepleted, s.Batch(t, s.b1).Status)
	assert.Contains(t, s.Events.Types(), trade.EventTypeOrderCreated)
	assert.Contains(t, s.Events.Types(), inventory.EventTypeStockAllocated)
}

func TestConfirmOrder_SettlesReservationOnce(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()
	order := s.checkout(t, 15)

	sale, err := s.Orders.ConfirmOrder(ctx, order.ID, tradeapp.ConfirmOrderRequest{PaymentMethod: "card", Reference: "AUTH-1"})
	require.NoError(t, err)
	assert.Equal(t, order.ID, sale.OrderID)
	s.requireState(t, 5, 0, 0, 5)

	_, err = s.Orders.ConfirmOrder(ctx, order.ID, tradeapp.ConfirmOrderRequest{PaymentMethod: "card"})
	assert.ErrorIs(t, err, trade.ErrOrderNotConfirmable)
	s.requireState(t, 5, 0, 0, 5)

	_, err = s.Orders.CancelOrder(ctx, order.ID)
	assert.ErrorIs(t, err, trade.ErrOrderNotCancellable)

	bySale, err := s.Orders.GetSaleByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, bySale.ID)
}

func TestCancelOrder_RestoresEveryBatch(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()
	order := s.checkout(t, 15)

	cancelled, err := s.Orders.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	s.requireState(t, 20, 0, 10, 10)
	assert.Equal(t, inventory.BatchStatusActive, s.Batch(t, s.b1).Status)
	assert.Equal(t, inventory.BatchStatusActive, s.Batch(t, s.b2).Status)

	_, err = s.Orders.CancelOrder(ctx, order.ID)
	assert.ErrorIs(t, err, trade.ErrOrderNotCancellable)
	_, err = s.Orders.ConfirmOrder(ctx, order.ID, tradeapp.ConfirmOrderRequest{PaymentMethod: "card"})
	assert.ErrorIs(t, err, trade.ErrOrderNotConfirmable)
	s.requireState(t, 20, 0, 10, 10)

	// released units are drawn again in the same FIFO order
	again := s.checkout(t, 12)
	assert.Equal(t, s.b1, again.Details[0].Allocations[0].BatchID)
	s.requireState(t, 8, 12, 0, 8)
}

func TestMovementLog_BalancesAcrossTheOrderLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("checkout then confirm", func(t *testing.T) {
		s := newScenario(t)
		order := s.checkout(t, 15)
		s.requireMovementsBalance(t)

		_, err := s.Orders.ConfirmOrder(ctx, order.ID, tradeapp.ConfirmOrderRequest{PaymentMethod: "cash"})
		require.NoError(t, err)

		net, byRef := s.movementNet(t)
		ledger := s.Ledger(t, s.productID, s.Warehouse.ID)
		assert.Equal(t, ledger.AvailableStock+ledger.ReservedStock, net)
		assert.Equal(t, int64(5), net)
		assert.Equal(t, int64(20), byRef[string(inventory.ReferencePurchase)])
		assert.Equal(t, int64(-15), byRef[string(inventory.ReferenceOrder)])
		assert.Zero(t, byRef[string(inventory.ReferenceSale)], "confirm must not log the units again")
	})

	t.Run("checkout then cancel", func(t *testing.T) {
		s := newScenario(t)
		order := s.checkout(t, 15)

		_, err := s.Orders.CancelOrder(ctx, order.ID)
		require.NoError(t, err)

		net, byRef := s.movementNet(t)
		ledger := s.Ledger(t, s.productID, s.Warehouse.ID)
		assert.Equal(t, ledger.AvailableStock+ledger.ReservedStock, net)
		assert.Equal(t, int64(20), net)
		assert.Equal(t, int64(15), byRef[string(inventory.ReferenceOrderCancel)])
	})
}

func TestCheckout_FailingLineRollsBackEveryLine(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	a := f.SeedProduct(t, "A")
	b := f.SeedProduct(t, "B")
	f.Replenish(t, a.ID, f.Warehouse.ID, 10, "1.00", 1)
	f.Replenish(t, b.ID, f.Warehouse.ID, 5, "2.00", 1)

	cartID := f.OpenCart(t,
		testutil.Line(a.ID, f.Warehouse.ID, 8),
		testutil.Line(b.ID, f.Warehouse.ID, 5),
	)

	// stock moves between the advisory cart check and checkout
	_, err := f.Stock.Allocate(ctx, testAllocate(b.ID, f.Warehouse.ID, 3))
	require.NoError(t, err)

	_, err = f.Carts.Checkout(ctx, cartID, testutil.Buyer())
	require.Error(t, err)

	var lineErr *trade.CheckoutLineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 2, lineErr.Line)
	assert.Equal(t, b.ID, lineErr.ProductID)
	assert.Equal(t, int64(5), lineErr.Requested)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	var short *inventory.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, int64(2), short.Available)

	ledgerA := f.Ledger(t, a.ID, f.Warehouse.ID)
	assert.Equal(t, int64(10), ledgerA.AvailableStock)
	assert.Equal(t, int64(0), ledgerA.ReservedStock)
	f.RequireConsistent(t, a.ID, f.Warehouse.ID)
	f.RequireConsistent(t, b.ID, f.Warehouse.ID)

	cart, err := f.Carts.GetCart(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, "open", cart.Status)
}

func TestCheckout_CartRules(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.SeedProduct(t, "P")
	f.Replenish(t, p.ID, f.Warehouse.ID, 3, "1.00", 1)

	t.Run("empty cart", func(t *testing.T) {
		cartID := f.OpenCart(t)
		_, err := f.Carts.Checkout(ctx, cartID, testutil.Buyer())
		assert.ErrorIs(t, err, trade.ErrEmptyCart)
	})

	t.Run("incomplete customer", func(t *testing.T) {
		cartID := f.OpenCart(t, testutil.Line(p.ID, f.Warehouse.ID, 1))
		req := testutil.Buyer()
		req.Customer.DocumentNumber = ""
		_, err := f.Carts.Checkout(ctx, cartID, req)
		assert.ErrorIs(t, err, trade.ErrInvalidCustomer)
	})

	t.Run("checked out cart is closed", func(t *testing.T) {
		cartID := f.OpenCart(t, testutil.Line(p.ID, f.Warehouse.ID, 1))
		_, err := f.Carts.Checkout(ctx, cartID, testutil.Buyer())
		require.NoError(t, err)

		_, err = f.Carts.Checkout(ctx, cartID, testutil.Buyer())
		assert.ErrorIs(t, err, trade.ErrCartNotOpen)
		_, err = f.Carts.AddOrUpdateItem(ctx, cartID, testutil.Line(p.ID, f.Warehouse.ID, 1))
		assert.ErrorIs(t, err, trade.ErrCartNotOpen)
	})

	t.Run("advisory check rejects oversized lines", func(t *testing.T) {
		cartID := f.OpenCart(t)
		_, err := f.Carts.AddOrUpdateItem(ctx, cartID, testutil.Line(p.ID, f.Warehouse.ID, 50))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}

func TestAddOrUpdateItem_SelectsWarehouse(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.SeedProduct(t, "P")
	north := f.SeedWarehouse(t, "NORTH", false, 1)
	south := f.SeedWarehouse(t, "SOUTH", false, 2)
	f.Replenish(t, p.ID, f.Warehouse.ID, 2, "1.00", 1)
	f.Replenish(t, p.ID, north.ID, 10, "1.00", 1)
	f.Replenish(t, p.ID, south.ID, 10, "1.00", 1)

	cartID := f.OpenCart(t)

	// main lacks stock; NORTH wins on picking priority
	cart, err := f.Carts.AddOrUpdateItem(ctx, cartID, tradeapp.SetCartItemRequest{ProductID: p.ID, Quantity: 5})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, north.ID, cart.Items[0].WarehouseID)

	// small enough for main
	cart, err = f.Carts.AddOrUpdateItem(ctx, cartID, tradeapp.SetCartItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, f.Warehouse.ID, cart.Items[0].WarehouseID)

	// nowhere has 11
	_, err = f.Carts.AddOrUpdateItem(ctx, cartID, tradeapp.SetCartItemRequest{ProductID: p.ID, Quantity: 11})
	var short *inventory.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, int64(10), short.Available)

	// zero removes the line
	cart, err = f.Carts.AddOrUpdateItem(ctx, cartID, tradeapp.SetCartItemRequest{ProductID: p.ID, Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckout_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.SeedProduct(t, "HOT")
	f.Replenish(t, p.ID, f.Warehouse.ID, 20, "5.00", 1)

	const buyers = 6
	carts := make([]uuid.UUID, buyers)
	for i := range carts {
		carts[i] = f.OpenCart(t, testutil.Line(p.ID, f.Warehouse.ID, 5))
	}

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for _, id := range carts {
		wg.Add(1)
		go func(cartID uuid.UUID) {
			defer wg.Done()
			_, err := f.Carts.Checkout(ctx, cartID, testutil.Buyer())
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	var placed, rejected int
	for err := range results {
		if err == nil {
			placed++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		rejected++
	}
	assert.Equal(t, 4, placed)
	assert.Equal(t, 2, rejected)

	ledger := f.Ledger(t, p.ID, f.Warehouse.ID)
	assert.Equal(t, int64(0), ledger.AvailableStock)
	assert.Equal(t, int64(20), ledger.ReservedStock)
	f.RequireConsistent(t, p.ID, f.Warehouse.ID)
}

func testAllocate(productID, warehouseID uuid.UUID, qty int64) inventoryapp.AllocateRequest {
	return inventoryapp.AllocateRequest{ProductID: productID, WarehouseID: warehouseID, Quantity: qty}
}
