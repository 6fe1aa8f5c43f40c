package trade_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fulfillmentWorld is the per-scenario state of the feature suite
type fulfillmentWorld struct {
	t        *testing.T
	fixture  *testutil.Fixture
	products map[string]uuid.UUID
	batches  map[int]uuid.UUID
	cart     uuid.UUID
	order    *tradeapp.OrderResponse
	sale     *tradeapp.SaleResponse
	err      error
}

func (w *fulfillmentWorld) reset() {
	w.fixture = testutil.NewFixture(w.t)
	w.products = map[string]uuid.UUID{}
	w.batches = map[int]uuid.UUID{}
	w.cart = uuid.Nil
	w.order = nil
	w.sale = nil
	w.err = nil
}

func (w *fulfillmentWorld) product(ctx context.Context, sku string) (uuid.UUID, error) {
	if id, ok := w.products[sku]; ok {
		return id, nil
	}
	p, err := catalog.NewProduct(sku, "Product "+sku, &w.fixture.Category.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if err := w.fixture.Repos.Catalog.SaveProduct(ctx, p); err != nil {
		return uuid.Nil, err
	}
	w.products[sku] = p.ID
	return p.ID, nil
}

func (w *fulfillmentWorld) productReceived(ctx context.Context, sku string, qty int64, cost string, day int) error {
	productID, err := w.product(ctx, sku)
	if err != nil {
		return err
	}
	price, err := decimal.NewFromString(cost)
	if err != nil {
		return err
	}
	date := testutil.Day1.AddDate(0, 0, day-1)
	batch, err := w.fixture.Stock.Replenish(ctx, inventoryapp.ReplenishRequest{
		ProductID:         productID,
		WarehouseID:       w.fixture.Warehouse.ID,
		Quantity:          qty,
		PurchasePrice:     price,
		DistributionPrice: price.Mul(decimal.NewFromFloat(1.5)).Round(2),
		PurchaseDate:      &date,
	})
	if err != nil {
		return err
	}
	if _, ok := w.batches[day]; !ok {
		w.batches[day] = batch.ID
	}
	return nil
}

func (w *fulfillmentWorld) openCart(ctx context.Context, lines ...tradeapp.SetCartItemRequest) (uuid.UUID, error) {
	cart, err := w.fixture.Carts.CreateCart(ctx, tradeapp.CreateCartRequest{})
	if err != nil {
		return uuid.Nil, err
	}
	for _, line := range lines {
		if _, err := w.fixture.Carts.AddOrUpdateItem(ctx, cart.ID, line); err != nil {
			return uuid.Nil, err
		}
	}
	return cart.ID, nil
}

func (w *fulfillmentWorld) line(ctx context.Context, sku string, qty int64) (tradeapp.SetCartItemRequest, error) {
	productID, err := w.product(ctx, sku)
	if err != nil {
		return tradeapp.SetCartItemRequest{}, err
	}
	return testutil.Line(productID, w.fixture.Warehouse.ID, qty), nil
}

func (w *fulfillmentWorld) placeOrder(ctx context.Context, qty int64, sku string) (*tradeapp.OrderResponse, error) {
	line, err := w.line(ctx, sku, qty)
	if err != nil {
		return nil, err
	}
	cartID, err := w.openCart(ctx, line)
	if err != nil {
		return nil, err
	}
	return w.fixture.Carts.Checkout(ctx, cartID, testutil.Buyer())
}

func (w *fulfillmentWorld) checksOut(ctx context.Context, qty int64, sku string) error {
	order, err := w.placeOrder(ctx, qty, sku)
	if err != nil {
		return err
	}
	w.order = order
	return nil
}

func (w *fulfillmentWorld) anotherCustomerChecksOut(ctx context.Context, qty int64, sku string) error {
	_, err := w.placeOrder(ctx, qty, sku)
	return err
}

func (w *fulfillmentWorld) cartHolding(ctx context.Context, qtyA int64, skuA string, qtyB int64, skuB string) error {
	a, err := w.line(ctx, skuA, qtyA)
	if err != nil {
		return err
	}
	b, err := w.line(ctx, skuB, qtyB)
	if err != nil {
		return err
	}
	w.cart, err = w.openCart(ctx, a, b)
	return err
}

func (w *fulfillmentWorld) cartCheckedOut(ctx context.Context) error {
	w.order, w.err = w.fixture.Carts.Checkout(ctx, w.cart, testutil.Buyer())
	return nil
}

func (w *fulfillmentWorld) requireOrder() error {
	if w.order == nil {
		return fmt.Errorf("no order was placed (last error: %v)", w.err)
	}
	return nil
}

func (w *fulfillmentWorld) orderConfirmed(ctx context.Context, method string) error {
	if err := w.requireOrder(); err != nil {
		return err
	}
	sale, err := w.fixture.Orders.ConfirmOrder(ctx, w.order.ID, tradeapp.ConfirmOrderRequest{PaymentMethod: method})
	if err != nil {
		return err
	}
	w.sale = sale
	return w.refreshOrder(ctx)
}

func (w *fulfillmentWorld) orderCancelled(ctx context.Context) error {
	if err := w.requireOrder(); err != nil {
		return err
	}
	if _, err := w.fixture.Orders.CancelOrder(ctx, w.order.ID); err != nil {
		return err
	}
	return w.refreshOrder(ctx)
}

func (w *fulfillmentWorld) refreshOrder(ctx context.Context) error {
	order, err := w.fixture.Orders.GetOrder(ctx, w.order.ID)
	if err != nil {
		return err
	}
	w.order = order
	return nil
}

func (w *fulfillmentWorld) orderIs(status string) error {
	if err := w.requireOrder(); err != nil {
		return err
	}
	if w.order.Status != status {
		return fmt.Errorf("expected order %q, got %q", status, w.order.Status)
	}
	return nil
}

func (w *fulfillmentWorld) unitCostIs(sku, cost string) error {
	if err := w.requireOrder(); err != nil {
		return err
	}
	want, err := decimal.NewFromString(cost)
	if err != nil {
		return err
	}
	productID := w.products[sku]
	for _, d := range w.order.Details {
		if d.ProductID != productID {
			continue
		}
		if !d.UnitCost.Equal(want) {
			return fmt.Errorf("expected unit cost %s, got %s", want, d.UnitCost)
		}
		return nil
	}
	return fmt.Errorf("order has no line for %s", sku)
}

func (w *fulfillmentWorld) stockIs(ctx context.Context, sku string, available, reserved int64) error {
	item, err := w.fixture.Repos.Inventory.FindByProductAndWarehouse(ctx, w.products[sku], w.fixture.Warehouse.ID)
	if err != nil {
		return err
	}
	if item.AvailableStock != available || item.ReservedStock != reserved {
		return fmt.Errorf("expected %d available / %d reserved, got %d / %d",
			available, reserved, item.AvailableStock, item.ReservedStock)
	}
	return nil
}

func (w *fulfillmentWorld) batchHolds(ctx context.Context, day int, qty int64) error {
	id, ok := w.batches[day]
	if !ok {
		return fmt.Errorf("no batch received on day %d", day)
	}
	batch, err := w.fixture.Repos.Batches.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if batch.QuantityAvailable != qty {
		return fmt.Errorf("expected batch from day %d to hold %d, got %d", day, qty, batch.QuantityAvailable)
	}
	return nil
}

func (w *fulfillmentWorld) ledgerMatches(ctx context.Context, sku string) error {
	report, err := w.fixture.Stock.CheckConsistency(ctx, w.products[sku], w.fixture.Warehouse.ID)
	if err != nil {
		return err
	}
	if !report.Consistent {
		return fmt.Errorf("ledger drifted by %d", report.Drift())
	}
	return nil
}

func (w *fulfillmentWorld) saleTotalCost(cost string) error {
	if w.sale == nil {
		return errors.New("no sale was recorded")
	}
	want, err := decimal.NewFromString(cost)
	if err != nil {
		return err
	}
	if !w.sale.TotalCost.Equal(want) {
		return fmt.Errorf("expected total cost %s, got %s", want, w.sale.TotalCost)
	}
	return nil
}

func (w *fulfillmentWorld) confirmAgainFails(ctx context.Context, code string) error {
	_, err := w.fixture.Orders.ConfirmOrder(ctx, w.order.ID, tradeapp.ConfirmOrderRequest{PaymentMethod: "cash"})
	return expectCode(err, code)
}

func (w *fulfillmentWorld) cancelAgainFails(ctx context.Context, code string) error {
	_, err := w.fixture.Orders.CancelOrder(ctx, w.order.ID)
	return expectCode(err, code)
}

func (w *fulfillmentWorld) checkoutFails(code string) error {
	if w.order != nil {
		return fmt.Errorf("expected checkout to fail, got order %s", w.order.OrderNumber)
	}
	return expectCode(w.err, code)
}

func expectCode(err error, code string) error {
	if err == nil {
		return fmt.Errorf("expected %s, got success", code)
	}
	if got := testutil.ErrorCode(err); got != code {
		return fmt.Errorf("expected %s, got %q (%v)", code, got, err)
	}
	return nil
}

func initializeFulfillmentScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		w := &fulfillmentWorld{t: t}

		sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
			w.reset()
			return ctx, nil
		})

		sc.Step(`^product "([^"]*)" received (\d+) units at ([\d.]+) on day (\d+)$`, w.productReceived)

		sc.Step(`^a customer checks out (\d+) units of "([^"]*)"$`, w.checksOut)
		sc.Step(`^another customer checks out (\d+) units of "([^"]*)"$`, w.anotherCustomerChecksOut)
		sc.Step(`^a cart holding (\d+) units of "([^"]*)" and (\d+) units of "([^"]*)"$`, w.cartHolding)
		sc.Step(`^the cart is checked out$`, w.cartCheckedOut)
		sc.Step(`^the order is confirmed with payment "([^"]*)"$`, w.orderConfirmed)
		sc.Step(`^the order is cancelled$`, w.orderCancelled)

		sc.Step(`^the order is "([^"]*)"$`, w.orderIs)
		sc.Step(`^the unit cost of "([^"]*)" on the order is ([\d.]+)$`, w.unitCostIs)
		sc.Step(`^"([^"]*)" has (\d+) available and (\d+) reserved$`, w.stockIs)
		sc.Step(`^the batch from day (\d+) holds (\d+) units$`, w.batchHolds)
		sc.Step(`^the ledger of "([^"]*)" matches its batches$`, w.ledgerMatches)
		sc.Step(`^a sale exists with total cost ([\d.]+)$`, w.saleTotalCost)
		sc.Step(`^confirming the order again fails with "([^"]*)"$`, w.confirmAgainFails)
		sc.Step(`^cancelling the order again fails with "([^"]*)"$`, w.cancelAgainFails)
		sc.Step(`^checkout fails with "([^"]*)"$`, w.checkoutFails)
	}
}

func TestFulfillmentFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "fulfillment",
		ScenarioInitializer: initializeFulfillmentScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
