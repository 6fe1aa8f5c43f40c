package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Day1 is the purchase date of the first scenario batch; later batches are
// dated relative to it.
var Day1 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// Fixture is a fully wired fulfillment core over in-memory sqlite
type Fixture struct {
	DB        *persistence.Database
	Repos     *persistence.Repositories
	Stock     *inventoryapp.AllocationService
	Carts     *tradeapp.CartService
	Orders    *tradeapp.OrderService
	Events    *RecordingPublisher
	Warehouse *catalog.Warehouse
	Category  *catalog.Category
}

// NewFixture opens a fresh database seeded with one main warehouse and one
// category with a 10% minimum margin.
func NewFixture(t testing.TB) *Fixture {
	t.Helper()

	db := NewSQLiteDB(t)
	repos := persistence.NewRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	events := &RecordingPublisher{}
	stock := inventoryapp.NewAllocationService(repos.Inventory, repos.Batches, repos.Movements, repos.Catalog, scope)
	stock.SetEventPublisher(events)

	f := &Fixture{
		DB:     db,
		Repos:  repos,
		Stock:  stock,
		Carts:  tradeapp.NewCartService(repos.Carts, repos.Catalog, stock, scope.Trade(), "PEN"),
		Orders: tradeapp.NewOrderService(repos.Orders, repos.Sales, repos.Catalog, stock, scope.Trade()),
		Events: events,
	}
	f.Warehouse = f.SeedWarehouse(t, "MAIN", true, 0)

	category, err := catalog.NewCategory("GENERAL", "General", nil)
	require.NoError(t, err)
	minPct, normalPct := decimal.NewFromInt(10), decimal.NewFromInt(25)
	require.NoError(t, category.SetMargins(&minPct, &normalPct))
	require.NoError(t, repos.Catalog.SaveCategory(context.Background(), category))
	f.Category = category

	return f
}

// SeedWarehouse stores an active warehouse
func (f *Fixture) SeedWarehouse(t testing.TB, code string, isMain bool, priority int) *catalog.Warehouse {
	t.Helper()
	w, err := catalog.NewWarehouse(code, code+" warehouse", isMain, priority)
	require.NoError(t, err)
	require.NoError(t, f.Repos.Catalog.SaveWarehouse(context.Background(), w))
	return w
}

// SeedProduct stores an active product in the fixture category
func (f *Fixture) SeedProduct(t testing.TB, sku string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, &f.Category.ID)
	require.NoError(t, err)
	require.NoError(t, f.Repos.Catalog.SaveProduct(context.Background(), p))
	return p
}

// Replenish receives qty units at cost, dated day days after Day1, and
// returns the batch ID. The distribution price is cost plus 50%.
func (f *Fixture) Replenish(t testing.TB, productID, warehouseID uuid.UUID, qty int64, cost string, day int) uuid.UUID {
	t.Helper()
	price := decimal.RequireFromString(cost)
	date := Day1.AddDate(0, 0, day-1)
	batch, err := f.Stock.Replenish(context.Background(), inventoryapp.ReplenishRequest{
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Quantity:          qty,
		PurchasePrice:     price,
		DistributionPrice: price.Mul(decimal.NewFromFloat(1.5)).Round(2),
		PurchaseDate:      &date,
	})
	require.NoError(t, err)
	return batch.ID
}

// Ledger returns the ledger row of a pair
func (f *Fixture) Ledger(t testing.TB, productID, warehouseID uuid.UUID) *inventory.InventoryItem {
	t.Helper()
	item, err := f.Repos.Inventory.FindByProductAndWarehouse(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	return item
}

// Batch returns a batch by ID
func (f *Fixture) Batch(t testing.TB, id uuid.UUID) *inventory.PurchaseBatch {
	t.Helper()
	b, err := f.Repos.Batches.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

// RequireConsistent fails unless the pair's ledger matches its active batches
func (f *Fixture) RequireConsistent(t testing.TB, productID, warehouseID uuid.UUID) {
	t.Helper()
	report, err := f.Stock.CheckConsistency(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	require.True(t, report.Consistent, "ledger drifted from batches: %+v", report)
}

// OpenCart creates a cart holding the given lines
func (f *Fixture) OpenCart(t testing.TB, lines ...tradeapp.SetCartItemRequest) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	cart, err := f.Carts.CreateCart(ctx, tradeapp.CreateCartRequest{})
	require.NoError(t, err)
	for _, line := range lines {
		_, err := f.Carts.AddOrUpdateItem(ctx, cart.ID, line)
		require.NoError(t, err)
	}
	return cart.ID
}

// Line builds a cart line pinned to a warehouse
func Line(productID, warehouseID uuid.UUID, qty int64) tradeapp.SetCartItemRequest {
	return tradeapp.SetCartItemRequest{ProductID: productID, WarehouseID: &warehouseID, Quantity: qty}
}

// Buyer returns a valid normalized checkout request
func Buyer() tradeapp.CheckoutRequest {
	return tradeapp.CheckoutRequest{
		Customer: trade.CustomerSnapshot{
			Name:           "Ana Torres",
			DocumentType:   "DNI",
			DocumentNumber: "44556677",
			Email:          "ana@example.com",
		},
		Address: trade.AddressSnapshot{
			Line1:   "Av. Arequipa 123",
			City:    "Lima",
			Country: "PE",
		},
	}
}

// ErrorCode returns the DomainError code wrapped in err, or ""
func ErrorCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
