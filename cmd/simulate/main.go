// Command simulate runs concurrent checkouts against a throwaway sqlite
// database and verifies that the ledger still matches the batches.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"text/tabwriter"
	"time"

	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/internal/infrastructure/config"
	"github.com/erp/fulfillment/internal/infrastructure/event"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type options struct {
	buyers    int
	quantity  int64
	batches   int
	batchSize int64
	dbPath    string
	logLevel  string
}

func main() {
	var opts options
	flag.IntVar(&opts.buyers, "buyers", 12, "Concurrent checkouts")
	flag.Int64Var(&opts.quantity, "qty", 5, "Units per checkout")
	flag.IntVar(&opts.batches, "batches", 3, "Purchase batches to receive")
	flag.Int64Var(&opts.batchSize, "batch-size", 15, "Units per batch")
	flag.StringVar(&opts.dbPath, "db", "file:simulate?mode=memory&cache=shared", "sqlite database path")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      opts.logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "15:04:05.000",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), opts, log); err != nil {
		log.Error("Simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

type simulation struct {
	repos     *persistence.Repositories
	stock     *inventoryapp.AllocationService
	carts     *tradeapp.CartService
	orders    *tradeapp.OrderService
	warehouse *catalog.Warehouse
	product   *catalog.Product
}

func run(ctx context.Context, opts options, log *zap.Logger) error {
	db, err := persistence.NewDatabase(ctx, &config.DatabaseConfig{Driver: "sqlite", SQLitePath: opts.dbPath})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewLoggingHandler(log))
	bus.Subscribe(inventoryapp.NewLowStockHandler(log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log)),
		inventory.EventTypeLowStock)
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	repos := persistence.NewRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)
	stock := inventoryapp.NewAllocationService(repos.Inventory, repos.Batches, repos.Movements, repos.Catalog, scope)
	stock.SetEventPublisher(bus)
	stock.SetLowStockThreshold(opts.quantity)

	sim := &simulation{
		repos:  repos,
		stock:  stock,
		carts:  tradeapp.NewCartService(repos.Carts, repos.Catalog, stock, scope.Trade(), "PEN"),
		orders: tradeapp.NewOrderService(repos.Orders, repos.Sales, repos.Catalog, stock, scope.Trade()),
	}
	if err := sim.seed(ctx, opts); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	placed, refused, err := sim.checkouts(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Printf("checkouts: %d placed, %d refused for lack of stock\n", len(placed), refused)

	confirmed, cancelled, err := sim.settle(ctx, placed)
	if err != nil {
		return err
	}
	fmt.Printf("orders: %d confirmed, %d cancelled\n\n", confirmed, cancelled)

	return sim.report(ctx)
}

// seed receives the batches newest first so FIFO cannot lean on insertion order
func (s *simulation) seed(ctx context.Context, opts options) error {
	warehouse, err := catalog.NewWarehouse("MAIN", "Main warehouse", true, 0)
	if err != nil {
		return err
	}
	if err := s.repos.Catalog.SaveWarehouse(ctx, warehouse); err != nil {
		return err
	}
	category, err := catalog.NewCategory("GENERAL", "General", nil)
	if err != nil {
		return err
	}
	minPct, normalPct := decimal.NewFromInt(10), decimal.NewFromInt(25)
	if err := category.SetMargins(&minPct, &normalPct); err != nil {
		return err
	}
	if err := s.repos.Catalog.SaveCategory(ctx, category); err != nil {
		return err
	}
	product, err := catalog.NewProduct("SIM-001", "Simulated product", &category.ID)
	if err != nil {
		return err
	}
	if err := s.repos.Catalog.SaveProduct(ctx, product); err != nil {
		return err
	}
	s.warehouse, s.product = warehouse, product

	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := opts.batches - 1; i >= 0; i-- {
		cost := decimal.NewFromInt(10).Add(decimal.NewFromInt(int64(i)))
		date := day1.AddDate(0, 0, i)
		if _, err := s.stock.Replenish(ctx, inventoryapp.ReplenishRequest{
			ProductID:         product.ID,
			WarehouseID:       warehouse.ID,
			Quantity:          opts.batchSize,
			PurchasePrice:     cost,
			DistributionPrice: cost.Mul(decimal.NewFromFloat(1.5)).Round(2),
			PurchaseDate:      &date,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *simulation) checkouts(ctx context.Context, opts options) ([]*tradeapp.OrderResponse, int, error) {
	carts := make([]uuid.UUID, opts.buyers)
	for i := range carts {
		cart, err := s.carts.CreateCart(ctx, tradeapp.CreateCartRequest{})
		if err != nil {
			return nil, 0, err
		}
		if _, err := s.carts.AddOrUpdateItem(ctx, cart.ID, tradeapp.SetCartItemRequest{
			ProductID:   s.product.ID,
			WarehouseID: &s.warehouse.ID,
			Quantity:    opts.quantity,
		}); err != nil {
			return nil, 0, fmt.Errorf("cart %d: %w", i, err)
		}
		carts[i] = cart.ID
	}

	orders := make([]*tradeapp.OrderResponse, len(carts))
	var refused atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i, cartID := range carts {
		g.Go(func() error {
			order, err := s.carts.Checkout(gctx, cartID, buyer(i))
			if errors.Is(err, shared.ErrInsufficientStock) {
				refused.Add(1)
				return nil
			}
			if err != nil {
				return fmt.Errorf("checkout %d: %w", i, err)
			}
			orders[i] = order
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	placed := make([]*tradeapp.OrderResponse, 0, len(orders))
	for _, o := range orders {
		if o != nil {
			placed = append(placed, o)
		}
	}
	return placed, int(refused.Load()), nil
}

// settle confirms even-numbered orders and cancels the rest
func (s *simulation) settle(ctx context.Context, placed []*tradeapp.OrderResponse) (confirmed, cancelled int, err error) {
	for i, order := range placed {
		if i%2 == 0 {
			if _, err := s.orders.ConfirmOrder(ctx, order.ID, tradeapp.ConfirmOrderRequest{PaymentMethod: "cash"}); err != nil {
				return confirmed, cancelled, fmt.Errorf("confirm %s: %w", order.OrderNumber, err)
			}
			confirmed++
			continue
		}
		if _, err := s.orders.CancelOrder(ctx, order.ID); err != nil {
			return confirmed, cancelled, fmt.Errorf("cancel %s: %w", order.OrderNumber, err)
		}
		cancelled++
	}
	return confirmed, cancelled, nil
}

func (s *simulation) report(ctx context.Context) error {
	batches, err := s.stock.ListBatches(ctx, inventoryapp.BatchListFilter{
		ProductID:   s.product.ID,
		WarehouseID: s.warehouse.ID,
		PageSize:    100,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BATCH\tPURCHASED ON\tCOST\tPURCHASED\tAVAILABLE\tSTATUS")
	for _, b := range batches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			b.ID.String()[:8], b.PurchaseDate.Format("2006-01-02"), b.PurchasePrice.StringFixed(2),
			b.QuantityPurchased, b.QuantityAvailable, b.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	report, err := s.stock.CheckConsistency(ctx, s.product.ID, s.warehouse.ID)
	if err != nil {
		return err
	}
	fmt.Printf("\nledger: %d available, %d reserved; batches hold %d\n",
		report.AvailableStock, report.ReservedStock, report.BatchAvailable)

	if !report.Consistent {
		return fmt.Errorf("%w: ledger drifted by %d units", inventory.ErrInventoryInconsistency, report.Drift())
	}
	fmt.Println("ledger matches batches")
	return nil
}

func buyer(i int) tradeapp.CheckoutRequest {
	return tradeapp.CheckoutRequest{
		Customer: trade.CustomerSnapshot{
			Name:           fmt.Sprintf("Buyer %02d", i+1),
			DocumentType:   "DNI",
			DocumentNumber: fmt.Sprintf("%08d", 40000000+i),
		},
		Address: trade.AddressSnapshot{
			Line1:   fmt.Sprintf("Jr. Simulado %d", 100+i),
			City:    "Lima",
			Country: "PE",
		},
	}
}
