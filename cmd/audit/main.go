// Command audit compares every ledger row with the active batches behind it
// and exits with status 2 when any pair has drifted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/infrastructure/config"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

const exitDrift = 2

func main() {
	var (
		all      bool
		asJSON   bool
		logLevel string
	)
	flag.BoolVar(&all, "all", false, "Print consistent pairs too")
	flag.BoolVar(&asJSON, "json", false, "Print reports as JSON")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatal("The audit runs against postgres only", zap.String("driver", cfg.Database.Driver))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := persistence.NewDatabase(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	reports, err := persistence.NewLedgerAuditor(db.Pool).Audit(ctx, !all)
	if err != nil {
		log.Fatal("Audit failed", zap.Error(err))
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			log.Fatal("Failed to write reports", zap.Error(err))
		}
	} else if err := printTable(reports); err != nil {
		log.Fatal("Failed to write reports", zap.Error(err))
	}

	drifted := 0
	for _, r := range reports {
		if !r.Consistent {
			drifted++
		}
	}
	log.Info("Ledger audit finished", zap.Int("pairs", len(reports)), zap.Int("drifted", drifted))
	if drifted > 0 {
		_ = log.Sync()
		os.Exit(exitDrift)
	}
}

func printTable(reports []inventory.ConsistencyReport) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tWAREHOUSE\tAVAILABLE\tRESERVED\tBATCHES\tDRIFT")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%+d\n",
			r.ProductID, r.WarehouseID, r.AvailableStock, r.ReservedStock, r.BatchAvailable, r.Drift())
	}
	return w.Flush()
}
