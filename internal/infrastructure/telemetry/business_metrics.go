// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks allocation and order fulfillment activity.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	allocationsTotal        *Counter
	allocationFailuresTotal *Counter
	unitsAllocatedTotal     *Counter
	ordersPlacedTotal       *Counter
	ordersConfirmedTotal    *Counter
	ordersCancelledTotal    *Counter
	saleRevenueTotal        *Counter
	marginAlertsTotal       *Counter
	integrityAlarmsTotal    *Counter

	// Gauge metrics (point-in-time values)
	reservedQuantity *Gauge
	lowStockCount    *Gauge

	allocationDuration *Histogram

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	inventoryProvider InventoryMetricsProvider
}

// InventoryMetricsProvider provides ledger aggregates for periodic collection
// without tying the telemetry layer to the inventory domain.
type InventoryMetricsProvider interface {
	// GetReservedQuantityByWarehouse returns units held by pending orders per warehouse
	GetReservedQuantityByWarehouse(ctx context.Context) (map[uuid.UUID]int64, error)

	// GetLowStockCount returns the number of ledger rows below threshold
	GetLowStockCount(ctx context.Context, threshold int64) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	InventoryProvider InventoryMetricsProvider
	LowStockThreshold int64
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		inventoryProvider: cfg.InventoryProvider,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.allocationsTotal, "fulfillment_allocations_total", "Successful stock allocations", "{allocations}"},
		{&bm.allocationFailuresTotal, "fulfillment_allocation_failures_total", "Failed stock allocations by error code", "{allocations}"},
		{&bm.unitsAllocatedTotal, "fulfillment_units_allocated_total", "Units moved from available to reserved", "{units}"},
		{&bm.ordersPlacedTotal, "fulfillment_orders_placed_total", "Orders created by checkout", "{orders}"},
		{&bm.ordersConfirmedTotal, "fulfillment_orders_confirmed_total", "Orders converted into sales", "{orders}"},
		{&bm.ordersCancelledTotal, "fulfillment_orders_cancelled_total", "Orders cancelled with stock restored", "{orders}"},
		{&bm.saleRevenueTotal, "fulfillment_sale_revenue_total", "Sale revenue in minor currency units", "{cents}"},
		{&bm.marginAlertsTotal, "fulfillment_margin_alerts_total", "Sale lines below the category minimum margin", "{lines}"},
		{&bm.integrityAlarmsTotal, "fulfillment_integrity_alarms_total", "Ledger and batch drift detections", "{alarms}"},
	}

	var err error
	for _, c := range counters {
		*c.target, err = NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
	}

	bm.reservedQuantity, err = NewGauge(
		cfg.Meter,
		"fulfillment_inventory_reserved_quantity",
		"Units reserved by pending orders",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	bm.lowStockCount, err = NewGauge(
		cfg.Meter,
		"fulfillment_inventory_low_stock_count",
		"Ledger rows below the low-stock threshold",
		"{rows}",
	)
	if err != nil {
		return nil, err
	}

	bm.allocationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "fulfillment_allocation_duration_seconds",
		Description: "Time spent allocating stock inside the unit of work",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Allocation Metrics
// =============================================================================

// RecordAllocation records a successful allocation
func (bm *BusinessMetrics) RecordAllocation(ctx context.Context, warehouseID uuid.UUID, units int64, batches int, elapsed time.Duration) {
	attrs := AttrWarehouseID.String(warehouseID.String())
	bm.allocationsTotal.Inc(ctx, attrs, AttrBatchCount.Int(batches))
	bm.unitsAllocatedTotal.Add(ctx, units, attrs)
	bm.allocationDuration.RecordDuration(ctx, elapsed, attrs)
}

// RecordAllocationFailure records a rejected allocation by error code
func (bm *BusinessMetrics) RecordAllocationFailure(ctx context.Context, code string) {
	bm.allocationFailuresTotal.Inc(ctx, AttrErrorCode.String(code))
}

// RecordIntegrityAlarm records ledger/batch drift
func (bm *BusinessMetrics) RecordIntegrityAlarm(ctx context.Context, code string) {
	bm.integrityAlarmsTotal.Inc(ctx, AttrErrorCode.String(code))
}

// =============================================================================
// Order Metrics
// =============================================================================

// RecordOrderPlaced records a checkout that created a pending order
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, lines int) {
	bm.ordersPlacedTotal.Inc(ctx, AttrLineCount.Int(lines))
}

// RecordOrderConfirmed records a confirmed order and its sale revenue.
// Revenue is converted to minor units (cents).
func (bm *BusinessMetrics) RecordOrderConfirmed(ctx context.Context, paymentMethod, currency string, revenue decimal.Decimal, marginAlerts int) {
	bm.ordersConfirmedTotal.Inc(ctx, AttrPaymentMethod.String(paymentMethod))
	bm.saleRevenueTotal.Add(ctx, revenue.Mul(decimal.NewFromInt(100)).IntPart(), AttrCurrency.String(currency))
	if marginAlerts > 0 {
		bm.marginAlertsTotal.Add(ctx, int64(marginAlerts))
	}
}

// RecordOrderCancelled records a cancelled order
func (bm *BusinessMetrics) RecordOrderCancelled(ctx context.Context, units int64) {
	bm.ordersCancelledTotal.Inc(ctx, AttrUnits.Int64(units))
}

// =============================================================================
// Inventory Gauges
// =============================================================================

// RecordReservedQuantity records reserved units for a warehouse.
func (bm *BusinessMetrics) RecordReservedQuantity(ctx context.Context, warehouseID uuid.UUID, quantity int64) {
	bm.reservedQuantity.Record(ctx, quantity, AttrWarehouseID.String(warehouseID.String()))
}

// RecordLowStockCount records the number of ledger rows below threshold.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.lowStockCount.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, threshold int64, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, threshold, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, threshold int64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectInventoryMetrics(ctx, threshold)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectInventoryMetrics(ctx, threshold)
		}
	}
}

func (bm *BusinessMetrics) collectInventoryMetrics(ctx context.Context, threshold int64) {
	if bm.inventoryProvider == nil {
		bm.logger.Debug("No inventory provider configured, skipping inventory metrics collection")
		return
	}

	reserved, err := bm.inventoryProvider.GetReservedQuantityByWarehouse(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get reserved quantity", zap.Error(err))
	} else {
		for warehouseID, quantity := range reserved {
			bm.RecordReservedQuantity(ctx, warehouseID, quantity)
		}
	}

	lowStock, err := bm.inventoryProvider.GetLowStockCount(ctx, threshold)
	if err != nil {
		bm.logger.Warn("Failed to get low stock count", zap.Error(err))
	} else {
		bm.RecordLowStockCount(ctx, lowStock)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
