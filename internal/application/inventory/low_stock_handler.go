package inventory

import (
	"context"
	"fmt"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlert is a low or out-of-stock notice for one ledger row
type StockAlert struct {
	ProductID      string `json:"product_id"`
	WarehouseID    string `json:"warehouse_id"`
	AvailableStock int64  `json:"available_stock"`
	ReservedStock  int64  `json:"reserved_stock"`
	Threshold      int64  `json:"threshold"`
	AlertType      string `json:"alert_type"` // low_stock, out_of_stock
}

// StockAlertNotifier delivers stock alerts
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// LowStockHandler turns LowStock events into alerts
type LowStockHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewLowStockHandler creates a new LowStockHandler
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeLowStock}
}

// Handle processes a LowStockEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	low, ok := event.(*inventory.LowStockEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeLowStock, event.EventType())
	}

	alert := StockAlert{
		ProductID:      low.ProductID.String(),
		WarehouseID:    low.WarehouseID.String(),
		AvailableStock: low.AvailableStock,
		ReservedStock:  low.ReservedStock,
		Threshold:      low.Threshold,
		AlertType:      "low_stock",
	}
	if low.AvailableStock == 0 {
		alert.AlertType = "out_of_stock"
	}

	h.logger.Warn("Stock below threshold",
		zap.String("product_id", alert.ProductID),
		zap.String("warehouse_id", alert.WarehouseID),
		zap.Int64("available_stock", alert.AvailableStock),
		zap.Int64("threshold", alert.Threshold),
		zap.String("alert_type", alert.AlertType))

	if h.notifier != nil {
		// Delivery failures never fail event handling.
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			h.logger.Error("Failed to send stock alert", zap.Error(err))
		}
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_id", alert.ProductID),
		zap.String("warehouse_id", alert.WarehouseID),
		zap.Int64("available", alert.AvailableStock))
	return nil
}
