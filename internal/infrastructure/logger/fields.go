package logger

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Field keys shared by every component that logs stock or order activity.
const (
	FieldProductID   = "product_id"
	FieldWarehouseID = "warehouse_id"
	FieldBatchID     = "batch_id"
	FieldOrderID     = "order_id"
	FieldCartID      = "cart_id"
	FieldQuantity    = "quantity"
	FieldErrorCode   = "error_code"
)

// Stock returns the fields identifying a ledger row
func Stock(productID, warehouseID uuid.UUID) []zap.Field {
	return []zap.Field{
		zap.String(FieldProductID, productID.String()),
		zap.String(FieldWarehouseID, warehouseID.String()),
	}
}

// Order identifies an order
func Order(orderID uuid.UUID) zap.Field {
	return zap.String(FieldOrderID, orderID.String())
}

// Cart identifies a cart
func Cart(cartID uuid.UUID) zap.Field {
	return zap.String(FieldCartID, cartID.String())
}

// Quantity is a unit count
func Quantity(qty int64) zap.Field {
	return zap.Int64(FieldQuantity, qty)
}
