package trade

import (
	"fmt"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// Trade error codes
const (
	CodeOrderNotConfirmable  = "ORDER_NOT_CONFIRMABLE"
	CodeOrderNotCancellable  = "ORDER_NOT_CANCELLABLE"
	CodeCartNotOpen          = "CART_NOT_OPEN"
	CodeEmptyCart            = "EMPTY_CART"
	CodeProductNotSellable   = catalog.CodeProductNotSellable
	CodeInvalidCustomer      = "INVALID_CUSTOMER"
	CodeWarehouseUnavailable = catalog.CodeWarehouseUnavailable
)

var (
	ErrOrderNotConfirmable  = shared.NewDomainError(CodeOrderNotConfirmable, "Order is not pending and cannot be confirmed")
	ErrOrderNotCancellable  = shared.NewDomainError(CodeOrderNotCancellable, "Order is not pending and cannot be cancelled")
	ErrCartNotOpen          = shared.NewDomainError(CodeCartNotOpen, "Cart has already been checked out")
	ErrEmptyCart            = shared.NewDomainError(CodeEmptyCart, "Cart has no items")
	ErrProductNotSellable   = catalog.ErrProductNotSellable
	ErrInvalidCustomer      = shared.NewDomainError(CodeInvalidCustomer, "Customer data is incomplete")
	ErrWarehouseUnavailable = catalog.ErrWarehouseUnavailable
)

// CheckoutLineError reports which cart line stopped a checkout. The whole
// checkout has been rolled back when this is returned.
type CheckoutLineError struct {
	Line        int
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Requested   int64
	Err         error
}

func (e *CheckoutLineError) Error() string {
	return fmt.Sprintf("checkout line %d (product %s, warehouse %s, quantity %d): %v",
		e.Line, e.ProductID, e.WarehouseID, e.Requested, e.Err)
}

func (e *CheckoutLineError) Unwrap() error {
	return e.Err
}
