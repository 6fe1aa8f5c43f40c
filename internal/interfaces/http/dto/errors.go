package dto

import "net/http"

// Error codes sent in the response envelope. Domain errors keep their own
// code; the transport adds only the ones it raises itself.

// General error codes
const (
	ErrCodeInternal = "INTERNAL_ERROR"
	ErrCodeUnknown  = "UNKNOWN_ERROR"
)

// Input error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeBodyTooLarge = "REQUEST_TOO_LARGE"
)

// Entity construction error codes, raised by domain constructors on bad
// field values
const (
	ErrCodeInvalidPrice     = "INVALID_PRICE"
	ErrCodeInvalidCurrency  = "INVALID_CURRENCY"
	ErrCodeInvalidProduct   = "INVALID_PRODUCT"
	ErrCodeInvalidWarehouse = "INVALID_WAREHOUSE"
	ErrCodeInvalidSKU       = "INVALID_SKU"
	ErrCodeInvalidMargin    = "INVALID_MARGIN"
	ErrCodeInvalidCode      = "INVALID_CODE"
	ErrCodeInvalidName      = "INVALID_NAME"
)

// Resource error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeRouteNotFound       = "ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
)

// Inventory error codes
const (
	ErrCodeInsufficientStock      = "INSUFFICIENT_STOCK"
	ErrCodeInsufficientBatchStock = "INSUFFICIENT_BATCH_STOCK"
	ErrCodeInventoryInconsistency = "INVENTORY_INCONSISTENCY"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeBatchNotActive         = "BATCH_NOT_ACTIVE"
	ErrCodeInvalidState           = "INVALID_STATE"
)

// Order and cart error codes
const (
	ErrCodeOrderNotConfirmable  = "ORDER_NOT_CONFIRMABLE"
	ErrCodeOrderNotCancellable  = "ORDER_NOT_CANCELLABLE"
	ErrCodeCartNotOpen          = "CART_NOT_OPEN"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeProductNotSellable   = "PRODUCT_NOT_SELLABLE"
	ErrCodeInvalidCustomer      = "INVALID_CUSTOMER"
	ErrCodeWarehouseUnavailable = "WAREHOUSE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeUnknown:  http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidQuantity: http.StatusBadRequest,
	ErrCodeInvalidCustomer: http.StatusBadRequest,
	ErrCodeBodyTooLarge:    http.StatusRequestEntityTooLarge,

	ErrCodeInvalidPrice:     http.StatusBadRequest,
	ErrCodeInvalidCurrency:  http.StatusBadRequest,
	ErrCodeInvalidProduct:   http.StatusBadRequest,
	ErrCodeInvalidWarehouse: http.StatusBadRequest,
	ErrCodeInvalidSKU:       http.StatusBadRequest,
	ErrCodeInvalidMargin:    http.StatusBadRequest,
	ErrCodeInvalidCode:      http.StatusBadRequest,
	ErrCodeInvalidName:      http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeRouteNotFound:       http.StatusNotFound,
	ErrCodeMethodNotAllowed:    http.StatusMethodNotAllowed,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Recoverable business rule errors -> 422 Unprocessable Entity
	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,
	ErrCodeBatchNotActive:       http.StatusUnprocessableEntity,
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:            http.StatusUnprocessableEntity,
	ErrCodeProductNotSellable:   http.StatusUnprocessableEntity,
	ErrCodeWarehouseUnavailable: http.StatusUnprocessableEntity,

	// State transitions that lost a race or were already taken -> 409
	ErrCodeOrderNotConfirmable: http.StatusConflict,
	ErrCodeOrderNotCancellable: http.StatusConflict,
	ErrCodeCartNotOpen:         http.StatusConflict,

	// Ledger and batches disagree; never the client's fault
	ErrCodeInsufficientBatchStock: http.StatusInternalServerError,
	ErrCodeInventoryInconsistency: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsServerError reports whether code maps to a 5xx status
func IsServerError(code string) bool {
	return GetHTTPStatus(code) >= http.StatusInternalServerError
}
