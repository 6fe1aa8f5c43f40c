package catalog

import "github.com/erp/fulfillment/internal/domain/shared"

const (
	CodeProductNotSellable   = "PRODUCT_NOT_SELLABLE"
	CodeWarehouseUnavailable = "WAREHOUSE_UNAVAILABLE"
)

var (
	ErrProductNotFound      = shared.ErrNotFound.WithMessage("Product not found")
	ErrWarehouseNotFound    = shared.ErrNotFound.WithMessage("Warehouse not found")
	ErrProductNotSellable   = shared.NewDomainError(CodeProductNotSellable, "Product is inactive")
	ErrWarehouseUnavailable = shared.NewDomainError(CodeWarehouseUnavailable, "Warehouse is inactive")
)
