package handler

import (
	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	"github.com/google/uuid"
)

// Query strings are bound into string fields and validated as UUIDs, then
// converted; gin's form binding cannot fill uuid.UUID directly.

type stockQuery struct {
	ProductID   string `form:"product_id" binding:"required,uuid"`
	WarehouseID string `form:"warehouse_id" binding:"required,uuid"`
}

func (q stockQuery) ids() (uuid.UUID, uuid.UUID) {
	return uuid.MustParse(q.ProductID), uuid.MustParse(q.WarehouseID)
}

type pageQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"max=50"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

type batchQuery struct {
	stockQuery
	pageQuery
	Status string `form:"status" binding:"omitempty,oneof=active inactive depleted"`
}

func (q batchQuery) filter() inventoryapp.BatchListFilter {
	productID, warehouseID := q.ids()
	return inventoryapp.BatchListFilter{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Status:      q.Status,
		Page:        q.Page,
		PageSize:    q.PageSize,
		OrderBy:     q.OrderBy,
		OrderDir:    q.OrderDir,
	}
}

type movementQuery struct {
	pageQuery
	ProductID     string `form:"product_id" binding:"omitempty,uuid"`
	WarehouseID   string `form:"warehouse_id" binding:"omitempty,uuid"`
	ReferenceType string `form:"reference_type" binding:"omitempty,oneof=purchase order order_cancel sale adjustment"`
	ReferenceID   string `form:"reference_id" binding:"omitempty,uuid"`
}

func (q movementQuery) filter() inventoryapp.MovementListFilter {
	return inventoryapp.MovementListFilter{
		ProductID:     optionalID(q.ProductID),
		WarehouseID:   optionalID(q.WarehouseID),
		ReferenceType: q.ReferenceType,
		ReferenceID:   optionalID(q.ReferenceID),
		Page:          q.Page,
		PageSize:      q.PageSize,
		OrderBy:       q.OrderBy,
		OrderDir:      q.OrderDir,
	}
}

func optionalID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}
