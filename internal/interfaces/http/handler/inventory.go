package handler

import (
	"context"

	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockService is the part of the allocation service the inventory
// endpoints use
type StockService interface {
	Replenish(ctx context.Context, req inventoryapp.ReplenishRequest) (*inventoryapp.BatchResponse, error)
	Allocate(ctx context.Context, req inventoryapp.AllocateRequest) (*inventoryapp.AllocationResponse, error)
	GetStock(ctx context.Context, productID, warehouseID uuid.UUID) (*inventoryapp.StockResponse, error)
	ListStockByProduct(ctx context.Context, productID uuid.UUID) ([]inventoryapp.StockResponse, error)
	ListBatches(ctx context.Context, filter inventoryapp.BatchListFilter) ([]inventoryapp.BatchResponse, error)
	ListMovements(ctx context.Context, filter inventoryapp.MovementListFilter) (*shared.Paginated[inventoryapp.MovementResponse], error)
	CheckConsistency(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.ConsistencyReport, error)
	DeactivateBatch(ctx context.Context, batchID uuid.UUID) (*inventoryapp.BatchResponse, error)
	ReactivateBatch(ctx context.Context, batchID uuid.UUID) (*inventoryapp.BatchResponse, error)
}

// InventoryHandler serves the ledger, batch and movement endpoints
type InventoryHandler struct {
	BaseHandler
	stock StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stock StockService) *InventoryHandler {
	return &InventoryHandler{stock: stock}
}

// Replenish receives a purchase batch
// POST /inventory/replenish
func (h *InventoryHandler) Replenish(c *gin.Context) {
	var req inventoryapp.ReplenishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	batch, err := h.stock.Replenish(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, batch)
}

// Allocate reserves stock FIFO outside of a checkout
// POST /inventory/allocate
func (h *InventoryHandler) Allocate(c *gin.Context) {
	var req inventoryapp.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	result, err := h.stock.Allocate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetStock returns one ledger row
// GET /inventory/stock?product_id=&warehouse_id=
func (h *InventoryHandler) GetStock(c *gin.Context) {
	var q stockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	productID, warehouseID := q.ids()
	stock, err := h.stock.GetStock(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// ListProductStock returns the product's ledger rows in every warehouse
// GET /inventory/products/:id/stock
func (h *InventoryHandler) ListProductStock(c *gin.Context) {
	productID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	stock, err := h.stock.ListStockByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// ListBatches lists the purchase batches of a pair in FIFO order
// GET /inventory/batches
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	var q batchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	batches, err := h.stock.ListBatches(c.Request.Context(), q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// ListMovements pages through the movement log
// GET /inventory/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var q movementQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	page, err := h.stock.ListMovements(c.Request.Context(), q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// CheckConsistency compares a ledger row with its batches
// GET /inventory/consistency
func (h *InventoryHandler) CheckConsistency(c *gin.Context) {
	var q stockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	productID, warehouseID := q.ids()
	report, err := h.stock.CheckConsistency(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// DeactivateBatch takes a batch out of FIFO
// POST /inventory/batches/:id/deactivate
func (h *InventoryHandler) DeactivateBatch(c *gin.Context) {
	h.changeBatch(c, h.stock.DeactivateBatch)
}

// ReactivateBatch puts an inactive batch back into FIFO
// POST /inventory/batches/:id/reactivate
func (h *InventoryHandler) ReactivateBatch(c *gin.Context) {
	h.changeBatch(c, h.stock.ReactivateBatch)
}

func (h *InventoryHandler) changeBatch(c *gin.Context, change func(context.Context, uuid.UUID) (*inventoryapp.BatchResponse, error)) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	batch, err := change(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}
