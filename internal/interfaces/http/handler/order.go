package handler

import (
	"context"

	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderService is what the order and sale endpoints need
type OrderService interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*tradeapp.OrderResponse, error)
	GetSale(ctx context.Context, saleID uuid.UUID) (*tradeapp.SaleResponse, error)
	GetSaleByOrder(ctx context.Context, orderID uuid.UUID) (*tradeapp.SaleResponse, error)
	ConfirmOrder(ctx context.Context, orderID uuid.UUID, req tradeapp.ConfirmOrderRequest) (*tradeapp.SaleResponse, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*tradeapp.OrderResponse, error)
}

// OrderHandler handles order and sale endpoints
type OrderHandler struct {
	BaseHandler
	orders OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Get returns an order with its lines and batch allocations
// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Confirm records payment and converts the order into a sale
// POST /orders/:id/confirm
func (h *OrderHandler) Confirm(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	sale, err := h.orders.ConfirmOrder(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// Cancel releases the order's reservation back to its batches
// POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.CancelOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetSaleForOrder returns the sale a converted order produced
// GET /orders/:id/sale
func (h *OrderHandler) GetSaleForOrder(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	sale, err := h.orders.GetSaleByOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// GetSale returns a sale
// GET /sales/:id
func (h *OrderHandler) GetSale(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	sale, err := h.orders.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}
