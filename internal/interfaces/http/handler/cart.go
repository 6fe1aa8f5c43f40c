package handler

import (
	"context"

	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartService is what the cart endpoints need
type CartService interface {
	CreateCart(ctx context.Context, req tradeapp.CreateCartRequest) (*tradeapp.CartResponse, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*tradeapp.CartResponse, error)
	AddOrUpdateItem(ctx context.Context, cartID uuid.UUID, req tradeapp.SetCartItemRequest) (*tradeapp.CartResponse, error)
	Checkout(ctx context.Context, cartID uuid.UUID, req tradeapp.CheckoutRequest) (*tradeapp.OrderResponse, error)
}

// CartHandler handles cart endpoints
type CartHandler struct {
	BaseHandler
	carts CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// Create opens a cart
// POST /carts
func (h *CartHandler) Create(c *gin.Context) {
	var req tradeapp.CreateCartRequest
	// an empty body opens a cart with the default currency
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.ValidationError(c, err)
			return
		}
	}
	cart, err := h.carts.CreateCart(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cart)
}

// Get returns a cart with its lines
// GET /carts/:id
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	cart, err := h.carts.GetCart(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// SetItem upserts a line; quantity 0 removes it
// PUT /carts/:id/items
func (h *CartHandler) SetItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.SetCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	cart, err := h.carts.AddOrUpdateItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Checkout allocates every line and creates a pending order
// POST /carts/:id/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var payload dto.CheckoutPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.ValidationError(c, err)
		return
	}
	order, err := h.carts.Checkout(c.Request.Context(), id, dto.NormalizeCustomerPayload(payload))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}
