package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	productID := uuid.New()
	warehouseID := uuid.New()

	tests := []struct {
		name        string
		err         error
		status      int
		code        string
		message     string
		wantContext bool
	}{
		{
			name:    "not found",
			err:     shared.ErrNotFound.WithMessage("Order not found"),
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "Order not found",
		},
		{
			name:        "insufficient stock carries quantities",
			err:         fmt.Errorf("allocate: %w", inventory.NewInsufficientStockError(productID, warehouseID, 15, 5)),
			status:      http.StatusUnprocessableEntity,
			code:        "INSUFFICIENT_STOCK",
			message:     "Insufficient stock available",
			wantContext: true,
		},
		{
			name:    "order not confirmable",
			err:     trade.ErrOrderNotConfirmable,
			status:  http.StatusConflict,
			code:    "ORDER_NOT_CONFIRMABLE",
			message: trade.ErrOrderNotConfirmable.Message,
		},
		{
			name:    "integrity alarm hides the detail",
			err:     fmt.Errorf("%w: batch %s short by 3", inventory.ErrInventoryInconsistency, uuid.New()),
			status:  http.StatusInternalServerError,
			code:    "INVENTORY_INCONSISTENCY",
			message: inventory.ErrInventoryInconsistency.Message,
		},
		{
			name:    "unknown error becomes generic",
			err:     errors.New("pq: connection refused to 10.0.0.3"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_ERROR",
			message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine()
			h := &BaseHandler{}
			r.GET("/x", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := perform(r, http.MethodGet, "/x", "")
			env := decode(t, w)

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, tt.message, env.Error.Message)
			assert.Equal(t, "req-test", env.Error.RequestID)
			assert.NotContains(t, w.Body.String(), "10.0.0.3")
			if tt.wantContext {
				assert.EqualValues(t, 5, env.Error.Context["available"])
				assert.EqualValues(t, 15, env.Error.Context["requested"])
				assert.Equal(t, warehouseID.String(), env.Error.Context["warehouse_id"])
			} else {
				assert.Nil(t, env.Error.Context)
			}
		})
	}
}

func TestHandleError_CheckoutLine(t *testing.T) {
	productID := uuid.New()
	warehouseID := uuid.New()
	err := &trade.CheckoutLineError{
		Line:        2,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Requested:   8,
		Err:         inventory.NewInsufficientStockError(productID, warehouseID, 8, 3),
	}

	r := newEngine()
	h := &BaseHandler{}
	r.GET("/x", func(c *gin.Context) { h.HandleError(c, err) })
	w := perform(r, http.MethodGet, "/x", "")
	env := decode(t, w)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.EqualValues(t, 2, env.Error.Context["line"])
	assert.EqualValues(t, 3, env.Error.Context["available"])
	assert.Equal(t, productID.String(), env.Error.Context["product_id"])
}

func TestParseID(t *testing.T) {
	r := newEngine()
	h := &BaseHandler{}
	r.GET("/things/:id", func(c *gin.Context) {
		if _, ok := h.parseID(c, "id"); ok {
			h.Success(c, "ok")
		}
	})

	w := perform(r, http.MethodGet, "/things/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodGet, "/things/42", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, w).Error.Code)
}
