package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidQuantity, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeEmptyCart, http.StatusUnprocessableEntity},
		{ErrCodeOrderNotConfirmable, http.StatusConflict},
		{ErrCodeOrderNotCancellable, http.StatusConflict},
		{ErrCodeCartNotOpen, http.StatusConflict},
		{ErrCodeInsufficientBatchStock, http.StatusInternalServerError},
		{ErrCodeInventoryInconsistency, http.StatusInternalServerError},
		{ErrCodeBodyTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInvalidPrice, http.StatusBadRequest},
		{ErrCodeInvalidCurrency, http.StatusBadRequest},
		{ErrCodeInvalidProduct, http.StatusBadRequest},
		{ErrCodeInvalidWarehouse, http.StatusBadRequest},
		{ErrCodeInvalidSKU, http.StatusBadRequest},
		{ErrCodeInvalidMargin, http.StatusBadRequest},
		{ErrCodeInvalidCode, http.StatusBadRequest},
		{ErrCodeInvalidName, http.StatusBadRequest},
		{ErrCodeProductNotSellable, http.StatusUnprocessableEntity},
		{ErrCodeWarehouseUnavailable, http.StatusUnprocessableEntity},
		// Unknown code should return 500
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestIsServerError(t *testing.T) {
	assert.True(t, IsServerError(ErrCodeInventoryInconsistency))
	assert.False(t, IsServerError(ErrCodeInvalidPrice))
	assert.True(t, IsServerError("SOMETHING_ELSE"))
	assert.False(t, IsServerError(ErrCodeInsufficientStock))
}

func TestErrorResponse_JSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeInsufficientStock, "Only 5 units available", "req-1")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errObj := decoded["error"].(map[string]any)
	assert.Equal(t, "INSUFFICIENT_STOCK", errObj["code"])
	assert.Equal(t, "Only 5 units available", errObj["message"])
	assert.Equal(t, "req-1", errObj["request_id"])
	assert.NotContains(t, errObj, "details")
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse([]ValidationDetail{{Field: "quantity", Message: "must be greater than 0"}}, "req-2")

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-2", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "quantity", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 45, 2, 20, 3)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
