package handler

import (
	"errors"
	"net/http"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/interfaces/http/dto"
	"github.com/erp/fulfillment/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errorCodeKey is read by the access log and the tracing middleware
const errorCodeKey = "error_code"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessPage sends a page of results with pagination meta
func (h *BaseHandler) SuccessPage(c *gin.Context, data any, total int64, page, pageSize, totalPages int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize, totalPages))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the status the code maps to
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.Set(errorCodeKey, code)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 INVALID_INPUT response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeInvalidInput, message)
}

// ValidationError answers a failed bind with per-field details
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	c.Set(errorCodeKey, dto.ErrCodeValidation)
	c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(err, middleware.GetRequestID(c)))
}

// HandleError converts an application error into a response. Domain errors
// keep their code and message; anything else becomes a generic 500 so no
// internal text reaches the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	log := logger.GetGinLogger(c)

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		log.Error("Unhandled error", zap.Error(err))
		h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
		return
	}

	code := domainErr.Code
	if dto.IsServerError(code) {
		// integrity alarms were already logged with stock fields by the service
		log.Error("Request failed", zap.String(logger.FieldErrorCode, code), zap.Error(err))
		h.Error(c, code, domainErr.Message)
		return
	}

	resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, middleware.GetRequestID(c))
	resp.Error.Context = errorContext(err)
	c.Set(errorCodeKey, code)
	c.JSON(dto.GetHTTPStatus(code), resp)
}

// errorContext lifts the structured fields of recoverable errors so a
// client can tell which line failed and how much stock there was.
func errorContext(err error) map[string]any {
	ctx := map[string]any{}

	var lineErr *trade.CheckoutLineError
	if errors.As(err, &lineErr) {
		ctx["line"] = lineErr.Line
		ctx["product_id"] = lineErr.ProductID
		ctx["warehouse_id"] = lineErr.WarehouseID
		ctx["requested"] = lineErr.Requested
	}

	var stockErr *inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		ctx["product_id"] = stockErr.ProductID
		ctx["warehouse_id"] = stockErr.WarehouseID
		ctx["requested"] = stockErr.Requested
		ctx["available"] = stockErr.Available
	}

	if len(ctx) == 0 {
		return nil
	}
	return ctx
}

// parseID reads a UUID path parameter, answering 400 when it is malformed
func (h *BaseHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}
