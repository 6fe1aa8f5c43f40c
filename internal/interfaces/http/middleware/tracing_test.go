package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(RequestID(), Tracing("fulfillment-test", true), SpanErrorMarker())
	r.POST("/orders/:id/confirm", func(c *gin.Context) {
		c.Set("error_code", "ORDER_NOT_CONFIRMABLE")
		c.Status(http.StatusConflict)
	})
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodPost, "/orders/1/confirm", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	confirm := spans[0]
	assert.Equal(t, "POST /orders/:id/confirm", confirm.Name())
	assert.Contains(t, confirm.Attributes(), attribute.String("request_id", "req-7"))
	assert.Contains(t, confirm.Attributes(), attribute.String("error.code", "ORDER_NOT_CONFIRMABLE"))
	assert.Equal(t, codes.Unset, confirm.Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestTracing_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(Tracing("fulfillment-test", false))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
