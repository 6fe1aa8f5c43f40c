package router

import (
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/interfaces/http/handler"
	"github.com/erp/fulfillment/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers are the endpoint groups the API serves
type Handlers struct {
	Inventory *handler.InventoryHandler
	Carts     *handler.CartHandler
	Orders    *handler.OrderHandler
	System    *handler.SystemHandler
}

// Options configures the engine's middleware chain
type Options struct {
	Logger           *zap.Logger
	ServiceName      string
	TracingEnabled   bool
	ProfilingEnabled bool
	Metrics          *middleware.HTTPMetrics
	CORS             middleware.CORSConfig
	MaxBodySize      int64
	TrustedProxies   []string
}

// NewEngine builds the gin engine with the full middleware chain, the
// /api/v1 resources, /health and /metrics.
func NewEngine(opts Options, h Handlers) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	// request ID first so every later layer can read it
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(opts.Logger),
		middleware.Tracing(opts.ServiceName, opts.TracingEnabled),
		middleware.SpanErrorMarker(),
		middleware.Profiling(opts.ProfilingEnabled),
		logger.GinMiddleware(opts.Logger),
	)
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.Middleware())
	}
	engine.Use(middleware.Secure(), middleware.CORSWithConfig(opts.CORS))
	if opts.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.MaxBodySize))
	}

	engine.NoRoute(h.System.NoRoute)
	engine.NoMethod(h.System.NoMethod)
	engine.GET("/health", h.System.Health)
	if opts.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	NewRouter(engine, WithAPIVersion("v1")).
		Register(inventoryRoutes(h.Inventory), cartRoutes(h.Carts), orderRoutes(h.Orders), saleRoutes(h.Orders)).
		Setup()

	return engine, nil
}

func inventoryRoutes(h *handler.InventoryHandler) *DomainGroup {
	return NewDomainGroup("inventory", "/inventory").
		POST("/replenish", h.Replenish).
		POST("/allocate", h.Allocate).
		GET("/stock", h.GetStock).
		GET("/products/:id/stock", h.ListProductStock).
		GET("/batches", h.ListBatches).
		POST("/batches/:id/deactivate", h.DeactivateBatch).
		POST("/batches/:id/reactivate", h.ReactivateBatch).
		GET("/movements", h.ListMovements).
		GET("/consistency", h.CheckConsistency)
}

func cartRoutes(h *handler.CartHandler) *DomainGroup {
	return NewDomainGroup("carts", "/carts").
		POST("", h.Create).
		GET("/:id", h.Get).
		PUT("/:id/items", h.SetItem).
		POST("/:id/checkout", h.Checkout)
}

func orderRoutes(h *handler.OrderHandler) *DomainGroup {
	return NewDomainGroup("orders", "/orders").
		GET("/:id", h.Get).
		GET("/:id/sale", h.GetSaleForOrder).
		POST("/:id/confirm", h.Confirm).
		POST("/:id/cancel", h.Cancel)
}

func saleRoutes(h *handler.OrderHandler) *DomainGroup {
	return NewDomainGroup("sales", "/sales").
		GET("/:id", h.GetSale)
}
