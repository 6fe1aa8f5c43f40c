package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/infrastructure/cache"
	"github.com/erp/fulfillment/internal/infrastructure/config"
	"github.com/erp/fulfillment/internal/infrastructure/event"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/infrastructure/persistence"
	"github.com/erp/fulfillment/internal/infrastructure/telemetry"
	"github.com/erp/fulfillment/internal/interfaces/http/handler"
	"github.com/erp/fulfillment/internal/interfaces/http/middleware"
	"github.com/erp/fulfillment/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first so the logger can tee into the OTLP logs pipeline
	bootLog, err := logger.New(logConfig(cfg))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	log, err := logger.NewWithCore(logConfig(cfg), providers.ZapCore(zapcore.InfoLevel))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting fulfillment service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	profiler, err := telemetry.NewProfiler(cfg.Telemetry.ProfilingEnabled, cfg.Telemetry.PyroscopeAddress, cfg.Telemetry.ServiceName, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.SpanProfiles {
		providers.EnableSpanProfiles()
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db, err := persistence.NewDatabase(ctx, &cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	meter := providers.Meter("fulfillment")
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBInstrumentationConfig{
		Tracing:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        db.Driver,
		Meter:           meter,
	}, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	if sqlDB, err := db.SQL(); err == nil {
		if err := telemetry.RegisterPoolMetrics(meter, sqlDB); err != nil {
			log.Warn("Failed to register pool metrics", zap.Error(err))
		}
	}

	// Stock snapshot cache
	snapshots, err := cache.NewStockSnapshotCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithDefaultTTL(cfg.Allocation.SnapshotCacheTTL),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to create stock snapshot cache", zap.Error(err))
	}

	// Event bus
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(inventoryapp.NewLowStockHandler(log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log)),
		inventory.EventTypeLowStock)
	bus.Subscribe(event.NewLoggingHandler(log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Business metrics
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             meter,
		Logger:            log,
		InventoryProvider: telemetry.NewGormInventoryMetricsProvider(db.DB),
		LowStockThreshold: cfg.Allocation.LowStockThreshold,
	})
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	businessMetrics.StartPeriodicCollection(ctx, cfg.Allocation.LowStockThreshold, cfg.Telemetry.MetricsInterval)

	// Services
	repos := persistence.NewRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB).WithLockTimeout(cfg.Allocation.LockTimeout)

	stock := inventoryapp.NewAllocationService(repos.Inventory, repos.Batches, repos.Movements, repos.Catalog, scope)
	stock.SetEventPublisher(bus)
	stock.SetSnapshotCache(snapshots, cfg.Allocation.SnapshotCacheTTL)
	stock.SetBusinessMetrics(businessMetrics)
	stock.SetLowStockThreshold(cfg.Allocation.LowStockThreshold)

	carts := tradeapp.NewCartService(repos.Carts, repos.Catalog, stock, scope.Trade(), cfg.Allocation.DefaultCurrency)
	carts.SetBusinessMetrics(businessMetrics)
	orders := tradeapp.NewOrderService(repos.Orders, repos.Sales, repos.Catalog, stock, scope.Trade())
	orders.SetBusinessMetrics(businessMetrics)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	engine, err := router.NewEngine(router.Options{
		Logger:           log,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   providers.TracingEnabled(),
		ProfilingEnabled: profiler.IsEnabled(),
		Metrics:          middleware.NewHTTPMetrics("fulfillment", registry),
		CORS:             cors,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
	}, router.Handlers{
		Inventory: handler.NewInventoryHandler(stock),
		Carts:     handler.NewCartHandler(carts),
		Orders:    handler.NewOrderHandler(orders),
		System: handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.HealthChecker{
			"database": db,
		}),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	businessMetrics.Stop()
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if err := snapshots.Close(); err != nil {
		log.Warn("Error closing stock snapshot cache", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func logConfig(cfg *config.Config) *logger.Config {
	return &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}
