package cache

import (
	"fmt"
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StockSnapshotCacheFactory creates snapshot caches based on configuration
type StockSnapshotCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	defaultTTL            time.Duration
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*StockSnapshotCacheFactory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *StockSnapshotCacheFactory) {
		f.logger = logger
	}
}

// WithDefaultTTL sets the default snapshot TTL
func WithDefaultTTL(ttl time.Duration) FactoryOption {
	return func(f *StockSnapshotCacheFactory) {
		f.defaultTTL = ttl
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *StockSnapshotCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStockSnapshotCacheFactory creates a new factory
func NewStockSnapshotCacheFactory(cfg config.RedisConfig, opts ...FactoryOption) *StockSnapshotCacheFactory {
	f := &StockSnapshotCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		defaultTTL:            defaultSnapshotTTL,
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-backed cache
func (f *StockSnapshotCacheFactory) CreateRedisCache() (*RedisStockSnapshotCache, error) {
	c, err := NewRedisStockSnapshotCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, WithRedisLogger(f.logger), WithRedisDefaultTTL(f.defaultTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis stock cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates a process-local cache
func (f *StockSnapshotCacheFactory) CreateInMemoryCache() *InMemoryStockSnapshotCache {
	return NewInMemoryStockSnapshotCache(WithInMemoryLogger(f.logger), WithInMemoryDefaultTTL(f.defaultTTL))
}

// CreateCache returns the Redis cache when Redis is enabled and reachable,
// otherwise the in-memory cache if fallback is allowed.
func (f *StockSnapshotCacheFactory) CreateCache() (inventory.StockSnapshotCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory stock snapshot cache")
		return f.CreateInMemoryCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("Using Redis stock snapshot cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for stock cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stock snapshot cache. "+
		"Snapshots are not shared across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
