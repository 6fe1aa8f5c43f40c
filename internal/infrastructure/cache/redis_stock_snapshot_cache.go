package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultSnapshotTTL = 30 * time.Second
	stockKeyPrefix     = "stock:"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisStockSnapshotCache implements inventory.StockSnapshotCache on Redis.
// It is shared by every instance of the service.
type RedisStockSnapshotCache struct {
	client     *redis.Client
	logger     *zap.Logger
	defaultTTL time.Duration
	ownsClient bool
}

// RedisCacheOption is a functional option for configuring the Redis cache
type RedisCacheOption func(*RedisStockSnapshotCache)

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisCacheOption {
	return func(c *RedisStockSnapshotCache) {
		c.logger = logger
	}
}

// WithRedisDefaultTTL sets the TTL used when Set is called with zero
func WithRedisDefaultTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisStockSnapshotCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// NewRedisStockSnapshotCache connects to Redis and verifies the connection
func NewRedisStockSnapshotCache(cfg RedisConfig, opts ...RedisCacheOption) (*RedisStockSnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisStockSnapshotCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisStockSnapshotCacheWithClient wraps an existing client. The client
// is not closed by Close.
func NewRedisStockSnapshotCacheWithClient(client *redis.Client, opts ...RedisCacheOption) *RedisStockSnapshotCache {
	c := &RedisStockSnapshotCache{
		client:     client,
		logger:     zap.NewNop(),
		defaultTTL: defaultSnapshotTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// stockCacheKey builds stock:{product_id}:{warehouse_id}
func stockCacheKey(key inventory.StockKey) string {
	return stockKeyPrefix + key.ProductID.String() + ":" + key.WarehouseID.String()
}

// Get returns the cached snapshot or nil on a miss
func (c *RedisStockSnapshotCache) Get(ctx context.Context, key inventory.StockKey) (*inventory.StockSnapshot, error) {
	data, err := c.client.Get(ctx, stockCacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stock snapshot from Redis: %w", err)
	}

	var snapshot inventory.StockSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Warn("Dropping unreadable stock snapshot",
			zap.String("key", stockCacheKey(key)), zap.Error(err))
		_ = c.client.Del(ctx, stockCacheKey(key)).Err()
		return nil, nil
	}
	return &snapshot, nil
}

// Set stores a snapshot with the given TTL
func (c *RedisStockSnapshotCache) Set(ctx context.Context, snapshot inventory.StockSnapshot, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal stock snapshot: %w", err)
	}
	if err := c.client.Set(ctx, stockCacheKey(snapshot.Key()), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set stock snapshot in Redis: %w", err)
	}
	c.logger.Debug("Cached stock snapshot",
		zap.String("key", stockCacheKey(snapshot.Key())),
		zap.Duration("ttl", ttl))
	return nil
}

// Invalidate deletes the given keys in one round trip
func (c *RedisStockSnapshotCache) Invalidate(ctx context.Context, keys ...inventory.StockKey) error {
	if len(keys) == 0 {
		return nil
	}
	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = stockCacheKey(k)
	}
	if err := c.client.Del(ctx, redisKeys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stock snapshots: %w", err)
	}
	return nil
}

// Close closes the client if the cache created it
func (c *RedisStockSnapshotCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ inventory.StockSnapshotCache = (*RedisStockSnapshotCache)(nil)
