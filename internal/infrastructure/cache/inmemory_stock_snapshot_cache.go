package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryStockSnapshotCache implements inventory.StockSnapshotCache in
// process memory. Suitable for single-instance deployments and tests.
type InMemoryStockSnapshotCache struct {
	entries    sync.Map // map[inventory.StockKey]*cacheEntry[inventory.StockSnapshot]
	defaultTTL time.Duration
	logger     *zap.Logger
	stopCh     chan struct{}
	stopped    int32

	hits   int64
	misses int64
}

// cacheEntry wraps a cached value with its expiration time
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryCacheOption is a functional option for configuring the cache
type InMemoryCacheOption func(*InMemoryStockSnapshotCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryCacheOption {
	return func(c *InMemoryStockSnapshotCache) {
		c.logger = logger
	}
}

// WithInMemoryDefaultTTL sets the TTL used when Set is called with zero
func WithInMemoryDefaultTTL(ttl time.Duration) InMemoryCacheOption {
	return func(c *InMemoryStockSnapshotCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// NewInMemoryStockSnapshotCache creates the cache and starts its cleanup loop
func NewInMemoryStockSnapshotCache(opts ...InMemoryCacheOption) *InMemoryStockSnapshotCache {
	c := &InMemoryStockSnapshotCache{
		defaultTTL: defaultSnapshotTTL,
		logger:     zap.NewNop(),
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()

	return c
}

// Get returns the cached snapshot or nil on a miss
func (c *InMemoryStockSnapshotCache) Get(ctx context.Context, key inventory.StockKey) (*inventory.StockSnapshot, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry[inventory.StockSnapshot])
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			snapshot := entry.value
			return &snapshot, nil
		}
		c.entries.Delete(key)
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores a copy of the snapshot
func (c *InMemoryStockSnapshotCache) Set(ctx context.Context, snapshot inventory.StockSnapshot, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.entries.Store(snapshot.Key(), &cacheEntry[inventory.StockSnapshot]{
		value:     snapshot,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Invalidate drops the given keys
func (c *InMemoryStockSnapshotCache) Invalidate(ctx context.Context, keys ...inventory.StockKey) error {
	for _, k := range keys {
		c.entries.Delete(k)
	}
	return nil
}

// Close stops the cleanup loop. Safe to call more than once.
func (c *InMemoryStockSnapshotCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns hit and miss counters
func (c *InMemoryStockSnapshotCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries, expired ones included
func (c *InMemoryStockSnapshotCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryStockSnapshotCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in stock cache cleanup", zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

func (c *InMemoryStockSnapshotCache) doCleanup() {
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry[inventory.StockSnapshot]).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Removed expired stock snapshots", zap.Int("count", removed))
	}
}

var _ inventory.StockSnapshotCache = (*InMemoryStockSnapshotCache)(nil)
