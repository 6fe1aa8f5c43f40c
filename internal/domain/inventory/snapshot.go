package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StockKey identifies a ledger row
type StockKey struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
}

// Key returns the key of the item's ledger row
func (i *InventoryItem) Key() StockKey {
	return StockKey{ProductID: i.ProductID, WarehouseID: i.WarehouseID}
}

// Less orders keys by product, then warehouse. Ledger rows are always
// locked in this order.
func (k StockKey) Less(other StockKey) bool {
	if k.ProductID != other.ProductID {
		return k.ProductID.String() < other.ProductID.String()
	}
	return k.WarehouseID.String() < other.WarehouseID.String()
}

// StockSnapshot is a point-in-time read of a ledger row
type StockSnapshot struct {
	ProductID      uuid.UUID `json:"product_id"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	AvailableStock int64     `json:"available_stock"`
	ReservedStock  int64     `json:"reserved_stock"`
	Version        int       `json:"version"`
	ReadAt         time.Time `json:"read_at"`
}

// NewStockSnapshot captures the item's counters
func NewStockSnapshot(item *InventoryItem) StockSnapshot {
	return StockSnapshot{
		ProductID:      item.ProductID,
		WarehouseID:    item.WarehouseID,
		AvailableStock: item.AvailableStock,
		ReservedStock:  item.ReservedStock,
		Version:        item.Version,
		ReadAt:         time.Now(),
	}
}

// Key returns the snapshot's ledger key
func (s StockSnapshot) Key() StockKey {
	return StockKey{ProductID: s.ProductID, WarehouseID: s.WarehouseID}
}

// StockSnapshotCache caches ledger reads for advisory checks and queries.
// It is never consulted by allocation, which always reads the locked row.
//
// Cache keys follow the pattern stock:{product_id}:{warehouse_id}.
type StockSnapshotCache interface {
	// Get returns nil, nil on a cache miss
	Get(ctx context.Context, key StockKey) (*StockSnapshot, error)

	// Set stores the snapshot. A zero ttl uses the cache default.
	Set(ctx context.Context, snapshot StockSnapshot, ttl time.Duration) error

	// Invalidate drops the given keys
	Invalidate(ctx context.Context, keys ...StockKey) error

	Close() error
}
