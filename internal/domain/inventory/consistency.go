package inventory

import "github.com/google/uuid"

// ConsistencyReport compares a ledger row against its batches
type ConsistencyReport struct {
	ProductID      uuid.UUID `json:"product_id"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	AvailableStock int64     `json:"available_stock"`
	ReservedStock  int64     `json:"reserved_stock"`
	BatchAvailable int64     `json:"batch_available"`
	Consistent     bool      `json:"consistent"`
}

// NewConsistencyReport builds a report. The ledger is consistent when its
// available stock equals the units held by active batches.
func NewConsistencyReport(item *InventoryItem, batchAvailable int64) ConsistencyReport {
	return ConsistencyReport{
		ProductID:      item.ProductID,
		WarehouseID:    item.WarehouseID,
		AvailableStock: item.AvailableStock,
		ReservedStock:  item.ReservedStock,
		BatchAvailable: batchAvailable,
		Consistent:     item.AvailableStock == batchAvailable && item.AvailableStock >= 0 && item.ReservedStock >= 0,
	}
}

// Drift returns ledger available minus batch available
func (r ConsistencyReport) Drift() int64 {
	return r.AvailableStock - r.BatchAvailable
}
