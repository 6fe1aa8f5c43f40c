package inventory

import (
	"sort"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchConsumption records how many units were drawn from one batch.
// Sequence is the position of the batch in the FIFO walk, starting at 1.
type BatchConsumption struct {
	BatchID           uuid.UUID
	Quantity          int64
	UnitCost          decimal.Decimal
	DistributionPrice decimal.Decimal
	Sequence          int
}

// Cost returns quantity times unit cost
func (c BatchConsumption) Cost() decimal.Decimal {
	return c.UnitCost.Mul(decimal.NewFromInt(c.Quantity))
}

// AllocationResult is the outcome of allocating stock for one
// (product, warehouse, quantity) request.
type AllocationResult struct {
	ProductID           uuid.UUID
	WarehouseID         uuid.UUID
	Quantity            int64
	Consumptions        []BatchConsumption
	TotalCost           decimal.Decimal
	WeightedAverageCost decimal.Decimal
}

// NewAllocationResult builds a result and derives its cost figures
func NewAllocationResult(productID, warehouseID uuid.UUID, consumptions []BatchConsumption) *AllocationResult {
	var qty int64
	total := decimal.Zero
	for _, c := range consumptions {
		qty += c.Quantity
		total = total.Add(c.Cost())
	}
	return &AllocationResult{
		ProductID:           productID,
		WarehouseID:         warehouseID,
		Quantity:            qty,
		Consumptions:        consumptions,
		TotalCost:           shared.RoundMoney(total),
		WeightedAverageCost: shared.WeightedAverage(total, qty),
	}
}

// WeightedDistributionPrice returns the quantity-weighted distribution price
// of the consumed batches
func (r *AllocationResult) WeightedDistributionPrice() decimal.Decimal {
	total := decimal.Zero
	for _, c := range r.Consumptions {
		total = total.Add(c.DistributionPrice.Mul(decimal.NewFromInt(c.Quantity)))
	}
	return shared.WeightedAverage(total, r.Quantity)
}

// SortFIFO orders batches oldest first: by purchase date, then creation order
func SortFIFO(batches []*PurchaseBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		return fifoLess(batches[i], batches[j])
	})
}

// PlanFIFO computes which batches would supply quantity units without
// mutating them. Batches that are not consumable are skipped. It fails with
// ErrInventoryInconsistency when the batches cannot cover the request.
func PlanFIFO(batches []*PurchaseBatch, quantity int64) ([]BatchConsumption, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	ordered := make([]*PurchaseBatch, 0, len(batches))
	for _, b := range batches {
		if b.IsConsumable() {
			ordered = append(ordered, b)
		}
	}
	SortFIFO(ordered)

	remaining := quantity
	plan := make([]BatchConsumption, 0, len(ordered))
	for _, b := range ordered {
		if remaining == 0 {
			break
		}
		take := min(b.QuantityAvailable, remaining)
		plan = append(plan, BatchConsumption{
			BatchID:           b.ID,
			Quantity:          take,
			UnitCost:          b.PurchasePrice,
			DistributionPrice: b.DistributionPrice,
			Sequence:          len(plan) + 1,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil, inconsistency("active batches hold %d of %d requested units", quantity-remaining, quantity)
	}
	return plan, nil
}

// Allocation is the full effect of one allocation: the result returned to
// callers, the batches that changed and the movements to append.
type Allocation struct {
	Result    *AllocationResult
	Batches   []*PurchaseBatch
	Movements []*StockMovement
}

// Release is the full effect of reversing an allocation
type Release struct {
	Quantity  int64
	Batches   []*PurchaseBatch
	Movements []*StockMovement
}

// StockAllocator applies FIFO allocation to a locked ledger row and its
// batches. It is pure: loading, locking and persisting are the caller's job.
type StockAllocator struct{}

// NewStockAllocator creates a new StockAllocator
func NewStockAllocator() *StockAllocator {
	return &StockAllocator{}
}

// Allocate reserves quantity units on item, drawing them from batches oldest
// first. On error nothing observable has been persisted, but item and batches
// may have been partially mutated and must be discarded.
func (a *StockAllocator) Allocate(item *InventoryItem, batches []*PurchaseBatch, quantity int64, ref StockReference) (*Allocation, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !item.CanReserve(quantity) {
		return nil, NewInsufficientStockError(item.ProductID, item.WarehouseID, quantity, item.AvailableStock)
	}

	plan, err := PlanFIFO(batches, quantity)
	if err != nil {
		return nil, err
	}

	byID := indexBatches(batches)
	touched := make([]*PurchaseBatch, 0, len(plan))
	movements := make([]*StockMovement, 0, len(plan))
	for _, c := range plan {
		b := byID[c.BatchID]
		if err := b.Consume(c.Quantity); err != nil {
			return nil, err
		}
		touched = append(touched, b)
		movements = append(movements, NewStockMovement(MovementOut, b, c.Quantity, c.UnitCost, ref))
	}

	if err := item.Reserve(quantity); err != nil {
		return nil, err
	}

	return &Allocation{
		Result:    NewAllocationResult(item.ProductID, item.WarehouseID, plan),
		Batches:   touched,
		Movements: movements,
	}, nil
}

// Release reverses consumptions recorded by an earlier Allocate. Batches are
// restored in reverse sequence order and the reserved units go back to
// available stock.
func (a *StockAllocator) Release(item *InventoryItem, batches []*PurchaseBatch, consumptions []BatchConsumption, ref StockReference) (*Release, error) {
	if len(consumptions) == 0 {
		return nil, ErrInvalidQuantity
	}

	ordered := make([]BatchConsumption, len(consumptions))
	copy(ordered, consumptions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Sequence > ordered[j].Sequence
	})

	byID := indexBatches(batches)
	var qty, withdrawn int64
	touched := make([]*PurchaseBatch, 0, len(ordered))
	movements := make([]*StockMovement, 0, len(ordered))
	for _, c := range ordered {
		b, ok := byID[c.BatchID]
		if !ok {
			return nil, inconsistency("batch %s recorded in allocation no longer exists", c.BatchID)
		}
		if b.ProductID != item.ProductID || b.WarehouseID != item.WarehouseID {
			return nil, inconsistency("batch %s does not belong to product %s in warehouse %s",
				b.ID, item.ProductID, item.WarehouseID)
		}
		if err := b.Restore(c.Quantity); err != nil {
			return nil, err
		}
		qty += c.Quantity
		if b.Status == BatchStatusInactive {
			withdrawn += c.Quantity
		}
		touched = append(touched, b)
		movements = append(movements, NewStockMovement(MovementIn, b, c.Quantity, c.UnitCost, ref))
	}

	if err := item.Release(qty); err != nil {
		return nil, err
	}
	// Units returned to an inactive batch stay out of rotation.
	if withdrawn > 0 {
		if err := item.Withdraw(withdrawn); err != nil {
			return nil, err
		}
	}

	return &Release{Quantity: qty, Batches: touched, Movements: movements}, nil
}

func indexBatches(batches []*PurchaseBatch) map[uuid.UUID]*PurchaseBatch {
	byID := make(map[uuid.UUID]*PurchaseBatch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}
	return byID
}
