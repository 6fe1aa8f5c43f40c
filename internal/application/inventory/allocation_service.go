package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogReader resolves the references stock operations are made against
type CatalogReader interface {
	catalog.ProductReader
	FindWarehouse(ctx context.Context, id uuid.UUID) (*catalog.Warehouse, error)
}

// AllocationService handles stock receipt, allocation and ledger queries
type AllocationService struct {
	catalog           CatalogReader
	inventoryRepo     inventory.InventoryItemRepository
	batchRepo         inventory.PurchaseBatchRepository
	movementRepo      inventory.StockMovementRepository
	txScope           TransactionScope
	allocator         *inventory.StockAllocator
	snapshots         inventory.StockSnapshotCache
	snapshotTTL       time.Duration
	eventPublisher    shared.EventPublisher
	businessMetrics   *telemetry.BusinessMetrics
	lowStockThreshold int64
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	inventoryRepo inventory.InventoryItemRepository,
	batchRepo inventory.PurchaseBatchRepository,
	movementRepo inventory.StockMovementRepository,
	catalogReader CatalogReader,
	txScope TransactionScope,
) *AllocationService {
	return &AllocationService{
		catalog:       catalogReader,
		inventoryRepo: inventoryRepo,
		batchRepo:     batchRepo,
		movementRepo:  movementRepo,
		txScope:       txScope,
		allocator:     inventory.NewStockAllocator(),
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AllocationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetSnapshotCache enables read-through caching of ledger reads
func (s *AllocationService) SetSnapshotCache(cache inventory.StockSnapshotCache, ttl time.Duration) {
	s.snapshots = cache
	s.snapshotTTL = ttl
}

// SetBusinessMetrics sets the business metrics collector
func (s *AllocationService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLowStockThreshold enables LowStock events below threshold units
func (s *AllocationService) SetLowStockThreshold(threshold int64) {
	s.lowStockThreshold = threshold
}

// Allocator returns the allocator used inside units of work
func (s *AllocationService) Allocator() *inventory.StockAllocator {
	return s.allocator
}

// Replenish receives a new purchase batch. The batch, its inbound movement
// and the ledger increment commit together.
func (s *AllocationService) Replenish(ctx context.Context, req ReplenishRequest) (*BatchResponse, error) {
	info := inventory.BatchInfo{PurchaseID: req.PurchaseID, ExpiryDate: req.ExpiryDate}
	if req.PurchaseDate != nil {
		info.PurchaseDate = *req.PurchaseDate
	}

	batch, err := inventory.NewPurchaseBatch(
		req.ProductID, req.WarehouseID, req.Quantity,
		req.PurchasePrice, req.DistributionPrice, info,
	)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.ProductID, req.WarehouseID, false); err != nil {
		return nil, err
	}

	ref := inventory.StockReference{Type: inventory.ReferencePurchase, ID: batch.ID}
	if req.PurchaseID != nil {
		ref.ID = *req.PurchaseID
	}

	effects := NewStockEffects()
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.LockInventory(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}
		if err := item.Receive(batch.QuantityPurchased); err != nil {
			return err
		}
		if err := repos.InventoryRepo().Save(ctx, item); err != nil {
			return err
		}
		movement := inventory.NewStockMovement(inventory.MovementIn, batch, batch.QuantityPurchased, batch.PurchasePrice, ref)
		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}

		effects.Touch(item)
		effects.AddEvents(inventory.NewStockReplenishedEvent(batch))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, effects)

	logger.L(ctx).Info("Batch received",
		append(logger.Stock(req.ProductID, req.WarehouseID),
			zap.String(logger.FieldBatchID, batch.ID.String()),
			logger.Quantity(batch.QuantityPurchased))...)

	response := ToBatchResponse(batch)
	return &response, nil
}

// Allocate reserves quantity units of a product in a warehouse, drawing from
// batches oldest first, in its own unit of work.
func (s *AllocationService) Allocate(ctx context.Context, req AllocateRequest) (*AllocationResponse, error) {
	ref := inventory.StockReference{Type: inventory.ReferenceAdjustment, ID: uuid.New()}
	if req.ReferenceType != "" {
		ref.Type = inventory.ReferenceType(req.ReferenceType)
		if !ref.Type.IsValid() {
			return nil, shared.ErrInvalidInput.WithMessage("Invalid reference type")
		}
	}
	if req.ReferenceID != nil {
		ref.ID = *req.ReferenceID
	}
	if req.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	if err := s.checkReferences(ctx, req.ProductID, req.WarehouseID, true); err != nil {
		s.RecordFailure(ctx, err)
		return nil, err
	}

	start := time.Now()
	effects := NewStockEffects()
	var result *inventory.AllocationResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		result, err = AllocateInScope(ctx, repos, s.allocator, req.ProductID, req.WarehouseID, req.Quantity, ref, effects)
		return err
	})
	if err != nil {
		s.RecordFailure(ctx, err)
		return nil, err
	}

	s.afterCommit(ctx, effects)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordAllocation(ctx, req.WarehouseID, result.Quantity, len(result.Consumptions), time.Since(start))
	}

	response := ToAllocationResponse(result)
	return &response, nil
}

// checkReferences rejects unknown products and unknown or inactive
// warehouses before any ledger row is locked or created. Receipts are
// accepted for inactive products; allocations are not.
func (s *AllocationService) checkReferences(ctx context.Context, productID, warehouseID uuid.UUID, sellable bool) error {
	product, err := s.catalog.FindProduct(ctx, productID)
	if errors.Is(err, shared.ErrNotFound) {
		return catalog.ErrProductNotFound
	}
	if err != nil {
		return err
	}
	if sellable && !product.CanBeSold() {
		return catalog.ErrProductNotSellable
	}

	warehouse, err := s.catalog.FindWarehouse(ctx, warehouseID)
	if errors.Is(err, shared.ErrNotFound) {
		return catalog.ErrWarehouseNotFound
	}
	if err != nil {
		return err
	}
	if !warehouse.IsActive {
		return catalog.ErrWarehouseUnavailable
	}
	return nil
}

// GetStock returns the ledger counters of a pair, reading through the
// snapshot cache when one is configured. A pair that was never stocked reads
// as zero.
func (s *AllocationService) GetStock(ctx context.Context, productID, warehouseID uuid.UUID) (*StockResponse, error) {
	key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}
	if s.snapshots != nil {
		cached, err := s.snapshots.Get(ctx, key)
		if err != nil {
			logger.L(ctx).Warn("Stock snapshot cache read failed", zap.Error(err))
		} else if cached != nil {
			response := ToStockResponse(*cached, true)
			return &response, nil
		}
	}

	snapshot := inventory.StockSnapshot{ProductID: productID, WarehouseID: warehouseID, ReadAt: time.Now()}
	item, err := s.inventoryRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
	switch {
	case err == nil:
		snapshot = inventory.NewStockSnapshot(item)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if s.snapshots != nil {
		if err := s.snapshots.Set(ctx, snapshot, s.snapshotTTL); err != nil {
			logger.L(ctx).Warn("Stock snapshot cache write failed", zap.Error(err))
		}
	}

	response := ToStockResponse(snapshot, false)
	return &response, nil
}

// ListStockByProduct returns the product's ledger rows across warehouses,
// bypassing the cache
func (s *AllocationService) ListStockByProduct(ctx context.Context, productID uuid.UUID) ([]StockResponse, error) {
	items, err := s.inventoryRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	stock := make([]StockResponse, len(items))
	for i := range items {
		stock[i] = ToStockResponse(inventory.NewStockSnapshot(&items[i]), false)
	}
	return stock, nil
}

// ListBatches returns a pair's batches in FIFO order
func (s *AllocationService) ListBatches(ctx context.Context, filter BatchListFilter) ([]BatchResponse, error) {
	domainFilter := pageFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.OrderBy == "" {
		// FIFO order unless the caller asks for another one
		domainFilter.OrderBy = ""
	}
	if filter.Status != "" {
		status := inventory.BatchStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.ErrInvalidInput.WithMessage("Invalid batch status")
		}
		domainFilter.Filters["status"] = string(status)
	}

	batches, err := s.batchRepo.ListByProductAndWarehouse(ctx, filter.ProductID, filter.WarehouseID, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToBatchResponses(batches), nil
}

// ListMovements returns a page of the movement log
func (s *AllocationService) ListMovements(ctx context.Context, filter MovementListFilter) (*shared.Paginated[MovementResponse], error) {
	domainFilter := filter.ToDomainFilter()
	movements, total, err := s.movementRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToMovementResponses(movements), total, domainFilter.Page, domainFilter.Limit())
	return &page, nil
}

// CheckConsistency compares a ledger row with the units held by its active
// batches. Drift is logged as an integrity alarm.
func (s *AllocationService) CheckConsistency(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.ConsistencyReport, error) {
	item, err := s.inventoryRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if errors.Is(err, shared.ErrNotFound) {
		item = &inventory.InventoryItem{ProductID: productID, WarehouseID: warehouseID}
	} else if err != nil {
		return nil, err
	}

	sum, err := s.batchRepo.SumActiveAvailable(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}

	report := inventory.NewConsistencyReport(item, sum)
	if !report.Consistent {
		logger.L(ctx).Error("Inventory integrity alarm",
			append(logger.Stock(productID, warehouseID),
				zap.Int64("available_stock", report.AvailableStock),
				zap.Int64("batch_available", report.BatchAvailable),
				zap.Int64("drift", report.Drift()))...)
		if s.businessMetrics != nil {
			s.businessMetrics.RecordIntegrityAlarm(ctx, inventory.CodeInventoryInconsistency)
		}
	}
	return &report, nil
}

// DeactivateBatch takes a batch out of FIFO rotation. Its remaining units
// leave available stock.
func (s *AllocationService) DeactivateBatch(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	return s.changeBatchStatus(ctx, batchID, func(item *inventory.InventoryItem, b *inventory.PurchaseBatch) error {
		units, err := b.Deactivate()
		if err != nil || units == 0 {
			return err
		}
		return item.Withdraw(units)
	})
}

// ReactivateBatch returns an inactive batch to FIFO rotation
func (s *AllocationService) ReactivateBatch(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	return s.changeBatchStatus(ctx, batchID, func(item *inventory.InventoryItem, b *inventory.PurchaseBatch) error {
		units, err := b.Reactivate()
		if err != nil || units == 0 {
			return err
		}
		return item.Receive(units)
	})
}

func (s *AllocationService) changeBatchStatus(
	ctx context.Context,
	batchID uuid.UUID,
	apply func(item *inventory.InventoryItem, b *inventory.PurchaseBatch) error,
) (*BatchResponse, error) {
	// The unlocked read only finds the pair; the batch is re-read under the lock.
	probe, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	effects := NewStockEffects()
	var batch *inventory.PurchaseBatch
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.LockInventory(ctx, probe.ProductID, probe.WarehouseID)
		if err != nil {
			return err
		}
		batch, err = repos.BatchRepo().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if err := apply(item, batch); err != nil {
			return reportIntegrity(ctx, err, item.ProductID, item.WarehouseID)
		}
		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}
		if err := repos.InventoryRepo().Save(ctx, item); err != nil {
			return err
		}
		effects.Touch(item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, effects)
	response := ToBatchResponse(batch)
	return &response, nil
}

// Invalidate drops cached snapshots of the given pairs
func (s *AllocationService) Invalidate(ctx context.Context, keys ...inventory.StockKey) {
	if s.snapshots == nil || len(keys) == 0 {
		return
	}
	if err := s.snapshots.Invalidate(ctx, keys...); err != nil {
		logger.L(ctx).Warn("Stock snapshot cache invalidation failed", zap.Error(err))
	}
}

// PublishAfterCommit invalidates touched pairs and publishes the collected
// events. It must only be called once the unit of work has committed.
func (s *AllocationService) PublishAfterCommit(ctx context.Context, effects *StockEffects, extra ...shared.DomainEvent) {
	s.Invalidate(ctx, effects.Keys()...)
	events := append(effects.Events(s.lowStockThreshold), extra...)
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish domain events", zap.Error(err), zap.Int("count", len(events)))
	}
}

func (s *AllocationService) afterCommit(ctx context.Context, effects *StockEffects) {
	s.PublishAfterCommit(ctx, effects)
}

// RecordFailure counts a failed allocation and its integrity alarm
func (s *AllocationService) RecordFailure(ctx context.Context, err error) {
	if s.businessMetrics == nil {
		return
	}
	code := errorCode(err)
	s.businessMetrics.RecordAllocationFailure(ctx, code)
	if inventory.IsIntegrityError(err) {
		s.businessMetrics.RecordIntegrityAlarm(ctx, code)
	}
}

func errorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}
