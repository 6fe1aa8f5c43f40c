package persistence

import "gorm.io/gorm"

// Repositories groups the non-transactional repositories over one handle
type Repositories struct {
	Inventory *GormInventoryItemRepository
	Batches   *GormPurchaseBatchRepository
	Movements *GormStockMovementRepository
	Carts     *GormCartRepository
	Orders    *GormOrderRepository
	Sales     *GormSaleRepository
	Catalog   *GormCatalogRepository
}

// NewRepositories creates every repository over db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Inventory: NewGormInventoryItemRepository(db),
		Batches:   NewGormPurchaseBatchRepository(db),
		Movements: NewGormStockMovementRepository(db),
		Carts:     NewGormCartRepository(db),
		Orders:    NewGormOrderRepository(db),
		Sales:     NewGormSaleRepository(db),
		Catalog:   NewGormCatalogRepository(db),
	}
}
