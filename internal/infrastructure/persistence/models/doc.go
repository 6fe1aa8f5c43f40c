// Package models contains GORM persistence models that map to database tables.
// Domain types stay free of ORM tags; every model carries ToDomain and
// FromDomain mappers used by the repositories.
//
// Structure:
//   - base.go: shared columns (BaseModel, AggregateModel)
//   - inventory.go: ledger rows, purchase batches, stock movements
//   - catalog.go: read-mostly catalog (categories, products, warehouses, price lists)
//   - trade.go: carts, orders with allocations, sales
package models
