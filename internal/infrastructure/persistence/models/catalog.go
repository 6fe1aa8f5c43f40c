package models

import (
	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for a product category
type CategoryModel struct {
	BaseModel
	Code            string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string           `gorm:"type:varchar(200);not null"`
	ParentID        *uuid.UUID       `gorm:"type:uuid;index"`
	MinMarginPct    *decimal.Decimal `gorm:"type:decimal(5,2)"`
	NormalMarginPct *decimal.Decimal `gorm:"type:decimal(5,2)"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity:      m.BaseModel.ToDomain(),
		Code:            m.Code,
		Name:            m.Name,
		ParentID:        m.ParentID,
		MinMarginPct:    m.MinMarginPct,
		NormalMarginPct: m.NormalMarginPct,
	}
}

// FromDomain populates the persistence model from a domain Category
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Code = c.Code
	m.Name = c.Name
	m.ParentID = c.ParentID
	m.MinMarginPct = c.MinMarginPct
	m.NormalMarginPct = c.NormalMarginPct
}

// ProductModel is the persistence model for a product
type ProductModel struct {
	BaseModel
	SKU        string     `gorm:"column:sku;type:varchar(64);not null;uniqueIndex"`
	Name       string     `gorm:"type:varchar(200);not null"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index"`
	IsActive   bool       `gorm:"not null;default:true"`
	IsOnline   bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		SKU:        m.SKU,
		Name:       m.Name,
		CategoryID: m.CategoryID,
		IsActive:   m.IsActive,
		IsOnline:   m.IsOnline,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.SKU = p.SKU
	m.Name = p.Name
	m.CategoryID = p.CategoryID
	m.IsActive = p.IsActive
	m.IsOnline = p.IsOnline
}

// WarehouseModel is the persistence model for a warehouse
type WarehouseModel struct {
	BaseModel
	Code            string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string `gorm:"type:varchar(200);not null"`
	IsActive        bool   `gorm:"not null;default:true"`
	IsOnline        bool   `gorm:"not null;default:true"`
	IsMain          bool   `gorm:"not null;default:false"`
	PickingPriority int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the persistence model to a domain Warehouse
func (m *WarehouseModel) ToDomain() *catalog.Warehouse {
	return &catalog.Warehouse{
		BaseEntity:      m.BaseModel.ToDomain(),
		Code:            m.Code,
		Name:            m.Name,
		IsActive:        m.IsActive,
		IsOnline:        m.IsOnline,
		IsMain:          m.IsMain,
		PickingPriority: m.PickingPriority,
	}
}

// FromDomain populates the persistence model from a domain Warehouse
func (m *WarehouseModel) FromDomain(w *catalog.Warehouse) {
	m.FromDomainBaseEntity(w.BaseEntity)
	m.Code = w.Code
	m.Name = w.Name
	m.IsActive = w.IsActive
	m.IsOnline = w.IsOnline
	m.IsMain = w.IsMain
	m.PickingPriority = w.PickingPriority
}

// PriceListItemModel is one price of a price list. A null warehouse_id is
// the list-wide price.
type PriceListItemModel struct {
	BaseModel
	PriceListID uuid.UUID       `gorm:"type:uuid;not null;index:idx_price_list_product,priority:1"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_price_list_product,priority:2"`
	WarehouseID *uuid.UUID      `gorm:"type:uuid"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PriceListItemModel) TableName() string {
	return "price_list_items"
}

// ToDomain converts the persistence model to a domain PriceListItem
func (m *PriceListItemModel) ToDomain() *catalog.PriceListItem {
	return &catalog.PriceListItem{
		BaseEntity:  m.BaseModel.ToDomain(),
		PriceListID: m.PriceListID,
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		Price:       m.Price,
	}
}

// FromDomain populates the persistence model from a domain PriceListItem
func (m *PriceListItemModel) FromDomain(p *catalog.PriceListItem) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.PriceListID = p.PriceListID
	m.ProductID = p.ProductID
	m.WarehouseID = p.WarehouseID
	m.Price = p.Price
}
