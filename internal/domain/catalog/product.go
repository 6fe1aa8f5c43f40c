package catalog

import (
	"strings"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// Product is the catalog entry the fulfillment core reads. It is maintained
// elsewhere; the core never mutates it.
type Product struct {
	shared.BaseEntity
	SKU        string
	Name       string
	CategoryID *uuid.UUID
	IsActive   bool
	IsOnline   bool
}

// NewProduct creates a new active product
func NewProduct(sku, name string, categoryID *uuid.UUID) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" || len(sku) > 64 {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU must be 1-64 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        strings.ToUpper(sku),
		Name:       name,
		CategoryID: categoryID,
		IsActive:   true,
		IsOnline:   true,
	}, nil
}

// CanBeSold returns true if the product may be placed in a cart
func (p *Product) CanBeSold() bool {
	return p.IsActive
}
