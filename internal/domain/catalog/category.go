package catalog

import (
	"strings"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxCategoryDepth bounds ancestor walks when resolving inherited margins
const MaxCategoryDepth = 5

// Category is a node in the product category tree. Margins left unset are
// inherited from the nearest ancestor that sets them.
type Category struct {
	shared.BaseEntity
	Code            string
	Name            string
	ParentID        *uuid.UUID
	MinMarginPct    *decimal.Decimal
	NormalMarginPct *decimal.Decimal
}

// NewCategory creates a new category
func NewCategory(code, name string, parentID *uuid.UUID) (*Category, error) {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Category code must be 1-50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Code:       strings.ToUpper(code),
		Name:       name,
		ParentID:   parentID,
	}, nil
}

// SetMargins sets the category's own margins; nil leaves a margin inherited
func (c *Category) SetMargins(minPct, normalPct *decimal.Decimal) error {
	for _, p := range []*decimal.Decimal{minPct, normalPct} {
		if p != nil && (p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100))) {
			return shared.NewDomainError("INVALID_MARGIN", "Margin percentage must be between 0 and 100")
		}
	}
	if minPct != nil && normalPct != nil && minPct.GreaterThan(*normalPct) {
		return shared.NewDomainError("INVALID_MARGIN", "Minimum margin cannot exceed normal margin")
	}
	c.MinMarginPct = minPct
	c.NormalMarginPct = normalPct
	c.Touch()
	return nil
}

// Margins are a category's effective margin percentages
type Margins struct {
	MinMarginPct    decimal.Decimal `json:"min_margin_pct"`
	NormalMarginPct decimal.Decimal `json:"normal_margin_pct"`
}

// ResolveMargins walks chain from the category itself toward the root and
// takes each margin from the first category that sets it. Unresolved margins
// are zero.
func ResolveMargins(chain []*Category) Margins {
	var m Margins
	var haveMin, haveNormal bool
	for i, c := range chain {
		if i >= MaxCategoryDepth || (haveMin && haveNormal) {
			break
		}
		if !haveMin && c.MinMarginPct != nil {
			m.MinMarginPct = *c.MinMarginPct
			haveMin = true
		}
		if !haveNormal && c.NormalMarginPct != nil {
			m.NormalMarginPct = *c.NormalMarginPct
			haveNormal = true
		}
	}
	return m
}
