package catalog

import (
	"sort"
	"strings"

	"github.com/erp/fulfillment/internal/domain/shared"
)

// Warehouse is a stock location
type Warehouse struct {
	shared.BaseEntity
	Code            string
	Name            string
	IsActive        bool
	IsOnline        bool
	IsMain          bool
	PickingPriority int
}

// NewWarehouse creates a new active warehouse
func NewWarehouse(code, name string, isMain bool, pickingPriority int) (*Warehouse, error) {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Warehouse code must be 1-50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Warehouse name cannot be empty")
	}
	return &Warehouse{
		BaseEntity:      shared.NewBaseEntity(),
		Code:            strings.ToUpper(code),
		Name:            name,
		IsActive:        true,
		IsOnline:        true,
		IsMain:          isMain,
		PickingPriority: pickingPriority,
	}, nil
}

// WarehouseCandidate pairs a warehouse with its current available stock
type WarehouseCandidate struct {
	Warehouse      *Warehouse
	AvailableStock int64
}

// SelectWarehouse picks the warehouse that should supply quantity units:
// among active warehouses with enough stock, the main warehouse wins, then
// the lowest picking priority, then the code. It returns nil and the best
// single-warehouse quantity when none can cover the request.
func SelectWarehouse(candidates []WarehouseCandidate, quantity int64) (*Warehouse, int64) {
	eligible := make([]WarehouseCandidate, 0, len(candidates))
	var best int64
	for _, c := range candidates {
		if c.Warehouse == nil || !c.Warehouse.IsActive {
			continue
		}
		best = max(best, c.AvailableStock)
		if c.AvailableStock >= quantity {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil, best
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i].Warehouse, eligible[j].Warehouse
		if a.IsMain != b.IsMain {
			return a.IsMain
		}
		if a.PickingPriority != b.PickingPriority {
			return a.PickingPriority < b.PickingPriority
		}
		return a.Code < b.Code
	})
	return eligible[0].Warehouse, eligible[0].AvailableStock
}
