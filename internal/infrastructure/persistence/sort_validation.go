package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// InventoryItemSortFields contains allowed sort fields for ledger rows
var InventoryItemSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"available_stock": true,
	"reserved_stock":  true,
}

// PurchaseBatchSortFields contains allowed sort fields for batch listings.
// FIFO order is always applied as the tie-breaker.
var PurchaseBatchSortFields = map[string]bool{
	"purchase_date":      true,
	"created_at":         true,
	"quantity_available": true,
	"expiry_date":        true,
}

// StockMovementSortFields contains allowed sort fields for the movement log
var StockMovementSortFields = map[string]bool{
	"created_at": true,
	"quantity":   true,
}
