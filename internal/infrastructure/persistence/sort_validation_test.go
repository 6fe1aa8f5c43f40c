package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
		{"invalid value returns DESC", "sideways", "DESC"},
		{"injection attempt returns DESC", "ASC; DROP TABLE purchase_batches;--", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "purchase_date"},
		{"whitelisted field is kept", "quantity_available", "quantity_available"},
		{"unknown column returns default", "purchase_price", "purchase_date"},
		{"case sensitive", "PURCHASE_DATE", "purchase_date"},
		{"injection attempt returns default", "id; DELETE FROM inventory_items", "purchase_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, PurchaseBatchSortFields, "purchase_date"))
		})
	}
}
