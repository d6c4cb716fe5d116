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

// saleSortFields contains allowed sort fields for sales
var saleSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"customer_name": true,
	"total_amount":  true,
	"paid_amount":   true,
	"completion":    true,
	"payment_state": true,
}

// stockSortFields contains allowed sort fields for stock items
var stockSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"product_name":       true,
	"remaining_quantity": true,
}
