package domain

import "strings"

// ItemFilter narrows a full inventory listing. Zero value matches everything.
type ItemFilter struct {
	// Query is matched case-insensitively as a substring of name or category.
	Query string
	// Category, when set, must match the item category exactly.
	Category string
	// LowStockOnly keeps only items at or below their restock threshold.
	LowStockOnly bool
}

// Matches reports whether the item passes the filter.
func (f ItemFilter) Matches(item Item) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		name := strings.ToLower(item.Name)
		category := strings.ToLower(item.Category)
		if !strings.Contains(name, q) && !strings.Contains(category, q) {
			return false
		}
	}
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.LowStockOnly && !item.LowStock() {
		return false
	}
	return true
}
