package inventory

import (
	"strings"

	"stockroom/internal/domain"
)

// CreateItemInput holds user-supplied fields for a new item.
type CreateItemInput struct {
	Name             string
	Category         string
	Quantity         int
	Price            float64
	RestockThreshold int
}

// normalize trims text fields, applies defaults, and clamps numeric fields
// to their non-negative ranges. Returns a validation error for a blank name.
func (in *CreateItemInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.NewValidationError("name", "must not be blank")
	}

	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = domain.DefaultCategory
	}

	if in.Quantity < 0 {
		in.Quantity = 0
	}
	if in.Price < 0 {
		in.Price = 0
	}
	if in.RestockThreshold < 0 {
		in.RestockThreshold = 0
	}

	return nil
}
