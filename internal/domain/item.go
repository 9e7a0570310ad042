package domain

import "time"

// Default values applied when an item is created without the corresponding
// field (manual creation and CSV import share these).
const (
	DefaultCategory         = "Misc"
	DefaultRestockThreshold = 3
)

// Item is a trackable stock-keeping unit.
type Item struct {
	ID               int64
	Name             string
	Category         string
	Quantity         int
	Price            float64
	RestockThreshold int
	CreatedAt        time.Time
}

// LowStock reports whether the item is at or below its restock threshold.
func (i Item) LowStock() bool {
	return i.Quantity <= i.RestockThreshold
}
