// Package store defines the ledger store contract shared by the embedded
// SQLite backend and the hosted PostgreSQL backend. Calling code selects a
// backend once at startup via Open and never depends on the choice again.
package store

import (
	"context"
	"fmt"

	"stockroom/internal/domain"
)

// CreateItemParams holds the fields for a new item. Validation and defaults
// are applied by the service layer before the store is invoked.
type CreateItemParams struct {
	Name             string
	Category         string
	Quantity         int
	Price            float64
	RestockThreshold int
}

// LedgerStore owns the items and transactions collections. It is the sole
// source of truth consulted on every render; callers re-read full state
// after each mutation instead of maintaining a cache.
//
// Quantity-changing operations append exactly one paired transaction.
// There is no rollback across the statement pairs: a failure between the
// item write and the ledger write leaves the item without its entry, and
// the error is surfaced as-is.
type LedgerStore interface {
	// CreateItem inserts the item, then appends an initial-stock transaction
	// with change equal to the created quantity.
	CreateItem(ctx context.Context, params CreateItemParams) (domain.Item, error)

	// GetItem returns a single item, or domain.ErrNotFound.
	GetItem(ctx context.Context, id int64) (domain.Item, error)

	// AdjustQuantity applies delta to the item's quantity, flooring the
	// stored value at zero, then appends a transaction recording the
	// requested delta (not the clamped effective change).
	// Returns domain.ErrNotFound if the item does not exist.
	AdjustQuantity(ctx context.Context, id int64, delta int, note string) error

	// DeleteItem removes the item and every transaction referencing it.
	// Deleting a nonexistent id is a no-op.
	DeleteItem(ctx context.Context, id int64) error

	// ListItems returns the full inventory. Order is not guaranteed.
	ListItems(ctx context.Context) ([]domain.Item, error)

	// ListTransactions returns up to limit transactions, newest first.
	ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)

	// ClearAll deletes every transaction, then every item. Irreversible.
	ClearAll(ctx context.Context) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend handle.
	Close() error
}

// InitialStockNote formats the ledger note attached to an item's creation.
func InitialStockNote(quantity int) string {
	return fmt.Sprintf("Initial stock: %d", quantity)
}
