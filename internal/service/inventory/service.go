// Package inventory implements the inventory business logic: input
// validation and defaults, quantity adjustments with their ledger entries,
// derived queries over the full inventory, and the demo utilities.
package inventory

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"stockroom/internal/config"
	"stockroom/internal/domain"
	"stockroom/internal/store"
)

// ledgerStore is the consumer-defined subset of the store contract the
// service needs.
type ledgerStore interface {
	CreateItem(ctx context.Context, params store.CreateItemParams) (domain.Item, error)
	GetItem(ctx context.Context, id int64) (domain.Item, error)
	AdjustQuantity(ctx context.Context, id int64, delta int, note string) error
	DeleteItem(ctx context.Context, id int64) error
	ListItems(ctx context.Context) ([]domain.Item, error)
	ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	ClearAll(ctx context.Context) error
}

// Service implements the inventory business logic.
type Service struct {
	log    *slog.Logger
	ledger ledgerStore
	cfg    config.InventoryConfig

	// randIntN is swappable for deterministic simulation tests.
	randIntN func(n int) int
}

// New creates the inventory service.
func New(log *slog.Logger, ledger ledgerStore, cfg config.InventoryConfig) *Service {
	return &Service{
		log:      log,
		ledger:   ledger,
		cfg:      cfg,
		randIntN: rand.IntN,
	}
}
