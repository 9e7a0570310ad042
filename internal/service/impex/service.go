// Package impex implements CSV export of the inventory and ledger, and the
// delta-reconciliation CSV import.
package impex

import (
	"context"
	"log/slog"

	"stockroom/internal/config"
	"stockroom/internal/domain"
	"stockroom/internal/service/inventory"
)

// inventoryService is the consumer-defined slice of the inventory service
// the import/export paths need. Going through the service (rather than the
// store) reuses its validation and defaulting.
type inventoryService interface {
	CreateItem(ctx context.Context, input inventory.CreateItemInput) (domain.Item, error)
	AdjustQuantity(ctx context.Context, id int64, delta int, note string) error
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	Activity(ctx context.Context, limit int) ([]inventory.ActivityEntry, error)
}

// Service implements CSV import and export.
type Service struct {
	log       *slog.Logger
	inventory inventoryService
	cfg       config.InventoryConfig
}

// New creates the impex service.
func New(log *slog.Logger, inv inventoryService, cfg config.InventoryConfig) *Service {
	return &Service{log: log, inventory: inv, cfg: cfg}
}

// ImportReport summarizes one CSV import run. Row failures are collected
// rather than aborting the file.
type ImportReport struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Adjusted  int      `json:"adjusted"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}
