package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"stockroom/internal/domain"
	"stockroom/internal/store"
)

// CreateItem validates the input, inserts the item, and lets the store
// append its initial-stock ledger entry.
func (s *Service) CreateItem(ctx context.Context, input CreateItemInput) (domain.Item, error) {
	if err := input.normalize(); err != nil {
		return domain.Item{}, err
	}

	item, err := s.ledger.CreateItem(ctx, store.CreateItemParams{
		Name:             input.Name,
		Category:         input.Category,
		Quantity:         input.Quantity,
		Price:            input.Price,
		RestockThreshold: input.RestockThreshold,
	})
	if err != nil {
		return domain.Item{}, fmt.Errorf("create item %q: %w", input.Name, err)
	}

	s.log.InfoContext(ctx, "item created",
		slog.Int64("item_id", item.ID),
		slog.String("name", item.Name),
		slog.Int("quantity", item.Quantity),
	)

	return item, nil
}

// GetItem returns a single item.
func (s *Service) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	return s.ledger.GetItem(ctx, id)
}

// AdjustQuantity applies a signed delta to an item's quantity. The stored
// quantity floors at zero while the ledger keeps the requested delta.
func (s *Service) AdjustQuantity(ctx context.Context, id int64, delta int, note string) error {
	if err := s.ledger.AdjustQuantity(ctx, id, delta, note); err != nil {
		return fmt.Errorf("adjust item %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "quantity adjusted",
		slog.Int64("item_id", id),
		slog.Int("delta", delta),
		slog.String("note", note),
	)

	return nil
}

// Sell records a sale of the configured sell step (default one unit).
// Selling from an empty shelf is refused before any ledger write.
func (s *Service) Sell(ctx context.Context, id int64) error {
	item, err := s.ledger.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item.Quantity <= 0 {
		return domain.NewValidationError("quantity", "no stock to sell")
	}

	return s.AdjustQuantity(ctx, id, -s.cfg.SellStep, fmt.Sprintf("Sold %d", s.cfg.SellStep))
}

// Restock adds the configured restock step (default five units).
func (s *Service) Restock(ctx context.Context, id int64) error {
	return s.AdjustQuantity(ctx, id, s.cfg.RestockStep, fmt.Sprintf("Restocked +%d", s.cfg.RestockStep))
}

// DeleteItem removes an item and its transactions. Unknown ids are a no-op.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.ledger.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "item deleted", slog.Int64("item_id", id))
	return nil
}

// ListItems performs the full inventory scan and applies the filter
// in memory, returning items sorted by name for stable display.
func (s *Service) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	items, err := s.ledger.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	filtered := items[:0:0]
	for _, item := range items {
		if filter.Matches(item) {
			filtered = append(filtered, item)
		}
	}
	if filtered == nil {
		filtered = []domain.Item{}
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })

	return filtered, nil
}

// ClearAll wipes every transaction and item.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.ledger.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear all: %w", err)
	}

	s.log.WarnContext(ctx, "all inventory data cleared")
	return nil
}
