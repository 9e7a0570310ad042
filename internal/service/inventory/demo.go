package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"stockroom/internal/domain"
)

// demoItems is the fixed demo inventory.
var demoItems = []CreateItemInput{
	{Name: "Retro Robot Toy", Category: "Toys", Quantity: 12, Price: 14.99, RestockThreshold: 3},
	{Name: "Eco Notebook", Category: "Stationery", Quantity: 30, Price: 3.50, RestockThreshold: 5},
	{Name: "Coffee Beans 250g", Category: "Food", Quantity: 8, Price: 6.99, RestockThreshold: 4},
	{Name: "Wireless Dongle", Category: "Electronics", Quantity: 4, Price: 19.99, RestockThreshold: 2},
	{Name: "Herbal Tea", Category: "Food", Quantity: 20, Price: 2.99, RestockThreshold: 5},
}

// SeedDemo inserts the demo items and returns them.
func (s *Service) SeedDemo(ctx context.Context) ([]domain.Item, error) {
	created := make([]domain.Item, 0, len(demoItems))
	for _, input := range demoItems {
		item, err := s.CreateItem(ctx, input)
		if err != nil {
			return created, fmt.Errorf("seed demo: %w", err)
		}
		created = append(created, item)
	}

	return created, nil
}

// Simulate runs the market simulator: the configured number of random
// sale events, each removing 1..SimulationMaxSale units from a random
// item, executed synchronously within this call. Returns the number of
// events recorded. Refused when the inventory is empty.
func (s *Service) Simulate(ctx context.Context) (int, error) {
	items, err := s.ledger.ListItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("simulate: %w", err)
	}
	if len(items) == 0 {
		return 0, domain.NewValidationError("inventory", "no items to simulate")
	}

	for i := 0; i < s.cfg.SimulationEvents; i++ {
		item := items[s.randIntN(len(items))]
		delta := -(1 + s.randIntN(s.cfg.SimulationMaxSale))
		if err := s.ledger.AdjustQuantity(ctx, item.ID, delta, "Simulated sale"); err != nil {
			return i, fmt.Errorf("simulate event %d: %w", i+1, err)
		}
	}

	s.log.InfoContext(ctx, "market simulation complete",
		slog.Int("events", s.cfg.SimulationEvents))

	return s.cfg.SimulationEvents, nil
}
