package inventory

import (
	"context"
	"fmt"
	"sort"

	"stockroom/internal/domain"
)

// CategoryTotal is the chart input shape: one category and its summed
// quantity.
type CategoryTotal struct {
	Category string
	Quantity int
}

// ActivityEntry is a transaction joined with its item's display name.
type ActivityEntry struct {
	domain.Transaction
	ItemName string
}

// CategoryTotals aggregates quantity per distinct category over the full
// inventory, sorted by category name.
func (s *Service) CategoryTotals(ctx context.Context) ([]CategoryTotal, error) {
	items, err := s.ledger.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	sums := map[string]int{}
	for _, item := range items {
		sums[item.Category] += item.Quantity
	}

	totals := make([]CategoryTotal, 0, len(sums))
	for category, qty := range sums {
		totals = append(totals, CategoryTotal{Category: category, Quantity: qty})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })

	return totals, nil
}

// Categories returns the distinct category names, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	totals, err := s.CategoryTotals(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(totals))
	for _, t := range totals {
		categories = append(categories, t.Category)
	}

	return categories, nil
}

// LowStock returns the items at or below their restock threshold, lowest
// quantity first.
func (s *Service) LowStock(ctx context.Context) ([]domain.Item, error) {
	items, err := s.ledger.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}

	low := []domain.Item{}
	for _, item := range items {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	sort.Slice(low, func(i, j int) bool { return low[i].Quantity < low[j].Quantity })

	return low, nil
}

// Activity returns the most recent transactions joined with item names.
// Transactions whose item was deleted render as "(id:N)".
// A non-positive limit falls back to the configured log limit.
func (s *Service) Activity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = s.cfg.TransactionLogLimit
	}

	txns, err := s.ledger.ListTransactions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	items, err := s.ledger.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	names := make(map[int64]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
	}

	entries := make([]ActivityEntry, 0, len(txns))
	for _, txn := range txns {
		name, ok := names[txn.ItemID]
		if !ok {
			name = fmt.Sprintf("(id:%d)", txn.ItemID)
		}
		entries = append(entries, ActivityEntry{Transaction: txn, ItemName: name})
	}

	return entries, nil
}
