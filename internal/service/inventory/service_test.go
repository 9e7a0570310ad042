package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/config"
	"stockroom/internal/domain"
	"stockroom/internal/store"
)

// ===========================================================================
// In-memory fake ledger with injectable failures
// ===========================================================================

type fakeLedger struct {
	items  map[int64]*domain.Item
	txns   []domain.Transaction
	nextID int64

	// Set to force failures.
	CreateItemErr error
	AdjustErr     error
	ListErr       error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{items: map[int64]*domain.Item{}}
}

func (f *fakeLedger) CreateItem(_ context.Context, params store.CreateItemParams) (domain.Item, error) {
	if f.CreateItemErr != nil {
		return domain.Item{}, f.CreateItemErr
	}
	f.nextID++
	item := domain.Item{
		ID:               f.nextID,
		Name:             params.Name,
		Category:         params.Category,
		Quantity:         params.Quantity,
		Price:            params.Price,
		RestockThreshold: params.RestockThreshold,
		CreatedAt:        time.Now().UTC(),
	}
	f.items[item.ID] = &item
	f.appendTxn(item.ID, params.Quantity, store.InitialStockNote(params.Quantity))
	return item, nil
}

func (f *fakeLedger) GetItem(_ context.Context, id int64) (domain.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return domain.Item{}, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return *item, nil
}

func (f *fakeLedger) AdjustQuantity(_ context.Context, id int64, delta int, note string) error {
	if f.AdjustErr != nil {
		return f.AdjustErr
	}
	item, ok := f.items[id]
	if !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	newQty := item.Quantity + delta
	if newQty < 0 {
		newQty = 0
	}
	item.Quantity = newQty
	f.appendTxn(id, delta, note)
	return nil
}

func (f *fakeLedger) DeleteItem(_ context.Context, id int64) error {
	delete(f.items, id)
	kept := f.txns[:0]
	for _, txn := range f.txns {
		if txn.ItemID != id {
			kept = append(kept, txn)
		}
	}
	f.txns = kept
	return nil
}

func (f *fakeLedger) ListItems(_ context.Context) ([]domain.Item, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	items := make([]domain.Item, 0, len(f.items))
	for _, item := range f.items {
		items = append(items, *item)
	}
	return items, nil
}

func (f *fakeLedger) ListTransactions(_ context.Context, limit int) ([]domain.Transaction, error) {
	// Newest first.
	out := make([]domain.Transaction, 0, limit)
	for i := len(f.txns) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.txns[i])
	}
	return out, nil
}

func (f *fakeLedger) ClearAll(_ context.Context) error {
	f.items = map[int64]*domain.Item{}
	f.txns = nil
	return nil
}

func (f *fakeLedger) appendTxn(itemID int64, change int, note string) {
	f.txns = append(f.txns, domain.Transaction{
		ID:        int64(len(f.txns) + 1),
		ItemID:    itemID,
		Change:    change,
		Note:      note,
		Timestamp: time.Now().UTC(),
	})
}

// ===========================================================================
// Helpers
// ===========================================================================

func testConfig() config.InventoryConfig {
	return config.InventoryConfig{
		TransactionLogLimit: 200,
		ExportTxnLimit:      1000,
		SellStep:            1,
		RestockStep:         5,
		SimulationEvents:    10,
		SimulationMaxSale:   3,
	}
}

func newTestService(ledger ledgerStore) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, ledger, testConfig())
}

// ===========================================================================
// Tests
// ===========================================================================

func TestCreateItem(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(ledger)

		item, err := svc.CreateItem(context.Background(), CreateItemInput{
			Name: "  Widget  ", Category: "Tools", Quantity: 10, Price: 2.50, RestockThreshold: 3,
		})
		require.NoError(t, err)

		assert.Equal(t, "Widget", item.Name)
		assert.Equal(t, 10, item.Quantity)

		require.Len(t, ledger.txns, 1)
		assert.Equal(t, 10, ledger.txns[0].Change)
		assert.Equal(t, "Initial stock: 10", ledger.txns[0].Note)
	})

	t.Run("blank name is rejected before the store is touched", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(ledger)

		_, err := svc.CreateItem(context.Background(), CreateItemInput{Name: "   "})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, ledger.items)
		assert.Empty(t, ledger.txns)
	})

	t.Run("defaults and clamps", func(t *testing.T) {
		svc := newTestService(newFakeLedger())

		item, err := svc.CreateItem(context.Background(), CreateItemInput{
			Name: "Gadget", Quantity: -5, Price: -1.0, RestockThreshold: -2,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.DefaultCategory, item.Category)
		assert.Equal(t, 0, item.Quantity)
		assert.Equal(t, 0.0, item.Price)
		assert.Equal(t, 0, item.RestockThreshold)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.CreateItemErr = fmt.Errorf("insert: %w", domain.ErrStore)
		svc := newTestService(ledger)

		_, err := svc.CreateItem(context.Background(), CreateItemInput{Name: "Widget"})
		assert.ErrorIs(t, err, domain.ErrStore)
	})
}

func TestAdjustQuantity_ClampAndLedger(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, CreateItemInput{Name: "Widget", Category: "Tools", Quantity: 10, Price: 2.50, RestockThreshold: 3})
	require.NoError(t, err)

	require.NoError(t, svc.AdjustQuantity(ctx, item.ID, -15, "bulk removal"))

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.True(t, got.LowStock())

	// The ledger records the requested -15, not the clamped -10.
	last := ledger.txns[len(ledger.txns)-1]
	assert.Equal(t, -15, last.Change)
}

func TestSell(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, CreateItemInput{Name: "Widget", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Sell(ctx, item.ID))

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, "Sold 1", ledger.txns[len(ledger.txns)-1].Note)

	t.Run("refused on empty shelf", func(t *testing.T) {
		before := len(ledger.txns)
		err := svc.Sell(ctx, item.ID)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Len(t, ledger.txns, before)
	})

	t.Run("unknown item", func(t *testing.T) {
		assert.ErrorIs(t, svc.Sell(ctx, 9999), domain.ErrNotFound)
	})
}

func TestRestock(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, CreateItemInput{Name: "Widget", Quantity: 0})
	require.NoError(t, err)

	require.NoError(t, svc.Restock(ctx, item.ID))

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, "Restocked +5", ledger.txns[len(ledger.txns)-1].Note)
}

func TestListItems_FilterAndSort(t *testing.T) {
	svc := newTestService(newFakeLedger())
	ctx := context.Background()

	seed := []CreateItemInput{
		{Name: "Zinc Screws", Category: "Hardware", Quantity: 50, RestockThreshold: 10},
		{Name: "Apple Crate", Category: "Food", Quantity: 2, RestockThreshold: 5},
		{Name: "Hammer", Category: "Hardware", Quantity: 4, RestockThreshold: 4},
	}
	for _, in := range seed {
		_, err := svc.CreateItem(ctx, in)
		require.NoError(t, err)
	}

	t.Run("no filter, sorted by name", func(t *testing.T) {
		items, err := svc.ListItems(ctx, domain.ItemFilter{})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, []string{"Apple Crate", "Hammer", "Zinc Screws"},
			[]string{items[0].Name, items[1].Name, items[2].Name})
	})

	t.Run("query filter", func(t *testing.T) {
		items, err := svc.ListItems(ctx, domain.ItemFilter{Query: "hard"})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("low stock filter with boundary tie", func(t *testing.T) {
		items, err := svc.ListItems(ctx, domain.ItemFilter{LowStockOnly: true})
		require.NoError(t, err)
		require.Len(t, items, 2) // Apple Crate (2<=5) and Hammer (4<=4)
	})
}

func TestCategoryTotals(t *testing.T) {
	svc := newTestService(newFakeLedger())
	ctx := context.Background()

	for _, in := range []CreateItemInput{
		{Name: "Hammer", Category: "Hardware", Quantity: 4},
		{Name: "Screws", Category: "Hardware", Quantity: 6},
		{Name: "Tea", Category: "Food", Quantity: 20},
	} {
		_, err := svc.CreateItem(ctx, in)
		require.NoError(t, err)
	}

	totals, err := svc.CategoryTotals(ctx)
	require.NoError(t, err)

	require.Equal(t, []CategoryTotal{
		{Category: "Food", Quantity: 20},
		{Category: "Hardware", Quantity: 10},
	}, totals)

	// Aggregated quantities equal the unfiltered total.
	sum := 0
	for _, total := range totals {
		sum += total.Quantity
	}
	items, err := svc.ListItems(ctx, domain.ItemFilter{})
	require.NoError(t, err)
	wholeInventory := 0
	for _, item := range items {
		wholeInventory += item.Quantity
	}
	assert.Equal(t, wholeInventory, sum)
}

func TestCategories_DistinctSorted(t *testing.T) {
	svc := newTestService(newFakeLedger())
	ctx := context.Background()

	for _, in := range []CreateItemInput{
		{Name: "Hammer", Category: "Hardware", Quantity: 4},
		{Name: "Screws", Category: "Hardware", Quantity: 6},
		{Name: "Tea", Category: "Food", Quantity: 20},
	} {
		_, err := svc.CreateItem(ctx, in)
		require.NoError(t, err)
	}

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Hardware"}, categories)
}

func TestLowStock_SortedByQuantity(t *testing.T) {
	svc := newTestService(newFakeLedger())
	ctx := context.Background()

	for _, in := range []CreateItemInput{
		{Name: "Plenty", Category: "Misc", Quantity: 100, RestockThreshold: 3},
		{Name: "Nearly Out", Category: "Misc", Quantity: 1, RestockThreshold: 3},
		{Name: "At Threshold", Category: "Misc", Quantity: 3, RestockThreshold: 3},
	} {
		_, err := svc.CreateItem(ctx, in)
		require.NoError(t, err)
	}

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Nearly Out", low[0].Name)
	assert.Equal(t, "At Threshold", low[1].Name)
}

func TestActivity_EnrichesItemNames(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, CreateItemInput{Name: "Widget", Quantity: 3})
	require.NoError(t, err)
	deleted, err := svc.CreateItem(ctx, CreateItemInput{Name: "Ghost", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.AdjustQuantity(ctx, item.ID, -1, "Sold 1"))

	// Remove only the item row, keeping its ledger entries, to mimic a
	// transaction whose item disappeared.
	delete(ledger.items, deleted.ID)

	entries, err := svc.Activity(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Widget", entries[0].ItemName)
	assert.Equal(t, "Sold 1", entries[0].Note)
	assert.Equal(t, fmt.Sprintf("(id:%d)", deleted.ID), entries[1].ItemName)
}

func TestSeedDemo(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	items, err := svc.SeedDemo(context.Background())
	require.NoError(t, err)

	assert.Len(t, items, 5)
	assert.Len(t, ledger.txns, 5) // one initial-stock entry each
}

func TestSimulate(t *testing.T) {
	t.Run("empty inventory refused", func(t *testing.T) {
		svc := newTestService(newFakeLedger())

		_, err := svc.Simulate(context.Background())
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("records the configured number of sales", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(ledger)
		ctx := context.Background()

		_, err := svc.CreateItem(ctx, CreateItemInput{Name: "Widget", Quantity: 100})
		require.NoError(t, err)

		svc.randIntN = func(n int) int { return n - 1 } // deterministic: max sale, last item

		events, err := svc.Simulate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, events)

		txns, err := ledger.ListTransactions(ctx, 100)
		require.NoError(t, err)
		require.Len(t, txns, 11) // initial stock + 10 simulated sales

		for _, txn := range txns[:10] {
			assert.Equal(t, "Simulated sale", txn.Note)
			assert.GreaterOrEqual(t, txn.Change, -3)
			assert.LessOrEqual(t, txn.Change, -1)
		}
	})

	t.Run("store failure aborts mid-run", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(ledger)
		ctx := context.Background()

		_, err := svc.CreateItem(ctx, CreateItemInput{Name: "Widget", Quantity: 100})
		require.NoError(t, err)

		ledger.AdjustErr = errors.New("connection reset")
		events, err := svc.Simulate(ctx)
		assert.Error(t, err)
		assert.Equal(t, 0, events)
	})
}

func TestClearAll(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, CreateItemInput{Name: "Widget", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll(ctx))
	assert.Empty(t, ledger.items)
	assert.Empty(t, ledger.txns)
}
