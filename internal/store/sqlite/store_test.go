package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	"stockroom/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func widgetParams() store.CreateItemParams {
	return store.CreateItemParams{
		Name:             "Widget",
		Category:         "Tools",
		Quantity:         10,
		Price:            2.50,
		RestockThreshold: 3,
	}
}

func TestCreateItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, widgetParams())
	require.NoError(t, err)

	assert.NotZero(t, item.ID)
	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, "Tools", item.Category)
	assert.Equal(t, 10, item.Quantity)
	assert.InDelta(t, 2.50, item.Price, 0.001)
	assert.Equal(t, 3, item.RestockThreshold)
	assert.False(t, item.CreatedAt.IsZero())

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)

	// Creation pairs the item with exactly one initial-stock ledger entry.
	txns, err := s.ListTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, item.ID, txns[0].ItemID)
	assert.Equal(t, 10, txns[0].Change)
	assert.Equal(t, "Initial stock: 10", txns[0].Note)
}

func TestCreateItem_IDsAreNeverReused(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateItem(ctx, widgetParams())
	require.NoError(t, err)

	require.NoError(t, s.DeleteItem(ctx, first.ID))

	second, err := s.CreateItem(ctx, widgetParams())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestGetItem_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetItem(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustQuantity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, widgetParams())
	require.NoError(t, err)

	t.Run("positive delta", func(t *testing.T) {
		require.NoError(t, s.AdjustQuantity(ctx, item.ID, 5, "Restocked +5"))

		got, err := s.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 15, got.Quantity)
	})

	t.Run("negative delta clamps at zero, ledger keeps requested delta", func(t *testing.T) {
		require.NoError(t, s.AdjustQuantity(ctx, item.ID, -40, "bulk removal"))

		got, err := s.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)
		assert.True(t, got.LowStock())

		txns, err := s.ListTransactions(ctx, 1)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, -40, txns[0].Change)
		assert.Equal(t, "bulk removal", txns[0].Note)
	})

	t.Run("unknown item", func(t *testing.T) {
		err := s.AdjustQuantity(ctx, 9999, 1, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAdjustQuantity_AppendsExactlyOneTransaction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, widgetParams())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AdjustQuantity(ctx, item.ID, -1, "Sold 1"))
	}

	txns, err := s.ListTransactions(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, txns, 4) // initial stock + three sales
}

func TestDeleteItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, widgetParams())
	require.NoError(t, err)
	require.NoError(t, s.AdjustQuantity(ctx, item.ID, -1, "Sold 1"))

	other, err := s.CreateItem(ctx, store.CreateItemParams{Name: "Gadget", Category: "Tools", Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, s.DeleteItem(ctx, item.ID))

	_, err = s.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Cascade removed the item's ledger entries, the other item's survive.
	txns, err := s.ListTransactions(ctx, 100)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, other.ID, txns[0].ItemID)
}

func TestDeleteItem_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, widgetParams())
	require.NoError(t, err)

	require.NoError(t, s.DeleteItem(ctx, item.ID))
	require.NoError(t, s.DeleteItem(ctx, item.ID))
	require.NoError(t, s.DeleteItem(ctx, 424242))

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListTransactions_OrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, widgetParams())
	require.NoError(t, err)

	notes := []string{"first", "second", "third"}
	for _, note := range notes {
		require.NoError(t, s.AdjustQuantity(ctx, item.ID, 1, note))
	}

	txns, err := s.ListTransactions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "third", txns[0].Note)
	assert.Equal(t, "second", txns[1].Note)
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateItem(ctx, widgetParams())
	require.NoError(t, err)
	_, err = s.CreateItem(ctx, store.CreateItemParams{Name: "Gadget", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	txns, err := s.ListTransactions(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	item, err := s.CreateItem(ctx, widgetParams())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Name, got.Name)
	assert.Equal(t, item.Quantity, got.Quantity)
}

func TestMapError_Classification(t *testing.T) {
	assert.ErrorIs(t, mapError("op", errors.New("disk I/O error")), domain.ErrStore)
	assert.ErrorIs(t, mapError("op", domain.ErrNotFound), domain.ErrNotFound)
	assert.ErrorIs(t, mapError("op", context.Canceled), context.Canceled)
	assert.NoError(t, mapError("op", nil))
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
