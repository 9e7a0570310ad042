// Package sqlite implements the ledger store on an embedded SQLite
// database via the pure-Go modernc driver, so the binary stays CGO-free.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"stockroom/internal/domain"
	"stockroom/internal/store"
)

// Timestamps are persisted as fixed-width RFC 3339 strings in UTC so that
// lexicographic ORDER BY on the TEXT column matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Store is the embedded SQLite ledger store. database/sql hands each
// statement a short-lived connection from its pool, so every operation is
// one scoped acquisition with no cross-call state.
type Store struct {
	db *sql.DB
}

var _ store.LedgerStore = (*Store)(nil)

// Open opens (creating if needed) the database file and bootstraps the
// schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection at a time keeps writers from tripping over SQLITE_BUSY;
	// each statement still borrows and releases it per call.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.bootstrap(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) bootstrap() error {
	const itemsDDL = `
CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'Misc',
	qty INTEGER NOT NULL DEFAULT 0,
	price REAL NOT NULL DEFAULT 0.0,
	restock_threshold INTEGER NOT NULL DEFAULT 3,
	created_at TEXT NOT NULL
)`
	const transactionsDDL = `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id INTEGER NOT NULL,
	change INTEGER NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	timestamp TEXT NOT NULL
)`

	if _, err := s.db.Exec(itemsDDL); err != nil {
		return fmt.Errorf("create items table: %w", err)
	}
	if _, err := s.db.Exec(transactionsDDL); err != nil {
		return fmt.Errorf("create transactions table: %w", err)
	}
	return nil
}

// CreateItem inserts the item row, then its initial-stock transaction.
// The two inserts are deliberately independent statements: a ledger insert
// failure leaves the item in place and surfaces the error.
func (s *Store) CreateItem(ctx context.Context, params store.CreateItemParams) (domain.Item, error) {
	now := time.Now().UTC()

	query, args, err := qb.Insert("items").
		Columns("name", "category", "qty", "price", "restock_threshold", "created_at").
		Values(params.Name, params.Category, params.Quantity, params.Price, params.RestockThreshold, now.Format(timeLayout)).
		ToSql()
	if err != nil {
		return domain.Item{}, fmt.Errorf("build insert item: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Item{}, mapError("insert item", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Item{}, mapError("insert item id", err)
	}

	if err := s.insertTransaction(ctx, id, params.Quantity, store.InitialStockNote(params.Quantity), now); err != nil {
		return domain.Item{}, err
	}

	return domain.Item{
		ID:               id,
		Name:             params.Name,
		Category:         params.Category,
		Quantity:         params.Quantity,
		Price:            params.Price,
		RestockThreshold: params.RestockThreshold,
		CreatedAt:        now,
	}, nil
}

// GetItem returns an item by id, or domain.ErrNotFound.
func (s *Store) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	query, args, err := selectItems().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Item{}, fmt.Errorf("build select item: %w", err)
	}

	item, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
		}
		return domain.Item{}, mapError("select item", err)
	}

	return item, nil
}

// AdjustQuantity reads the current quantity, writes back max(current+delta, 0),
// then logs the requested delta. The read-update-insert sequence is not
// atomic; single-actor usage is assumed.
func (s *Store) AdjustQuantity(ctx context.Context, id int64, delta int, note string) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	newQty := item.Quantity + delta
	if newQty < 0 {
		newQty = 0
	}

	query, args, err := qb.Update("items").Set("qty", newQty).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update quantity: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return mapError("update quantity", err)
	}

	return s.insertTransaction(ctx, id, delta, note, time.Now().UTC())
}

// DeleteItem removes the item and cascades to its transactions. Both
// deletes match zero rows for an unknown id, making the operation a no-op.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	query, args, err := qb.Delete("items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete item: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return mapError("delete item", err)
	}

	query, args, err = qb.Delete("transactions").Where(sq.Eq{"item_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete transactions: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return mapError("delete transactions", err)
	}

	return nil
}

// ListItems returns the full inventory.
func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	query, args, err := selectItems().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list items: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list items", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, mapError("scan item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate items", err)
	}

	return items, nil
}

// ListTransactions returns up to limit transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query, args, err := qb.Select("id", "item_id", "change", "note", "timestamp").
		From("transactions").
		OrderBy("timestamp DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list transactions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list transactions", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var (
			txn domain.Transaction
			ts  string
		)
		if err := rows.Scan(&txn.ID, &txn.ItemID, &txn.Change, &txn.Note, &ts); err != nil {
			return nil, mapError("scan transaction", err)
		}
		txn.Timestamp, err = time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse transaction timestamp %q: %w", ts, err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate transactions", err)
	}

	return txns, nil
}

// ClearAll wipes the ledger, transactions first.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return mapError("clear transactions", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return mapError("clear items", err)
	}
	return nil
}

// Ping verifies the database file is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) insertTransaction(ctx context.Context, itemID int64, change int, note string, at time.Time) error {
	query, args, err := qb.Insert("transactions").
		Columns("item_id", "change", "note", "timestamp").
		Values(itemID, change, note, at.Format(timeLayout)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert transaction: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return mapError("insert transaction", err)
	}
	return nil
}

func selectItems() sq.SelectBuilder {
	return qb.Select("id", "name", "category", "qty", "price", "restock_threshold", "created_at").
		From("items")
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.Item, error) {
	var (
		item      domain.Item
		createdAt string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Category, &item.Quantity,
		&item.Price, &item.RestockThreshold, &createdAt); err != nil {
		return domain.Item{}, err
	}

	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Item{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	item.CreatedAt = ts

	return item, nil
}

// mapError classifies driver failures as domain.ErrStore while keeping the
// original message. Context and not-found errors pass through untouched.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStore)
}
