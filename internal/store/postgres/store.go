// Package postgres implements the ledger store on a hosted PostgreSQL
// database reached through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockroom/internal/config"
	"stockroom/internal/domain"
	"stockroom/internal/store"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store is the hosted PostgreSQL ledger store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.LedgerStore = (*Store)(nil)

// Open creates a connection pool configured from DatabaseConfig, pings the
// database for fail-fast validation, and applies pending schema migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// NewStore wraps an existing pool. The caller is responsible for migrations.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateItem inserts the item row, then its initial-stock transaction.
// The two inserts are deliberately independent statements: a ledger insert
// failure leaves the item in place and surfaces the error.
func (s *Store) CreateItem(ctx context.Context, params store.CreateItemParams) (domain.Item, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	query, args, err := qb.Insert("items").
		Columns("name", "category", "qty", "price", "restock_threshold", "created_at").
		Values(params.Name, params.Category, params.Quantity, params.Price, params.RestockThreshold, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Item{}, fmt.Errorf("build insert item: %w", err)
	}

	var id int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return domain.Item{}, mapError("insert item", err)
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

	var item domain.Item
	err = s.pool.QueryRow(ctx, query, args...).Scan(&item.ID, &item.Name, &item.Category,
		&item.Quantity, &item.Price, &item.RestockThreshold, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return mapError("update quantity", err)
	}

	return s.insertTransaction(ctx, id, delta, note, time.Now().UTC().Truncate(time.Microsecond))
}

// DeleteItem removes the item and cascades to its transactions. Both
// deletes match zero rows for an unknown id, making the operation a no-op.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	query, args, err := qb.Delete("items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete item: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return mapError("delete item", err)
	}

	query, args, err = qb.Delete("transactions").Where(sq.Eq{"item_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete transactions: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
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

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list items", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Quantity,
			&item.Price, &item.RestockThreshold, &item.CreatedAt); err != nil {
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

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list transactions", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(&txn.ID, &txn.ItemID, &txn.Change, &txn.Note, &txn.Timestamp); err != nil {
			return nil, mapError("scan transaction", err)
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
	if _, err := s.pool.Exec(ctx, `DELETE FROM transactions`); err != nil {
		return mapError("clear transactions", err)
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM items`); err != nil {
		return mapError("clear items", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) insertTransaction(ctx context.Context, itemID int64, change int, note string, at time.Time) error {
	query, args, err := qb.Insert("transactions").
		Columns("item_id", "change", "note", "timestamp").
		Values(itemID, change, note, at).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert transaction: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return mapError("insert transaction", err)
	}
	return nil
}

func selectItems() sq.SelectBuilder {
	return qb.Select("id", "name", "category", "qty", "price", "restock_threshold", "created_at").
		From("items")
}

// mapError classifies pgx failures as domain.ErrStore while keeping the
// original message. Context and not-found errors pass through untouched.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %s (%s): %w", op, pgErr.Message, pgErr.Code, domain.ErrStore)
	}

	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStore)
}
