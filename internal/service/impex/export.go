package impex

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"stockroom/internal/domain"
)

// Column orders are part of the interface contract; importers rely on the
// inventory header names.
var (
	inventoryHeader    = []string{"id", "name", "category", "qty", "price", "restock_threshold", "created_at"}
	transactionsHeader = []string{"id", "item_id", "change", "note", "timestamp"}
)

// ExportInventory writes the full inventory as CSV.
func (s *Service) ExportInventory(ctx context.Context, w io.Writer) error {
	items, err := s.inventory.ListItems(ctx, domain.ItemFilter{})
	if err != nil {
		return fmt.Errorf("export inventory: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(inventoryHeader); err != nil {
		return fmt.Errorf("write inventory header: %w", err)
	}

	for _, item := range items {
		record := []string{
			strconv.FormatInt(item.ID, 10),
			item.Name,
			item.Category,
			strconv.Itoa(item.Quantity),
			strconv.FormatFloat(item.Price, 'f', 2, 64),
			strconv.Itoa(item.RestockThreshold),
			item.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write inventory row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportTransactions writes the most recent ledger entries as CSV, up to
// the configured export limit, newest first.
func (s *Service) ExportTransactions(ctx context.Context, w io.Writer) error {
	entries, err := s.inventory.Activity(ctx, s.cfg.ExportTxnLimit)
	if err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(transactionsHeader); err != nil {
		return fmt.Errorf("write transactions header: %w", err)
	}

	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.ItemID, 10),
			strconv.Itoa(e.Change),
			e.Note,
			e.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write transaction row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
