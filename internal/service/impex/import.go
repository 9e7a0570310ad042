package impex

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"stockroom/internal/domain"
	"stockroom/internal/service/inventory"
)

// ImportInventory reconciles a CSV snapshot against the current inventory.
//
// Each row is matched by exact name. For an existing item the row's qty is
// applied as an incremental delta (clamped at zero by the store, like any
// adjustment); only unknown names create new items. This delta semantic is
// intentional and importers depend on it: importing an unmodified export
// into an empty store reproduces the snapshot because delta-against-zero
// equals the absolute value.
//
// Only the name column is required. Missing category, qty, price, and
// restock_threshold fall back to the creation defaults. Row-level failures
// are recorded in the report; the file is never aborted part-way.
func (s *Service) ImportInventory(ctx context.Context, r io.Reader) (*ImportReport, error) {
	report := &ImportReport{Errors: []string{}}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.NewValidationError("file", "empty CSV")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, domain.NewValidationError("file", "missing required column: name")
	}

	// One lookup pass; rows created during this import join the index so
	// duplicate rows within the file adjust instead of duplicating.
	existing, err := s.inventory.ListItems(ctx, domain.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("list items for import: %w", err)
	}
	byName := make(map[string]int64, len(existing))
	for _, item := range existing {
		byName[item.Name] = item.ID
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		report.Processed++

		row, err := parseRow(record, cols)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		if id, ok := byName[row.Name]; ok {
			err := s.inventory.AdjustQuantity(ctx, id, row.Quantity, fmt.Sprintf("CSV import: %d", row.Quantity))
			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("line %d: adjust %q: %v", line, row.Name, err))
				continue
			}
			report.Adjusted++
			continue
		}

		item, err := s.inventory.CreateItem(ctx, row)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: create %q: %v", line, row.Name, err))
			continue
		}
		byName[item.Name] = item.ID
		report.Created++
	}

	s.log.InfoContext(ctx, "csv import finished",
		slog.Int("processed", report.Processed),
		slog.Int("created", report.Created),
		slog.Int("adjusted", report.Adjusted),
		slog.Int("failed", report.Failed),
	)

	return report, nil
}

// parseRow maps one CSV record onto a creation input, applying the
// documented defaults for absent columns.
func parseRow(record []string, cols map[string]int) (inventory.CreateItemInput, error) {
	field := func(name string) (string, bool) {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	input := inventory.CreateItemInput{
		Category:         domain.DefaultCategory,
		RestockThreshold: domain.DefaultRestockThreshold,
	}

	name, _ := field("name")
	if name == "" {
		return input, fmt.Errorf("blank name")
	}
	input.Name = name

	if v, ok := field("category"); ok && v != "" {
		input.Category = v
	}
	if v, ok := field("qty"); ok && v != "" {
		qty, err := strconv.Atoi(v)
		if err != nil {
			return input, fmt.Errorf("invalid qty %q", v)
		}
		input.Quantity = qty
	}
	if v, ok := field("price"); ok && v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return input, fmt.Errorf("invalid price %q", v)
		}
		input.Price = price
	}
	if v, ok := field("restock_threshold"); ok && v != "" {
		threshold, err := strconv.Atoi(v)
		if err != nil {
			return input, fmt.Errorf("invalid restock_threshold %q", v)
		}
		input.RestockThreshold = threshold
	}

	return input, nil
}
