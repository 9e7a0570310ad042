package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/service/inventory"
)

// reportService is the slice of the inventory service the read-only report
// endpoints use.
type reportService interface {
	CategoryTotals(ctx context.Context) ([]inventory.CategoryTotal, error)
	LowStock(ctx context.Context) ([]domain.Item, error)
	Activity(ctx context.Context, limit int) ([]inventory.ActivityEntry, error)
}

// ReportHandler serves the aggregate and activity-log endpoints.
type ReportHandler struct {
	svc reportService
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

type categoryTotalJSON struct {
	Category string `json:"category"`
	Quantity int    `json:"qty"`
}

type activityJSON struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Change    int       `json:"change"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// Categories is GET /api/v1/reports/categories: per-category quantity
// totals, the input shape the UI chart consumes.
func (h *ReportHandler) Categories(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.CategoryTotals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryTotalJSON, 0, len(totals))
	for _, t := range totals {
		out = append(out, categoryTotalJSON{Category: t.Category, Quantity: t.Quantity})
	}

	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

// LowStock is GET /api/v1/reports/low-stock.
func (h *ReportHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.LowStock(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": toItemJSONs(items)})
}

// Transactions is GET /api/v1/transactions?limit=N, newest first.
func (h *ReportHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, domain.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.svc.Activity(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]activityJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityJSON{
			ID:        e.ID,
			ItemID:    e.ItemID,
			ItemName:  e.ItemName,
			Change:    e.Change,
			Note:      e.Note,
			Timestamp: e.Timestamp,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}
