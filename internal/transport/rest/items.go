package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/service/inventory"
)

// itemService is the slice of the inventory service the item endpoints use.
type itemService interface {
	CreateItem(ctx context.Context, input inventory.CreateItemInput) (domain.Item, error)
	GetItem(ctx context.Context, id int64) (domain.Item, error)
	AdjustQuantity(ctx context.Context, id int64, delta int, note string) error
	Sell(ctx context.Context, id int64) error
	Restock(ctx context.Context, id int64) error
	DeleteItem(ctx context.Context, id int64) error
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
}

// ItemHandler serves the item CRUD and quantity-adjustment endpoints.
type ItemHandler struct {
	svc itemService
}

// NewItemHandler creates an ItemHandler.
func NewItemHandler(svc itemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// itemJSON mirrors the CSV column names on the wire.
type itemJSON struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	Quantity         int       `json:"qty"`
	Price            float64   `json:"price"`
	RestockThreshold int       `json:"restock_threshold"`
	CreatedAt        time.Time `json:"created_at"`
	LowStock         bool      `json:"low_stock"`
}

func toItemJSON(item domain.Item) itemJSON {
	return itemJSON{
		ID:               item.ID,
		Name:             item.Name,
		Category:         item.Category,
		Quantity:         item.Quantity,
		Price:            item.Price,
		RestockThreshold: item.RestockThreshold,
		CreatedAt:        item.CreatedAt,
		LowStock:         item.LowStock(),
	}
}

func toItemJSONs(items []domain.Item) []itemJSON {
	out := make([]itemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, toItemJSON(item))
	}
	return out
}

type createItemRequest struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Quantity         int     `json:"qty"`
	Price            float64 `json:"price"`
	RestockThreshold int     `json:"restock_threshold"`
}

type adjustRequest struct {
	Delta int    `json:"delta"`
	Note  string `json:"note"`
}

// List is GET /api/v1/items. Filters: query, category, low_stock.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ItemFilter{
		Query:        q.Get("query"),
		Category:     q.Get("category"),
		LowStockOnly: q.Get("low_stock") == "true",
	}

	items, err := h.svc.ListItems(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": toItemJSONs(items)})
}

// Create is POST /api/v1/items.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	item, err := h.svc.CreateItem(r.Context(), inventory.CreateItemInput{
		Name:             req.Name,
		Category:         req.Category,
		Quantity:         req.Quantity,
		Price:            req.Price,
		RestockThreshold: req.RestockThreshold,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toItemJSON(item))
}

// Get is GET /api/v1/items/{id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemJSON(item))
}

// Delete is DELETE /api/v1/items/{id}. Idempotent.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Adjust is POST /api/v1/items/{id}/adjust.
func (h *ItemHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	h.mutate(w, r, id, func(ctx context.Context) error {
		return h.svc.AdjustQuantity(ctx, id, req.Delta, req.Note)
	})
}

// Sell is POST /api/v1/items/{id}/sell.
func (h *ItemHandler) Sell(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.mutate(w, r, id, func(ctx context.Context) error {
		return h.svc.Sell(ctx, id)
	})
}

// Restock is POST /api/v1/items/{id}/restock.
func (h *ItemHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.mutate(w, r, id, func(ctx context.Context) error {
		return h.svc.Restock(ctx, id)
	})
}

// mutate runs a quantity mutation and responds with the re-read item,
// keeping the store as the single source of truth for what the UI shows.
func (h *ItemHandler) mutate(w http.ResponseWriter, r *http.Request, id int64, fn func(ctx context.Context) error) {
	if err := fn(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemJSON(item))
}

func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, domain.NewValidationError("id", "must be an integer")
	}
	return id, nil
}
