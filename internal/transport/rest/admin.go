package rest

import (
	"context"
	"net/http"

	"stockroom/internal/domain"
)

// adminService is the slice of the inventory service the demo and
// data-management endpoints use.
type adminService interface {
	SeedDemo(ctx context.Context) ([]domain.Item, error)
	Simulate(ctx context.Context) (int, error)
	ClearAll(ctx context.Context) error
}

// AdminHandler serves the playground utilities: demo seeding, the market
// simulator, and the full data wipe.
type AdminHandler struct {
	svc adminService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc adminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// SeedDemo is POST /api/v1/admin/demo.
func (h *AdminHandler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.SeedDemo(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"items": toItemJSONs(items)})
}

// Simulate is POST /api/v1/admin/simulate. The sale events run
// synchronously within this request.
func (h *AdminHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Simulate(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Clear is DELETE /api/v1/admin/data. Irreversible.
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
