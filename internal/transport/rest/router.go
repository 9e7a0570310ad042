package rest

import "net/http"

// Handlers groups the endpoint handlers the router mounts.
type Handlers struct {
	Items   *ItemHandler
	Reports *ReportHandler
	Admin   *AdminHandler
	Impex   *ImpexHandler
	Health  *HealthHandler
}

// NewRouter builds the HTTP route table. Middleware is applied by the
// caller around the returned mux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/items", h.Items.List)
	mux.HandleFunc("POST /api/v1/items", h.Items.Create)
	mux.HandleFunc("GET /api/v1/items/{id}", h.Items.Get)
	mux.HandleFunc("DELETE /api/v1/items/{id}", h.Items.Delete)
	mux.HandleFunc("POST /api/v1/items/{id}/adjust", h.Items.Adjust)
	mux.HandleFunc("POST /api/v1/items/{id}/sell", h.Items.Sell)
	mux.HandleFunc("POST /api/v1/items/{id}/restock", h.Items.Restock)

	mux.HandleFunc("GET /api/v1/transactions", h.Reports.Transactions)
	mux.HandleFunc("GET /api/v1/reports/categories", h.Reports.Categories)
	mux.HandleFunc("GET /api/v1/reports/low-stock", h.Reports.LowStock)

	mux.HandleFunc("GET /api/v1/export/inventory.csv", h.Impex.ExportInventory)
	mux.HandleFunc("GET /api/v1/export/transactions.csv", h.Impex.ExportTransactions)
	mux.HandleFunc("POST /api/v1/import/inventory", h.Impex.ImportInventory)

	mux.HandleFunc("POST /api/v1/admin/demo", h.Admin.SeedDemo)
	mux.HandleFunc("POST /api/v1/admin/simulate", h.Admin.Simulate)
	mux.HandleFunc("DELETE /api/v1/admin/data", h.Admin.Clear)

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	return mux
}
