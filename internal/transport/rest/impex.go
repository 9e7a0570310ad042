package rest

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"stockroom/internal/service/impex"
)

// impexService is the CSV import/export surface.
type impexService interface {
	ExportInventory(ctx context.Context, w io.Writer) error
	ExportTransactions(ctx context.Context, w io.Writer) error
	ImportInventory(ctx context.Context, r io.Reader) (*impex.ImportReport, error)
}

// ImpexHandler serves the CSV backup and restore endpoints.
type ImpexHandler struct {
	svc impexService
}

// NewImpexHandler creates an ImpexHandler.
func NewImpexHandler(svc impexService) *ImpexHandler {
	return &ImpexHandler{svc: svc}
}

// ExportInventory is GET /api/v1/export/inventory.csv.
func (h *ImpexHandler) ExportInventory(w http.ResponseWriter, r *http.Request) {
	writeCSVHeaders(w, "inventory.csv")
	if err := h.svc.ExportInventory(r.Context(), w); err != nil {
		// Headers are already out; the truncated body is the best signal left.
		return
	}
}

// ExportTransactions is GET /api/v1/export/transactions.csv.
func (h *ImpexHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	writeCSVHeaders(w, "transactions.csv")
	if err := h.svc.ExportTransactions(r.Context(), w); err != nil {
		return
	}
}

// ImportInventory is POST /api/v1/import/inventory. The CSV arrives either
// as a multipart "file" field or as the raw request body.
func (h *ImpexHandler) ImportInventory(w http.ResponseWriter, r *http.Request) {
	body, cleanup, err := importBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanup()

	report, err := h.svc.ImportInventory(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func importBody(r *http.Request) (io.Reader, func(), error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, err
	}
	var f multipart.File = file
	return f, func() { _ = f.Close() }, nil
}

func writeCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}
