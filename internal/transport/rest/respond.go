package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"stockroom/internal/domain"
	"stockroom/pkg/ctxutil"
)

// errorResponse is the JSON error body for all handlers.
type errorResponse struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError maps domain errors onto HTTP statuses: validation failures are
// 422, missing items 404, everything else (store failures included) 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{
		Error:     err.Error(),
		RequestID: ctxutil.RequestIDFromCtx(r.Context()),
	}

	status := http.StatusInternalServerError

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusUnprocessableEntity
		resp.Fields = make(map[string]string, len(vErr.Errors))
		for _, fe := range vErr.Errors {
			resp.Fields[fe.Field] = fe.Message
		}
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	writeJSON(w, status, resp)
}
