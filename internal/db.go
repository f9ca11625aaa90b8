package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"scom-asset-api/internal/models"
)

// querier abstracts *sql.DB and *sql.Tx so handlers and helpers can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique")
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeDomainError maps a domain error to its HTTP status. Non-domain errors
// become opaque 500s so internals never leak to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	kind, ok := models.KindOf(err)
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var status int
	switch kind {
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindValidation:
		status = http.StatusBadRequest
	case models.KindPermission:
		status = http.StatusForbidden
	case models.KindConflict, models.KindInvalidState:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), status)
}
