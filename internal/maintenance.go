package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"scom-asset-api/internal/models"

	"github.com/go-chi/chi/v5"
)

const maintenanceColumns = `maintenance_id, asset_id, date_of_maintenance, type, provider, cost, notes`

func scanMaintenance(row interface{ Scan(...any) error }, m *models.Maintenance, extra ...any) error {
	dest := []any{&m.MaintenanceID, &m.AssetID, &m.DateOfMaintenance, &m.Type, &m.Provider, &m.Cost, &m.Notes}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

func (s *Server) createMaintenance(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	if _, err := s.lookupAssetState(r.Context(), s.DB, req.AssetID); err != nil {
		if _, ok := models.KindOf(err); ok {
			writeDomainError(w, err)
		} else {
			http.Error(w, err.Error(), 500)
		}
		return
	}

	var m models.Maintenance
	row := s.DB.QueryRowContext(r.Context(), `
		INSERT INTO maintenance (maintenance_id, asset_id, date_of_maintenance, type, provider, cost, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+maintenanceColumns,
		newWorkflowID(), req.AssetID, req.DateOfMaintenance, req.Type, req.Provider, req.Cost, req.Notes)
	if err := scanMaintenance(row, &m); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) listMaintenance(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if assetID := strings.TrimSpace(r.URL.Query().Get("asset_id")); assetID != "" {
		clauses = append(clauses, fmt.Sprintf("asset_id = $%d", arg))
		args = append(args, assetID)
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := `SELECT ` + maintenanceColumns + `, COUNT(*) OVER() as total_count FROM maintenance` + whereClause
	sqlStr += buildOrderBy(params.sort, map[string]string{
		"id":                  "maintenance_id",
		"date_of_maintenance": "date_of_maintenance",
		"cost":                "cost",
	})
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	records := []interface{}{}
	var totalCount int
	for rows.Next() {
		var m models.Maintenance
		if err := scanMaintenance(rows, &m, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	sendListResponse(w, records, totalCount, params)
}

func (s *Server) getMaintenance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var m models.Maintenance
	err := scanMaintenance(s.DB.QueryRowContext(r.Context(),
		`SELECT `+maintenanceColumns+` FROM maintenance WHERE maintenance_id = $1`, id), &m)
	if err == sql.ErrNoRows {
		http.Error(w, "maintenance record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) updateMaintenance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	sets := []string{}
	args := []interface{}{}
	arg := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, arg))
		args = append(args, val)
		arg++
	}

	if req.DateOfMaintenance != nil {
		add("date_of_maintenance", *req.DateOfMaintenance)
	}
	if req.Type != nil {
		add("type", *req.Type)
	}
	if req.Provider != nil {
		add("provider", *req.Provider)
	}
	if req.Cost != nil {
		add("cost", *req.Cost)
	}
	if req.Notes != nil {
		add("notes", *req.Notes)
	}
	if len(sets) == 0 {
		http.Error(w, "no fields to update", 400)
		return
	}

	args = append(args, id)
	sqlStr := fmt.Sprintf(`UPDATE maintenance SET %s WHERE maintenance_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), arg, maintenanceColumns)

	var m models.Maintenance
	err := scanMaintenance(s.DB.QueryRowContext(r.Context(), sqlStr, args...), &m)
	if err == sql.ErrNoRows {
		http.Error(w, "maintenance record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMaintenance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM maintenance WHERE maintenance_id = $1`, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "maintenance record not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
