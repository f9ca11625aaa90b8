package internal

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"scom-asset-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) listVendors(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT vendor_id, vendor_name, vendor_account FROM vendors ORDER BY vendor_name`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	vendors := []models.Vendor{}
	for rows.Next() {
		var v models.Vendor
		if err := rows.Scan(&v.VendorID, &v.VendorName, &v.VendorAccount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, vendors)
}

func (s *Server) getVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var v models.Vendor
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT vendor_id, vendor_name, vendor_account FROM vendors WHERE vendor_id = $1`, id).
		Scan(&v.VendorID, &v.VendorName, &v.VendorAccount)
	if err == sql.ErrNoRows {
		http.Error(w, "vendor not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) createVendor(w http.ResponseWriter, r *http.Request) {
	var in models.Vendor
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.VendorName == "" {
		http.Error(w, "vendor_name is required", 400)
		return
	}
	in.VendorID = uuid.NewString()

	_, err := s.DB.ExecContext(r.Context(), `
		INSERT INTO vendors (vendor_id, vendor_name, vendor_account) VALUES ($1, $2, $3)`,
		in.VendorID, in.VendorName, in.VendorAccount)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "vendor already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.Vendor
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.VendorName == "" {
		http.Error(w, "vendor_name is required", 400)
		return
	}

	var out models.Vendor
	err := s.DB.QueryRowContext(r.Context(), `
		UPDATE vendors SET vendor_name = $1, vendor_account = $2 WHERE vendor_id = $3
		RETURNING vendor_id, vendor_name, vendor_account`,
		in.VendorName, in.VendorAccount, id).
		Scan(&out.VendorID, &out.VendorName, &out.VendorAccount)
	if err == sql.ErrNoRows {
		http.Error(w, "vendor not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM vendors WHERE vendor_id = $1`, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "vendor not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
