package internal

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"scom-asset-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT location_id, location_code, location_name, site_name
		FROM locations ORDER BY location_code`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	locations := []models.Location{}
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.LocationID, &l.LocationCode, &l.LocationName, &l.SiteName); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

func (s *Server) getLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var l models.Location
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT location_id, location_code, location_name, site_name
		FROM locations WHERE location_id = $1`, id).
		Scan(&l.LocationID, &l.LocationCode, &l.LocationName, &l.SiteName)
	if err == sql.ErrNoRows {
		http.Error(w, "location not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) createLocation(w http.ResponseWriter, r *http.Request) {
	var in models.Location
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.LocationCode == "" || in.LocationName == "" {
		http.Error(w, "location_code and location_name are required", 400)
		return
	}
	in.LocationID = uuid.NewString()

	_, err := s.DB.ExecContext(r.Context(), `
		INSERT INTO locations (location_id, location_code, location_name, site_name)
		VALUES ($1, $2, $3, $4)`, in.LocationID, in.LocationCode, in.LocationName, in.SiteName)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "location already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.Location
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.LocationCode == "" || in.LocationName == "" {
		http.Error(w, "location_code and location_name are required", 400)
		return
	}

	var out models.Location
	err := s.DB.QueryRowContext(r.Context(), `
		UPDATE locations SET location_code = $1, location_name = $2, site_name = $3
		WHERE location_id = $4
		RETURNING location_id, location_code, location_name, site_name`,
		in.LocationCode, in.LocationName, in.SiteName, id).
		Scan(&out.LocationID, &out.LocationCode, &out.LocationName, &out.SiteName)
	if err == sql.ErrNoRows {
		http.Error(w, "location not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM locations WHERE location_id = $1`, id)
	if err != nil {
		http.Error(w, "location is referenced by assets", http.StatusConflict)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "location not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
