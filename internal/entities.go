package internal

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"scom-asset-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) listLegalEntities(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT legal_entity_id, legal_entity_code, legal_entity_name
		FROM legal_entities ORDER BY legal_entity_code`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	entities := []models.LegalEntity{}
	for rows.Next() {
		var e models.LegalEntity
		if err := rows.Scan(&e.LegalEntityID, &e.LegalEntityCode, &e.LegalEntityName); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, entities)
}

func (s *Server) getLegalEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var e models.LegalEntity
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT legal_entity_id, legal_entity_code, legal_entity_name
		FROM legal_entities WHERE legal_entity_id = $1`, id).
		Scan(&e.LegalEntityID, &e.LegalEntityCode, &e.LegalEntityName)
	if err == sql.ErrNoRows {
		http.Error(w, "legal entity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createLegalEntity(w http.ResponseWriter, r *http.Request) {
	var in models.LegalEntity
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.LegalEntityCode == "" || in.LegalEntityName == "" {
		http.Error(w, "legal_entity_code and legal_entity_name are required", 400)
		return
	}
	in.LegalEntityID = uuid.NewString()

	_, err := s.DB.ExecContext(r.Context(), `
		INSERT INTO legal_entities (legal_entity_id, legal_entity_code, legal_entity_name)
		VALUES ($1, $2, $3)`, in.LegalEntityID, in.LegalEntityCode, in.LegalEntityName)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "legal entity already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateLegalEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.LegalEntity
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.LegalEntityCode == "" || in.LegalEntityName == "" {
		http.Error(w, "legal_entity_code and legal_entity_name are required", 400)
		return
	}

	var out models.LegalEntity
	err := s.DB.QueryRowContext(r.Context(), `
		UPDATE legal_entities SET legal_entity_code = $1, legal_entity_name = $2
		WHERE legal_entity_id = $3
		RETURNING legal_entity_id, legal_entity_code, legal_entity_name`,
		in.LegalEntityCode, in.LegalEntityName, id).
		Scan(&out.LegalEntityID, &out.LegalEntityCode, &out.LegalEntityName)
	if err == sql.ErrNoRows {
		http.Error(w, "legal entity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteLegalEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM legal_entities WHERE legal_entity_id = $1`, id)
	if err != nil {
		http.Error(w, "legal entity is referenced by assets", http.StatusConflict)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "legal entity not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
