package internal

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"scom-asset-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT project_id, project_code, name FROM projects ORDER BY project_code`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ProjectID, &p.ProjectCode, &p.Name); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p models.Project
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT project_id, project_code, name FROM projects WHERE project_id = $1`, id).
		Scan(&p.ProjectID, &p.ProjectCode, &p.Name)
	if err == sql.ErrNoRows {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var in models.Project
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.ProjectCode == "" || in.Name == "" {
		http.Error(w, "project_code and name are required", 400)
		return
	}
	in.ProjectID = uuid.NewString()

	_, err := s.DB.ExecContext(r.Context(), `
		INSERT INTO projects (project_id, project_code, name) VALUES ($1, $2, $3)`,
		in.ProjectID, in.ProjectCode, in.Name)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "project already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.Project
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.ProjectCode == "" || in.Name == "" {
		http.Error(w, "project_code and name are required", 400)
		return
	}

	var out models.Project
	err := s.DB.QueryRowContext(r.Context(), `
		UPDATE projects SET project_code = $1, name = $2 WHERE project_id = $3
		RETURNING project_id, project_code, name`,
		in.ProjectCode, in.Name, id).
		Scan(&out.ProjectID, &out.ProjectCode, &out.Name)
	if err == sql.ErrNoRows {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM projects WHERE project_id = $1`, id)
	if err != nil {
		http.Error(w, "project is referenced by assets", http.StatusConflict)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
