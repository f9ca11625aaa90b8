package internal

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"scom-asset-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT category_id, name, description FROM asset_categories ORDER BY name`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	categories := []models.AssetCategory{}
	for rows.Next() {
		var c models.AssetCategory
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Description); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var c models.AssetCategory
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT category_id, name, description FROM asset_categories WHERE category_id = $1`, id).
		Scan(&c.CategoryID, &c.Name, &c.Description)
	if err == sql.ErrNoRows {
		http.Error(w, "category not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var in models.AssetCategory
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.Name == "" {
		http.Error(w, "name is required", 400)
		return
	}
	in.CategoryID = uuid.NewString()

	_, err := s.DB.ExecContext(r.Context(), `
		INSERT INTO asset_categories (category_id, name, description) VALUES ($1, $2, $3)`,
		in.CategoryID, in.Name, in.Description)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "category already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.AssetCategory
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.Name == "" {
		http.Error(w, "name is required", 400)
		return
	}

	var out models.AssetCategory
	err := s.DB.QueryRowContext(r.Context(), `
		UPDATE asset_categories SET name = $1, description = $2 WHERE category_id = $3
		RETURNING category_id, name, description`,
		in.Name, in.Description, id).
		Scan(&out.CategoryID, &out.Name, &out.Description)
	if err == sql.ErrNoRows {
		http.Error(w, "category not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM asset_categories WHERE category_id = $1`, id)
	if err != nil {
		http.Error(w, "category is referenced by sub-categories or assets", http.StatusConflict)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "category not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSubCategories(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT sub_category_id, category_id, name, useful_life_years, description
		FROM asset_sub_categories WHERE category_id = $1 ORDER BY name`, categoryID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	subs := []models.AssetSubCategory{}
	for rows.Next() {
		var sc models.AssetSubCategory
		if err := rows.Scan(&sc.SubCategoryID, &sc.CategoryID, &sc.Name, &sc.UsefulLifeYears, &sc.Description); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		subs = append(subs, sc)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) createSubCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")

	var in models.AssetSubCategory
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.Name == "" {
		http.Error(w, "name is required", 400)
		return
	}
	in.SubCategoryID = uuid.NewString()
	in.CategoryID = categoryID

	_, err := s.DB.ExecContext(r.Context(), `
		INSERT INTO asset_sub_categories (sub_category_id, category_id, name, useful_life_years, description)
		VALUES ($1, $2, $3, $4, $5)`,
		in.SubCategoryID, in.CategoryID, in.Name, in.UsefulLifeYears, in.Description)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "sub-category already exists", http.StatusConflict)
			return
		}
		// Unknown parent category shows up as an FK violation.
		http.Error(w, err.Error(), 400)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateSubCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.AssetSubCategory
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.Name == "" {
		http.Error(w, "name is required", 400)
		return
	}

	var out models.AssetSubCategory
	err := s.DB.QueryRowContext(r.Context(), `
		UPDATE asset_sub_categories SET name = $1, useful_life_years = $2, description = $3
		WHERE sub_category_id = $4
		RETURNING sub_category_id, category_id, name, useful_life_years, description`,
		in.Name, in.UsefulLifeYears, in.Description, id).
		Scan(&out.SubCategoryID, &out.CategoryID, &out.Name, &out.UsefulLifeYears, &out.Description)
	if err == sql.ErrNoRows {
		http.Error(w, "sub-category not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteSubCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM asset_sub_categories WHERE sub_category_id = $1`, id)
	if err != nil {
		http.Error(w, "sub-category is referenced by assets", http.StatusConflict)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "sub-category not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
