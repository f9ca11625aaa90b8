package internal

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"scom-asset-api/internal/models"

	"github.com/go-chi/chi/v5"
)

func photoURL(assetID string, photoID int64) string {
	return fmt.Sprintf("/assets/%s/photos/%d", assetID, photoID)
}

func (s *Server) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")

	if _, err := s.lookupAssetState(r.Context(), s.DB, assetID); err != nil {
		if _, ok := models.KindOf(err); ok {
			writeDomainError(w, err)
		} else {
			http.Error(w, err.Error(), 500)
		}
		return
	}

	var count int
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM asset_photos WHERE asset_id = $1`, assetID).Scan(&count); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if count >= models.MaxPhotosPerAsset {
		http.Error(w, fmt.Sprintf("asset already has %d photos", models.MaxPhotosPerAsset), http.StatusConflict)
		return
	}

	if err := r.ParseMultipartForm(16 << 20); err != nil {
		http.Error(w, "invalid multipart form", 400)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "photo file is required", 400)
		return
	}
	defer file.Close()

	switch strings.ToLower(path.Ext(header.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		http.Error(w, "unsupported image type", 400)
		return
	}

	rel, err := s.Docs.Save("photos/"+assetID, header.Filename, file)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	var p models.AssetPhoto
	err = s.DB.QueryRowContext(r.Context(), `
		INSERT INTO asset_photos (asset_id, filename, is_profile)
		VALUES ($1, $2, $3)
		RETURNING id, asset_id, filename, is_profile, created_at`,
		assetID, rel, count == 0).
		Scan(&p.ID, &p.AssetID, &p.Filename, &p.IsProfile, &p.CreatedAt)
	if err != nil {
		// The stored file is orphaned if the insert fails.
		_ = s.Docs.Remove(rel)
		http.Error(w, err.Error(), 500)
		return
	}
	p.URL = photoURL(assetID, p.ID)

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) listPhotos(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT id, asset_id, filename, is_profile, created_at
		FROM asset_photos WHERE asset_id = $1 ORDER BY created_at`, assetID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	photos := []models.AssetPhoto{}
	for rows.Next() {
		var p models.AssetPhoto
		if err := rows.Scan(&p.ID, &p.AssetID, &p.Filename, &p.IsProfile, &p.CreatedAt); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		p.URL = photoURL(assetID, p.ID)
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

func (s *Server) getPhoto(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")
	photoID, err := strconv.ParseInt(chi.URLParam(r, "photoID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid photo ID", 400)
		return
	}

	var filename string
	err = s.DB.QueryRowContext(r.Context(), `
		SELECT filename FROM asset_photos WHERE id = $1 AND asset_id = $2`,
		photoID, assetID).Scan(&filename)
	if err == sql.ErrNoRows {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	f, err := s.Docs.Open(filename)
	if err != nil {
		http.Error(w, "photo file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		w.Header().Set("Content-Type", "image/png")
	case ".webp":
		w.Header().Set("Content-Type", "image/webp")
	default:
		w.Header().Set("Content-Type", "image/jpeg")
	}
	io.Copy(w, f)
}

// deletePhoto removes the record and the stored file. When the profile photo
// goes away the oldest remaining photo takes over.
func (s *Server) deletePhoto(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")
	photoID, err := strconv.ParseInt(chi.URLParam(r, "photoID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid photo ID", 400)
		return
	}

	var filename string
	var wasProfile bool
	err = s.DB.QueryRowContext(r.Context(), `
		DELETE FROM asset_photos WHERE id = $1 AND asset_id = $2
		RETURNING filename, is_profile`,
		photoID, assetID).Scan(&filename, &wasProfile)
	if err == sql.ErrNoRows {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	if wasProfile {
		if _, err := s.DB.ExecContext(r.Context(), `
			UPDATE asset_photos SET is_profile = true
			WHERE id = (SELECT id FROM asset_photos WHERE asset_id = $1 ORDER BY created_at LIMIT 1)`,
			assetID); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}

	_ = s.Docs.Remove(filename)
	w.WriteHeader(http.StatusNoContent)
}
