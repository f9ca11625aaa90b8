package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scom-asset-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateAssetRejectsInvalidJSON(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("POST", "/assets", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	server.createAsset(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON")
}

func TestCreateAssetRejectsMissingFields(t *testing.T) {
	server := &Server{}

	body, err := json.Marshal(models.CreateAssetRequest{AssetName: "Laptop"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/assets", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.createAsset(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "tag_number")
}

func TestCreateAssetRejectsDisposedStatus(t *testing.T) {
	server := &Server{}

	in := models.CreateAssetRequest{
		AssetName:     "Laptop",
		TagNumber:     "TAG-1",
		LegalEntityID: "le-1",
		LocationID:    "loc-1",
		ProjectID:     "prj-1",
		Status:        models.StatusDisposed,
	}
	body, err := json.Marshal(in)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/assets", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.createAsset(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "disposal request")
}

func TestUpdateAssetRejectsEmptyBody(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("PUT", "/assets/EGYI-2033-EGOO491-000001", strings.NewReader("{}"))
	req = withURLParam(req, "id", "EGYI-2033-EGOO491-000001")
	w := httptest.NewRecorder()
	server.updateAsset(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no fields to update")
}

func TestUpdateAssetRejectsDirectDisposal(t *testing.T) {
	server := &Server{}

	disposed := models.StatusDisposed
	body, err := json.Marshal(models.UpdateAssetRequest{Status: &disposed})
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/assets/EGYI-2033-EGOO491-000001", bytes.NewReader(body))
	req = withURLParam(req, "id", "EGYI-2033-EGOO491-000001")
	w := httptest.NewRecorder()
	server.updateAsset(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "approved disposal")
}
