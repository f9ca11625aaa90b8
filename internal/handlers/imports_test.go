package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"scom-asset-api/pkg/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportsHandler_UploadExcel(t *testing.T) {
	handler := &ImportsHandler{
		DB:         nil,
		MaxBytes:   20 << 20,
		DefaultMap: importer.DefaultMappingPath,
	}

	t.Run("Rejects non-multipart content type", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/imports/excel", nil)
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		handler.UploadExcel(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "content-type must be multipart/form-data")
	})

	t.Run("Rejects missing file", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("dry_run", "true")
		writer.Close()

		req := httptest.NewRequest("POST", "/imports/excel", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		w := httptest.NewRecorder()
		handler.UploadExcel(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "file is required")
	})

	t.Run("Rejects non-xlsx file", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		fileWriter, _ := writer.CreateFormFile("file", "register.xls")
		fileWriter.Write([]byte("fake excel content"))
		writer.Close()

		req := httptest.NewRequest("POST", "/imports/excel", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		w := httptest.NewRecorder()
		handler.UploadExcel(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "only .xlsx files are accepted")
	})

	t.Run("Reports import failure for unreadable workbook", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("mapping", "testdata/does-not-exist.yaml")
		fileWriter, _ := writer.CreateFormFile("file", "register.xlsx")
		fileWriter.Write([]byte("not really a workbook"))
		writer.Close()

		req := httptest.NewRequest("POST", "/imports/excel", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		w := httptest.NewRecorder()
		handler.UploadExcel(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "IMPORT_FAILED")
	})
}

func TestIsXLSX(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected bool
	}{
		{"Valid xlsx", "register.xlsx", true},
		{"Valid xlsx uppercase", "REGISTER.XLSX", true},
		{"Valid xlsx mixed case", "Register.XlSx", true},
		{"Invalid xls", "register.xls", false},
		{"Invalid xlsm", "register.xlsm", false},
		{"Invalid txt", "register.txt", false},
		{"No extension", "register", false},
		{"Empty filename", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := &multipart.FileHeader{Filename: tt.filename}
			assert.Equal(t, tt.expected, isXLSX(header))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "test",
		"count":   42,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "test", response["message"])
	assert.Equal(t, float64(42), response["count"])
}
