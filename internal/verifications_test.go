package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scom-asset-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionRejectsInvalidJSON(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("POST", "/verifications/sessions", strings.NewReader("{"))
	w := httptest.NewRecorder()
	server.createSession(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON")
}

func TestCreateSessionRejectsMissingFields(t *testing.T) {
	server := &Server{}

	body, err := json.Marshal(models.CreateSessionRequest{Name: "Q3 count"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/verifications/sessions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.createSession(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSessionRejectsNonNumericID(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("GET", "/verifications/sessions/abc", nil)
	req = withURLParam(req, "id", "abc")
	w := httptest.NewRecorder()
	server.getSession(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid session ID")
}

func TestUpdateSessionStatusRejectsUnknownStatus(t *testing.T) {
	server := &Server{}

	body, err := json.Marshal(models.SessionStatusRequest{Status: "PAUSED"})
	require.NoError(t, err)

	req := httptest.NewRequest("PATCH", "/verifications/sessions/1/status", bytes.NewReader(body))
	req = withURLParam(req, "id", "1")
	w := httptest.NewRecorder()
	server.updateSessionStatus(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignVerificatorsRequiresUserIDs(t *testing.T) {
	server := &Server{}

	body, err := json.Marshal(models.AssignVerificatorsRequest{})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/verifications/sessions/1/verificators", bytes.NewReader(body))
	req = withURLParam(req, "id", "1")
	w := httptest.NewRecorder()
	server.assignVerificators(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user_ids is required")
}

func TestRecordVerificationRejectsBadStatus(t *testing.T) {
	server := &Server{}

	body, err := json.Marshal(models.RecordVerificationRequest{StatusObserved: "BROKEN"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/verifications/verify/EGYI-2033-EGOO491-000001", bytes.NewReader(body))
	req = withURLParam(req, "assetID", "EGYI-2033-EGOO491-000001")
	w := httptest.NewRecorder()
	server.recordVerification(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordVerificationRejectsDisposedStatus(t *testing.T) {
	server := &Server{}

	body, err := json.Marshal(models.RecordVerificationRequest{StatusObserved: models.StatusDisposed})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/verifications/verify/EGYI-2033-EGOO491-000001", bytes.NewReader(body))
	req = withURLParam(req, "assetID", "EGYI-2033-EGOO491-000001")
	w := httptest.NewRecorder()
	server.recordVerification(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "approved disposal")
}
