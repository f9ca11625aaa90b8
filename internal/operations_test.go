package internal

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scom-asset-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflowID(t *testing.T) {
	id := newWorkflowID()
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, newWorkflowID())
}

func TestCreateTransfersRejectsInvalidJSON(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("POST", "/operations/transfers", strings.NewReader("{broken"))
	w := httptest.NewRecorder()
	server.createTransfers(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON")
}

func TestCreateTransfersRejectsAmbiguousPairs(t *testing.T) {
	server := &Server{}

	from := "u1"
	to := "u2"
	fromLoc := "l1"
	toLoc := "l2"
	body, err := json.Marshal(models.CreateTransferRequest{
		AssetIDs:       []string{"EGYI-2033-EGOO491-000001"},
		FromUserID:     &from,
		ToUserID:       &to,
		FromLocationID: &fromLoc,
		ToLocationID:   &toLoc,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/operations/transfers", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.createTransfers(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot specify both")
}

func TestCreateTransfersRejectsMissingPair(t *testing.T) {
	server := &Server{}

	body, err := json.Marshal(models.CreateTransferRequest{
		AssetIDs: []string{"EGYI-2033-EGOO491-000001"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/operations/transfers", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.createTransfers(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user-to-user or location-to-location")
}

func TestUpdateTransferStatusRejectsBadStatus(t *testing.T) {
	server := &Server{}

	for _, status := range []string{"PENDING", "CANCELLED", ""} {
		body, err := json.Marshal(models.StatusUpdateRequest{Status: models.WorkflowStatus(status)})
		require.NoError(t, err)

		req := httptest.NewRequest("PATCH", "/operations/transfers/abc/status", bytes.NewReader(body))
		req = withURLParam(req, "id", "abc")
		w := httptest.NewRecorder()
		server.updateTransferStatus(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "status %q", status)
		assert.Contains(t, w.Body.String(), "APPROVED or REJECTED")
	}
}

func TestCreateDisposalsRejectsNonMultipart(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("POST", "/operations/disposals", strings.NewReader(`{"asset_ids":["a"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.createDisposals(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid multipart form")
}

func TestCreateDisposalsRejectsBadPayload(t *testing.T) {
	server := &Server{}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("payload", "{not json")
	writer.Close()

	req := httptest.NewRequest("POST", "/operations/disposals", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	server.createDisposals(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid payload JSON")
}

func TestCreateDisposalsRejectsInvalidType(t *testing.T) {
	server := &Server{}

	payload, err := json.Marshal(models.CreateDisposalRequest{
		AssetIDs:       []string{"EGYI-2033-EGOO491-000001"},
		TypeOfDisposal: "SOLD",
	})
	require.NoError(t, err)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("payload", string(payload))
	writer.Close()

	req := httptest.NewRequest("POST", "/operations/disposals", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	server.createDisposals(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid disposal type")
}

func TestCreateDisposalsRequiresDocument(t *testing.T) {
	server := &Server{}

	payload, err := json.Marshal(models.CreateDisposalRequest{
		AssetIDs:       []string{"EGYI-2033-EGOO491-000001"},
		TypeOfDisposal: models.DisposalDestroyed,
		Reason:         "water damage",
	})
	require.NoError(t, err)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("payload", string(payload))
	writer.Close()

	req := httptest.NewRequest("POST", "/operations/disposals", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	server.createDisposals(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "justification document is required")
}
