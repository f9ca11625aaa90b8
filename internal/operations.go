package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"scom-asset-api/internal/auth"
	"scom-asset-api/internal/models"
	"scom-asset-api/internal/pdf"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// newWorkflowID returns a 32-char hex identifier for workflow records.
func newWorkflowID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

const transferColumns = `transfer_id, asset_id, status, requested_at,
	from_user_id, to_user_id, from_location_id, to_location_id, reason, initiated_by`

func scanTransfer(row interface{ Scan(...any) error }, t *models.Transfer, extra ...any) error {
	dest := []any{
		&t.TransferID, &t.AssetID, &t.Status, &t.RequestedAt,
		&t.FromUserID, &t.ToUserID, &t.FromLocationID, &t.ToLocationID,
		&t.Reason, &t.InitiatedBy,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

const disposalColumns = `disposal_id, asset_id, type_of_disposal, reason,
	requested_by, requested_at, status, document_path`

func scanDisposal(row interface{ Scan(...any) error }, d *models.Disposal, extra ...any) error {
	dest := []any{
		&d.DisposalID, &d.AssetID, &d.TypeOfDisposal, &d.Reason,
		&d.RequestedBy, &d.RequestedAt, &d.Status, &d.DocumentPath,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

// assetState is the minimal asset view the workflow needs.
type assetState struct {
	status models.AssetStatus
}

func (s *Server) lookupAssetState(ctx context.Context, q querier, assetID string) (*assetState, error) {
	var st assetState
	err := q.QueryRowContext(ctx, `SELECT status FROM assets WHERE scom_asset_id = $1`, assetID).Scan(&st.status)
	if err == sql.ErrNoRows {
		return nil, models.NotFoundError("asset %s not found", assetID)
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// createTransfers creates one PENDING transfer per asset. Partial failure is
// reported per asset rather than aborting the batch.
func (s *Server) createTransfers(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	initiatedBy := auth.UserIDFromContext(r.Context())
	result := models.TransferBatchResult{Created: []models.Transfer{}}

	for _, assetID := range req.AssetIDs {
		if _, err := s.lookupAssetState(r.Context(), s.DB, assetID); err != nil {
			result.Failed = append(result.Failed, models.BatchFailure{AssetID: assetID, Error: err.Error()})
			continue
		}

		var t models.Transfer
		err := scanTransfer(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
			INSERT INTO transfers (transfer_id, asset_id, status, from_user_id, to_user_id,
				from_location_id, to_location_id, reason, initiated_by)
			VALUES ($1, $2, 'PENDING', $3, $4, $5, $6, $7, $8)
			RETURNING %s`, transferColumns),
			newWorkflowID(), assetID, req.FromUserID, req.ToUserID,
			req.FromLocationID, req.ToLocationID, req.Reason, initiatedBy), &t)
		if err != nil {
			result.Failed = append(result.Failed, models.BatchFailure{AssetID: assetID, Error: err.Error()})
			continue
		}
		s.Metrics.RecordWorkflowDecision("transfer", string(models.WorkflowPending))
		result.Created = append(result.Created, t)
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) listTransfers(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", arg))
		args = append(args, status)
		arg++
	}
	if assetID := strings.TrimSpace(r.URL.Query().Get("asset_id")); assetID != "" {
		clauses = append(clauses, fmt.Sprintf("asset_id = $%d", arg))
		args = append(args, assetID)
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() as total_count FROM transfers%s`, transferColumns, whereClause)
	sqlStr += buildOrderBy(params.sort, map[string]string{
		"id":           "transfer_id",
		"requested_at": "requested_at",
		"status":       "status",
	})
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	transfers := []interface{}{}
	var totalCount int
	for rows.Next() {
		var t models.Transfer
		if err := scanTransfer(rows, &t, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	sendListResponse(w, transfers, totalCount, params)
}

func (s *Server) getTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var t models.Transfer
	err := scanTransfer(s.DB.QueryRowContext(r.Context(),
		fmt.Sprintf(`SELECT %s FROM transfers WHERE transfer_id = $1`, transferColumns), id), &t)
	if err == sql.ErrNoRows {
		http.Error(w, "transfer not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// updateTransferStatus approves or rejects a pending transfer. Approval
// cascades custodian/location onto the asset in the same transaction; the
// Good Issue Note render afterwards is best-effort and never rolls back the
// committed approval.
func (s *Server) updateTransferStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	tx, err := s.DB.BeginTx(r.Context(), nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	var t models.Transfer
	err = scanTransfer(tx.QueryRowContext(r.Context(),
		fmt.Sprintf(`SELECT %s FROM transfers WHERE transfer_id = $1 FOR UPDATE`, transferColumns), id), &t)
	if err == sql.ErrNoRows {
		http.Error(w, "transfer not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	if err := models.CheckPending("transfer", t.Status); err != nil {
		writeDomainError(w, err)
		return
	}

	if _, err := tx.ExecContext(r.Context(),
		`UPDATE transfers SET status = $1 WHERE transfer_id = $2`, req.Status, id); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	t.Status = req.Status

	if req.Status == models.WorkflowApproved {
		// Cascade only the populated to-fields.
		if t.ToUserID != nil && *t.ToUserID != "" {
			if _, err := tx.ExecContext(r.Context(),
				`UPDATE assets SET custodian_id = $1, updated_at = now() WHERE scom_asset_id = $2`,
				*t.ToUserID, t.AssetID); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
		}
		if t.ToLocationID != nil && *t.ToLocationID != "" {
			if _, err := tx.ExecContext(r.Context(),
				`UPDATE assets SET location_id = $1, updated_at = now() WHERE scom_asset_id = $2`,
				*t.ToLocationID, t.AssetID); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	s.Metrics.RecordWorkflowDecision("transfer", string(req.Status))

	result := models.TransferApprovalResult{Transfer: t}
	if req.Status == models.WorkflowApproved {
		rel, err := s.renderGoodIssueNote(r.Context(), t, auth.FullNameFromContext(r.Context()))
		if err != nil {
			log.Printf("good issue note for transfer %s: %v", t.TransferID, err)
			s.Metrics.RecordDocument("good_issue_note", "error")
			msg := err.Error()
			result.DocumentError = &msg
		} else {
			s.Metrics.RecordDocument("good_issue_note", "ok")
			result.Document = &rel
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// renderGoodIssueNote builds and stores the handover PDF for a transfer.
func (s *Server) renderGoodIssueNote(ctx context.Context, t models.Transfer, approvedBy string) (string, error) {
	data := pdf.GoodIssueNoteData{
		TransferID: t.TransferID,
		ApprovedBy: approvedBy,
		ApprovedAt: time.Now(),
	}

	if t.FromUserID != nil {
		data.FromHolder = s.lookupUserName(ctx, *t.FromUserID)
	}
	if t.ToUserID != nil {
		data.ToHolder = s.lookupUserName(ctx, *t.ToUserID)
	}
	if t.FromLocationID != nil {
		data.FromLocation = s.lookupLocationName(ctx, *t.FromLocationID)
	}
	if t.ToLocationID != nil {
		data.ToLocation = s.lookupLocationName(ctx, *t.ToLocationID)
	}

	line, err := s.assetLine(ctx, t.AssetID)
	if err != nil {
		return "", err
	}
	data.Assets = []pdf.AssetLine{line}

	rendered, err := s.PDF.GoodIssueNote(data)
	if err != nil {
		return "", err
	}
	return s.Docs.SaveBytes("documents", "good_issue_note_"+t.TransferID+".pdf", rendered)
}

func (s *Server) lookupUserName(ctx context.Context, userID string) string {
	var name string
	if err := s.DB.QueryRowContext(ctx, `SELECT full_name FROM users WHERE user_id = $1`, userID).Scan(&name); err != nil {
		return userID
	}
	return name
}

func (s *Server) lookupLocationName(ctx context.Context, locationID string) string {
	var name string
	if err := s.DB.QueryRowContext(ctx, `SELECT location_name FROM locations WHERE location_id = $1`, locationID).Scan(&name); err != nil {
		return locationID
	}
	return name
}

func (s *Server) assetLine(ctx context.Context, assetID string) (pdf.AssetLine, error) {
	var line pdf.AssetLine
	err := s.DB.QueryRowContext(ctx, `
		SELECT scom_asset_id, asset_name, tag_number, status
		FROM assets WHERE scom_asset_id = $1`, assetID).
		Scan(&line.SCOMAssetID, &line.AssetName, &line.TagNumber, &line.Status)
	return line, err
}

// goodIssueNote re-renders the handover PDF for an approved transfer.
func (s *Server) goodIssueNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var t models.Transfer
	err := scanTransfer(s.DB.QueryRowContext(r.Context(),
		fmt.Sprintf(`SELECT %s FROM transfers WHERE transfer_id = $1`, transferColumns), id), &t)
	if err == sql.ErrNoRows {
		http.Error(w, "transfer not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	if t.Status != models.WorkflowApproved {
		writeDomainError(w, models.InvalidStateError("transfer is %s; good issue notes exist only for approved transfers", t.Status))
		return
	}

	data := pdf.GoodIssueNoteData{
		TransferID: t.TransferID,
		ApprovedBy: auth.FullNameFromContext(r.Context()),
		ApprovedAt: time.Now(),
	}
	if t.FromUserID != nil {
		data.FromHolder = s.lookupUserName(r.Context(), *t.FromUserID)
	}
	if t.ToUserID != nil {
		data.ToHolder = s.lookupUserName(r.Context(), *t.ToUserID)
	}
	if t.FromLocationID != nil {
		data.FromLocation = s.lookupLocationName(r.Context(), *t.FromLocationID)
	}
	if t.ToLocationID != nil {
		data.ToLocation = s.lookupLocationName(r.Context(), *t.ToLocationID)
	}
	line, err := s.assetLine(r.Context(), t.AssetID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	data.Assets = []pdf.AssetLine{line}

	rendered, err := s.PDF.GoodIssueNote(data)
	if err != nil {
		s.Metrics.RecordDocument("good_issue_note", "error")
		http.Error(w, err.Error(), 500)
		return
	}
	s.Metrics.RecordDocument("good_issue_note", "ok")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=good_issue_note_%s.pdf", t.TransferID))
	w.Write(rendered)
}

// assetHolderForm renders the custody acknowledgement PDF for a user.
func (s *Server) assetHolderForm(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var fullName string
	err := s.DB.QueryRowContext(r.Context(), `SELECT full_name FROM users WHERE user_id = $1`, userID).Scan(&fullName)
	if err == sql.ErrNoRows {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT scom_asset_id, asset_name, tag_number, status
		FROM assets WHERE custodian_id = $1 ORDER BY scom_asset_id`, userID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	var lines []pdf.AssetLine
	for rows.Next() {
		var line pdf.AssetLine
		if err := rows.Scan(&line.SCOMAssetID, &line.AssetName, &line.TagNumber, &line.Status); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	rendered, err := s.PDF.AssetHolderForm(pdf.AssetHolderFormData{
		CustodianName: fullName,
		GeneratedAt:   time.Now(),
		Assets:        lines,
	})
	if err != nil {
		s.Metrics.RecordDocument("asset_holder_form", "error")
		http.Error(w, err.Error(), 500)
		return
	}
	s.Metrics.RecordDocument("asset_holder_form", "ok")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=asset_holder_form_%s.pdf", userID))
	w.Write(rendered)
}

// createDisposals takes a multipart request: a "payload" JSON part and a
// "document" file part. The justification document is stored once and shared
// by every disposal in the batch.
func (s *Server) createDisposals(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", 400)
		return
	}

	var req models.CreateDisposalRequest
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &req); err != nil {
		http.Error(w, "invalid payload JSON", 400)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		http.Error(w, "justification document is required", 400)
		return
	}
	defer file.Close()

	docPath, err := s.Docs.Save("disposals", header.Filename, file)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	requestedBy := auth.UserIDFromContext(r.Context())
	result := models.DisposalBatchResult{Created: []models.Disposal{}}

	for _, assetID := range req.AssetIDs {
		st, err := s.lookupAssetState(r.Context(), s.DB, assetID)
		if err != nil {
			result.Failed = append(result.Failed, models.BatchFailure{AssetID: assetID, Error: err.Error()})
			continue
		}
		if st.status == models.StatusDisposed {
			result.Failed = append(result.Failed, models.BatchFailure{AssetID: assetID, Error: "asset is already disposed"})
			continue
		}

		var d models.Disposal
		err = scanDisposal(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
			INSERT INTO disposals (disposal_id, asset_id, type_of_disposal, reason, requested_by, status, document_path)
			VALUES ($1, $2, $3, $4, $5, 'PENDING', $6)
			RETURNING %s`, disposalColumns),
			newWorkflowID(), assetID, req.TypeOfDisposal, req.Reason, requestedBy, docPath), &d)
		if err != nil {
			result.Failed = append(result.Failed, models.BatchFailure{AssetID: assetID, Error: err.Error()})
			continue
		}
		s.Metrics.RecordWorkflowDecision("disposal", string(models.WorkflowPending))
		result.Created = append(result.Created, d)
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) listDisposals(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", arg))
		args = append(args, status)
		arg++
	}
	if assetID := strings.TrimSpace(r.URL.Query().Get("asset_id")); assetID != "" {
		clauses = append(clauses, fmt.Sprintf("asset_id = $%d", arg))
		args = append(args, assetID)
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() as total_count FROM disposals%s`, disposalColumns, whereClause)
	sqlStr += buildOrderBy(params.sort, map[string]string{
		"id":           "disposal_id",
		"requested_at": "requested_at",
		"status":       "status",
	})
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	disposals := []interface{}{}
	var totalCount int
	for rows.Next() {
		var d models.Disposal
		if err := scanDisposal(rows, &d, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		disposals = append(disposals, d)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	sendListResponse(w, disposals, totalCount, params)
}

func (s *Server) getDisposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var d models.Disposal
	err := scanDisposal(s.DB.QueryRowContext(r.Context(),
		fmt.Sprintf(`SELECT %s FROM disposals WHERE disposal_id = $1`, disposalColumns), id), &d)
	if err == sql.ErrNoRows {
		http.Error(w, "disposal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// getDisposalDocument streams the stored justification document.
func (s *Server) getDisposalDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var docPath string
	err := s.DB.QueryRowContext(r.Context(),
		`SELECT document_path FROM disposals WHERE disposal_id = $1`, id).Scan(&docPath)
	if err == sql.ErrNoRows {
		http.Error(w, "disposal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	f, err := s.Docs.Open(docPath)
	if err != nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("stream disposal document %s: %v", id, err)
	}
}

// updateDisposalStatus approves or rejects a pending disposal. Approval marks
// the asset DISPOSED in the same transaction.
func (s *Server) updateDisposalStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	tx, err := s.DB.BeginTx(r.Context(), nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	var d models.Disposal
	err = scanDisposal(tx.QueryRowContext(r.Context(),
		fmt.Sprintf(`SELECT %s FROM disposals WHERE disposal_id = $1 FOR UPDATE`, disposalColumns), id), &d)
	if err == sql.ErrNoRows {
		http.Error(w, "disposal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	if err := models.CheckPending("disposal", d.Status); err != nil {
		writeDomainError(w, err)
		return
	}

	if _, err := tx.ExecContext(r.Context(),
		`UPDATE disposals SET status = $1 WHERE disposal_id = $2`, req.Status, id); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	d.Status = req.Status

	if req.Status == models.WorkflowApproved {
		if _, err := tx.ExecContext(r.Context(),
			`UPDATE assets SET status = 'DISPOSED', updated_at = now() WHERE scom_asset_id = $1`,
			d.AssetID); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	s.Metrics.RecordWorkflowDecision("disposal", string(req.Status))

	writeJSON(w, http.StatusOK, d)
}
