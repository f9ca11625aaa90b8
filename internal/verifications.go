package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"scom-asset-api/internal/auth"
	"scom-asset-api/internal/models"
	"scom-asset-api/internal/rbac"

	"github.com/go-chi/chi/v5"
)

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	var sess models.VerificationSession
	err := s.DB.QueryRowContext(r.Context(), `
		INSERT INTO verification_sessions (name, start_date, end_date, status, created_by)
		VALUES ($1, $2, $3, 'OPEN', $4)
		RETURNING id, name, start_date, end_date, status, created_by, created_at`,
		req.Name, req.StartDate, req.EndDate, auth.UserIDFromContext(r.Context())).
		Scan(&sess.ID, &sess.Name, &sess.StartDate, &sess.EndDate, &sess.Status, &sess.CreatedBy, &sess.CreatedAt)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	clause := ""
	args := []interface{}{}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		clause = " WHERE status = $1"
		args = append(args, status)
	}

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT id, name, start_date, end_date, status, created_by, created_at
		FROM verification_sessions`+clause+` ORDER BY created_at DESC`, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	sessions := []models.VerificationSession{}
	for rows.Next() {
		var sess models.VerificationSession
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.StartDate, &sess.EndDate,
			&sess.Status, &sess.CreatedBy, &sess.CreatedAt); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid session ID", 400)
		return
	}

	var sess models.VerificationSession
	err = s.DB.QueryRowContext(r.Context(), `
		SELECT id, name, start_date, end_date, status, created_by, created_at
		FROM verification_sessions WHERE id = $1`, id).
		Scan(&sess.ID, &sess.Name, &sess.StartDate, &sess.EndDate, &sess.Status, &sess.CreatedBy, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) updateSessionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid session ID", 400)
		return
	}

	var req models.SessionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	var sess models.VerificationSession
	err = s.DB.QueryRowContext(r.Context(), `
		UPDATE verification_sessions SET status = $1 WHERE id = $2
		RETURNING id, name, start_date, end_date, status, created_by, created_at`,
		req.Status, id).
		Scan(&sess.ID, &sess.Name, &sess.StartDate, &sess.EndDate, &sess.Status, &sess.CreatedBy, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// assignVerificators links users to a session. Repeat assignments are
// idempotent; unknown users are skipped and reported.
func (s *Server) assignVerificators(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid session ID", 400)
		return
	}

	var req models.AssignVerificatorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if len(req.UserIDs) == 0 {
		http.Error(w, "user_ids is required", 400)
		return
	}

	var exists bool
	err = s.DB.QueryRowContext(r.Context(),
		`SELECT EXISTS (SELECT 1 FROM verification_sessions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if !exists {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	assigned := []string{}
	skipped := []string{}
	for _, userID := range req.UserIDs {
		var userExists bool
		if err := s.DB.QueryRowContext(r.Context(),
			`SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&userExists); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if !userExists {
			skipped = append(skipped, userID)
			continue
		}
		if _, err := s.DB.ExecContext(r.Context(), `
			INSERT INTO verification_assignments (session_id, user_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, userID); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		assigned = append(assigned, userID)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": id,
		"assigned":   assigned,
		"skipped":    skipped,
	})
}

// isAssigned reports whether the user is assigned to the session.
func (s *Server) isAssigned(r *http.Request, sessionID int64, userID string) (bool, error) {
	var assigned bool
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT EXISTS (SELECT 1 FROM verification_assignments WHERE session_id = $1 AND user_id = $2)`,
		sessionID, userID).Scan(&assigned)
	return assigned, err
}

// recordVerification registers one scan. Inside a session the caller must be
// assigned (or hold management roles) and the session must be OPEN; outside a
// session any Logistician, Verificator or manager may scan. The scan and the
// asset's last-verified cache update commit in one transaction.
func (s *Server) recordVerification(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")

	var req models.RecordVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	roles := auth.RolesFromContext(r.Context())

	if _, err := s.lookupAssetState(r.Context(), s.DB, assetID); err != nil {
		if _, ok := models.KindOf(err); ok {
			writeDomainError(w, err)
		} else {
			http.Error(w, err.Error(), 500)
		}
		return
	}

	if req.SessionID != nil {
		var status models.SessionStatus
		err := s.DB.QueryRowContext(r.Context(),
			`SELECT status FROM verification_sessions WHERE id = $1`, *req.SessionID).Scan(&status)
		if err == sql.ErrNoRows {
			writeDomainError(w, models.NotFoundError("verification session %d not found", *req.SessionID))
			return
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if status != models.SessionOpen {
			writeDomainError(w, models.InvalidStateError("verification session %d is %s", *req.SessionID, status))
			return
		}

		if !rbac.CanManage(roles) {
			assigned, err := s.isAssigned(r, *req.SessionID, userID)
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			if !assigned {
				writeDomainError(w, models.PermissionError("not assigned to verification session %d", *req.SessionID))
				return
			}
		}
	} else if !rbac.HasAnyRole(roles, rbac.Logistician, rbac.Verificator, rbac.ITAdmin, rbac.SupplyChainManager) {
		writeDomainError(w, models.PermissionError("insufficient role to record verifications"))
		return
	}

	tx, err := s.DB.BeginTx(r.Context(), nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	var v models.AssetVerification
	err = tx.QueryRowContext(r.Context(), `
		INSERT INTO asset_verifications (asset_id, session_id, verificator_id, status_observed, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, asset_id, session_id, verificator_id, status_observed, notes, scanned_at`,
		assetID, req.SessionID, userID, req.StatusObserved, req.Notes).
		Scan(&v.ID, &v.AssetID, &v.SessionID, &v.VerificatorID, &v.StatusObserved, &v.Notes, &v.ScannedAt)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	verifiedBy := auth.FullNameFromContext(r.Context())
	if verifiedBy == "" {
		verifiedBy = userID
	}

	// The asset's last-verified fields are a cache over this history; the
	// source of truth is the latest scan by scanned_at. The cache stores the
	// verificator's display name, the history keeps the user ID.
	if _, err := tx.ExecContext(r.Context(), `
		UPDATE assets SET status = $1, last_verified_by = $2, last_verified_date = $3, updated_at = now()
		WHERE scom_asset_id = $4`,
		req.StatusObserved, verifiedBy, v.ScannedAt, assetID); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	if err := tx.Commit(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	s.Metrics.RecordScan()

	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) listVerifications(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if assetID := strings.TrimSpace(r.URL.Query().Get("asset_id")); assetID != "" {
		clauses = append(clauses, fmt.Sprintf("asset_id = $%d", arg))
		args = append(args, assetID)
		arg++
	}
	if sessionID := strings.TrimSpace(r.URL.Query().Get("session_id")); sessionID != "" {
		clauses = append(clauses, fmt.Sprintf("session_id = $%d", arg))
		args = append(args, sessionID)
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := `SELECT id, asset_id, session_id, verificator_id, status_observed, notes, scanned_at,
		COUNT(*) OVER() as total_count FROM asset_verifications` + whereClause
	sqlStr += buildOrderBy(params.sort, map[string]string{
		"id":         "id",
		"scanned_at": "scanned_at",
	})
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	verifications := []interface{}{}
	var totalCount int
	for rows.Next() {
		var v models.AssetVerification
		if err := rows.Scan(&v.ID, &v.AssetID, &v.SessionID, &v.VerificatorID,
			&v.StatusObserved, &v.Notes, &v.ScannedAt, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		verifications = append(verifications, v)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	sendListResponse(w, verifications, totalCount, params)
}

// sessionReport summarizes scans recorded in one session.
func (s *Server) sessionReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid session ID", 400)
		return
	}

	var sess models.VerificationSession
	err = s.DB.QueryRowContext(r.Context(), `
		SELECT id, name, start_date, end_date, status, created_by, created_at
		FROM verification_sessions WHERE id = $1`, id).
		Scan(&sess.ID, &sess.Name, &sess.StartDate, &sess.EndDate, &sess.Status, &sess.CreatedBy, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT status_observed, COUNT(*) FROM asset_verifications
		WHERE session_id = $1 GROUP BY status_observed`, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	byStatus := map[string]int{}
	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		byStatus[status] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	var verificators int
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM verification_assignments WHERE session_id = $1`, id).Scan(&verificators); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":      sess,
		"total_scans":  total,
		"by_status":    byStatus,
		"verificators": verificators,
	})
}
