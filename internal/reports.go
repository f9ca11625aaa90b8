package internal

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"scom-asset-api/internal/auth"
	"scom-asset-api/internal/models"
	"scom-asset-api/internal/rbac"
)

// dashboard returns landing-page counters. Which counters appear depends on
// the caller's roles; a Verificator sees nothing a manager would.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	roles := auth.RolesFromContext(r.Context())
	metrics := map[string]int{}

	if rbac.CanManage(roles) || rbac.HasAnyRole(roles, rbac.Direction) {
		counters := map[string]string{
			"total_assets":            `SELECT COUNT(*) FROM assets`,
			"pending_transfers":       `SELECT COUNT(*) FROM transfers WHERE status = 'PENDING'`,
			"pending_disposals":       `SELECT COUNT(*) FROM disposals WHERE status = 'PENDING'`,
			"verifications_last_week": `SELECT COUNT(*) FROM asset_verifications WHERE scanned_at >= now() - interval '7 days'`,
		}
		for key, query := range counters {
			var n int
			if err := s.DB.QueryRowContext(r.Context(), query).Scan(&n); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			metrics[key] = n
		}
	}

	if rbac.HasAnyRole(roles, rbac.ITAdmin) {
		var n int
		if err := s.DB.QueryRowContext(r.Context(),
			`SELECT COUNT(*) FROM maintenance`).Scan(&n); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		metrics["maintenance_records"] = n

		if err := s.DB.QueryRowContext(r.Context(),
			`SELECT COUNT(*) FROM users WHERE is_active`).Scan(&n); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		metrics["active_users"] = n
	}

	labels := []string{}
	for _, role := range rbac.Normalize(roles) {
		labels = append(labels, string(role))
	}
	writeJSON(w, http.StatusOK, models.DashboardMetrics{
		Roles:   labels,
		Metrics: metrics,
	})
}

func (s *Server) assetsByStatus(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT status, COUNT(*), COALESCE(SUM(acquisition_price), 0)
		FROM assets GROUP BY status ORDER BY status`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	report := []models.AssetsByStatusRow{}
	for rows.Next() {
		var row models.AssetsByStatusRow
		if err := rows.Scan(&row.Status, &row.Count, &row.TotalValue); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) assetsByLocation(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT a.location_id, COALESCE(l.location_name, a.location_id), COUNT(*)
		FROM assets a
		LEFT JOIN locations l ON l.location_id = a.location_id
		GROUP BY a.location_id, l.location_name
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	report := []models.AssetsByLocationRow{}
	for rows.Next() {
		var row models.AssetsByLocationRow
		if err := rows.Scan(&row.LocationID, &row.LocationName, &row.Count); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) assetsByCustodian(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			http.Error(w, "limit must be between 1 and 100", 400)
			return
		}
		limit = n
	}

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT a.custodian_id, COALESCE(u.full_name, a.custodian_id), COUNT(*)
		FROM assets a
		LEFT JOIN users u ON u.user_id = a.custodian_id
		WHERE a.custodian_id IS NOT NULL AND a.custodian_id <> ''
		GROUP BY a.custodian_id, u.full_name
		ORDER BY COUNT(*) DESC
		LIMIT $1`, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	report := []models.AssetsByCustodianRow{}
	for rows.Next() {
		var row models.AssetsByCustodianRow
		if err := rows.Scan(&row.CustodianID, &row.CustodianName, &row.Count); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// parsePeriod reads optional start/end query params as RFC 3339 dates.
func parsePeriod(r *http.Request) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("start")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			t, err = time.Parse("2006-01-02", raw)
			if err != nil {
				return nil, nil, models.ValidationError("start must be an RFC 3339 timestamp or YYYY-MM-DD date")
			}
		}
		start = &t
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("end")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			t, err = time.Parse("2006-01-02", raw)
			if err != nil {
				return nil, nil, models.ValidationError("end must be an RFC 3339 timestamp or YYYY-MM-DD date")
			}
		}
		end = &t
	}
	return start, end, nil
}

func (s *Server) verificationCoverage(w http.ResponseWriter, r *http.Request) {
	start, end, err := parsePeriod(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	report := models.VerificationCoverageReport{PeriodStart: start, PeriodEnd: end}
	if err := s.DB.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM assets`).Scan(&report.TotalAssets); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	clauses := []string{}
	args := []interface{}{}
	if start != nil {
		args = append(args, *start)
		clauses = append(clauses, "scanned_at >= $"+strconv.Itoa(len(args)))
	}
	if end != nil {
		args = append(args, *end)
		clauses = append(clauses, "scanned_at <= $"+strconv.Itoa(len(args)))
	}
	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	err = s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(DISTINCT asset_id) FROM asset_verifications`+whereClause, args...).
		Scan(&report.VerifiedCount)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	if report.TotalAssets > 0 {
		report.CoveragePercentage = float64(report.VerifiedCount) / float64(report.TotalAssets) * 100
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) transferSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parsePeriod(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	clauses := []string{}
	args := []interface{}{}
	if start != nil {
		args = append(args, *start)
		clauses = append(clauses, "requested_at >= $"+strconv.Itoa(len(args)))
	}
	if end != nil {
		args = append(args, *end)
		clauses = append(clauses, "requested_at <= $"+strconv.Itoa(len(args)))
	}
	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT status, COUNT(*) FROM transfers`+whereClause+` GROUP BY status`, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	report := models.TransferSummaryReport{PeriodStart: start, PeriodEnd: end}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		report.TotalTransfers += count
		switch models.WorkflowStatus(status) {
		case models.WorkflowPending:
			report.PendingCount = count
		case models.WorkflowApproved:
			report.ApprovedCount = count
		case models.WorkflowRejected:
			report.RejectedCount = count
		}
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) totalValue(w http.ResponseWriter, r *http.Request) {
	report := models.TotalValueReport{ByCategory: []models.CategoryValueRow{}}

	err := s.DB.QueryRowContext(r.Context(),
		`SELECT COALESCE(SUM(acquisition_price), 0), COUNT(*) FROM assets`).
		Scan(&report.TotalValue, &report.AssetCount)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT COALESCE(NULLIF(scom_category, ''), 'uncategorized'), COALESCE(SUM(acquisition_price), 0)
		FROM assets GROUP BY scom_category ORDER BY SUM(acquisition_price) DESC`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var row models.CategoryValueRow
		if err := rows.Scan(&row.Category, &row.Value); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		report.ByCategory = append(report.ByCategory, row)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) maintenanceDue(w http.ResponseWriter, r *http.Request) {
	threshold := 365
	if raw := r.URL.Query().Get("days_threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "days_threshold must be a positive integer", 400)
			return
		}
		threshold = n
	}

	// Never-serviced assets surface first, then the longest-overdue ones.
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT a.scom_asset_id, a.asset_name, MAX(m.date_of_maintenance)
		FROM assets a
		LEFT JOIN maintenance m ON m.asset_id = a.scom_asset_id
		WHERE a.status <> 'DISPOSED'
		GROUP BY a.scom_asset_id, a.asset_name
		HAVING MAX(m.date_of_maintenance) IS NULL
		    OR MAX(m.date_of_maintenance) < now() - make_interval(days => $1)
		ORDER BY MAX(m.date_of_maintenance) ASC NULLS FIRST
		LIMIT 50`, threshold)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	report := []models.MaintenanceDueRow{}
	now := time.Now()
	for rows.Next() {
		row := models.MaintenanceDueRow{RecommendedIntervalDays: threshold}
		if err := rows.Scan(&row.AssetID, &row.AssetName, &row.LastMaintenanceDate); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if row.LastMaintenanceDate != nil {
			days := int(now.Sub(*row.LastMaintenanceDate).Hours() / 24)
			row.DaysSinceMaintenance = &days
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
