package internal

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"scom-asset-api/internal/models"
)

// SCOM asset IDs have the form "<entity>-<location>-<project>-NNNNNN" where
// the three code segments come from master data and NNNNNN is a zero-padded
// sequence scoped to that prefix.

// composePrefix joins the three master-data codes into an ID prefix.
func composePrefix(entityCode, locationCode, projectCode string) string {
	return entityCode + "-" + locationCode + "-" + projectCode
}

// composeSCOMID renders a full asset ID from a prefix and sequence number.
func composeSCOMID(prefix string, seq int) string {
	return fmt.Sprintf("%s-%06d", prefix, seq)
}

// nextSequence returns one past the highest sequence among existing IDs that
// share the prefix. IDs whose suffix does not parse as a number are skipped,
// so one malformed row cannot block generation.
func nextSequence(ids []string, prefix string) int {
	max := 0
	lead := prefix + "-"
	for _, id := range ids {
		if !strings.HasPrefix(id, lead) {
			continue
		}
		suffix := id[len(lead):]
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

// generateSCOMID builds the next asset ID for the given entity, location and
// project. All three must exist; a missing reference is a validation error.
func (s *Server) generateSCOMID(ctx context.Context, q querier, legalEntityID, locationID, projectID string) (string, error) {
	var entityCode, locationCode, projectCode string

	err := q.QueryRowContext(ctx, `SELECT legal_entity_code FROM legal_entities WHERE legal_entity_id = $1`, legalEntityID).Scan(&entityCode)
	if err == sql.ErrNoRows {
		return "", models.ValidationError("legal entity %s not found", legalEntityID)
	}
	if err != nil {
		return "", err
	}

	err = q.QueryRowContext(ctx, `SELECT location_code FROM locations WHERE location_id = $1`, locationID).Scan(&locationCode)
	if err == sql.ErrNoRows {
		return "", models.ValidationError("location %s not found", locationID)
	}
	if err != nil {
		return "", err
	}

	err = q.QueryRowContext(ctx, `SELECT project_code FROM projects WHERE project_id = $1`, projectID).Scan(&projectCode)
	if err == sql.ErrNoRows {
		return "", models.ValidationError("project %s not found", projectID)
	}
	if err != nil {
		return "", err
	}

	prefix := composePrefix(entityCode, locationCode, projectCode)

	rows, err := q.QueryContext(ctx, `SELECT scom_asset_id FROM assets WHERE scom_asset_id LIKE $1`, prefix+"-%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return composeSCOMID(prefix, nextSequence(ids, prefix)), nil
}
