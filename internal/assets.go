package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"scom-asset-api/internal/models"

	"github.com/go-chi/chi/v5"
)

const assetColumns = `scom_asset_id, asset_name, tag_number, brand, model,
	acquisition_price, currency, date_of_acquisition, type_of_acquisition,
	vendor_name, vendor_account, purchase_order_number, rent_price, status,
	scom_category, useful_life_years, business_unit, funding_source_id,
	legal_entity_id, project_id, location_id, custodian_id, category_id,
	sub_category_id, vin_number, last_verified_by, last_verified_date,
	created_at, updated_at`

func scanAsset(row interface{ Scan(...any) error }, a *models.Asset, extra ...any) error {
	dest := []any{
		&a.SCOMAssetID, &a.AssetName, &a.TagNumber, &a.Brand, &a.Model,
		&a.AcquisitionPrice, &a.Currency, &a.DateOfAcquisition, &a.TypeOfAcquisition,
		&a.VendorName, &a.VendorAccount, &a.PurchaseOrderNumber, &a.RentPrice, &a.Status,
		&a.SCOMCategory, &a.UsefulLifeYears, &a.BusinessUnit, &a.FundingSourceID,
		&a.LegalEntityID, &a.ProjectID, &a.LocationID, &a.CustodianID, &a.CategoryID,
		&a.SubCategoryID, &a.VINNumber, &a.LastVerifiedBy, &a.LastVerifiedDate,
		&a.CreatedAt, &a.UpdatedAt,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

// LIST with basic filters & pagination
func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("(asset_name ILIKE $%d OR tag_number ILIKE $%d OR scom_asset_id ILIKE $%d)", arg, arg, arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", arg))
		args = append(args, status)
		arg++
	}
	if loc := strings.TrimSpace(r.URL.Query().Get("location_id")); loc != "" {
		clauses = append(clauses, fmt.Sprintf("location_id = $%d", arg))
		args = append(args, loc)
		arg++
	}
	if cust := strings.TrimSpace(r.URL.Query().Get("custodian_id")); cust != "" {
		clauses = append(clauses, fmt.Sprintf("custodian_id = $%d", arg))
		args = append(args, cust)
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() as total_count FROM assets%s`, assetColumns, whereClause)

	allowedSort := map[string]string{
		"id":         "scom_asset_id",
		"name":       "asset_name",
		"status":     "status",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	assets := []interface{}{}
	var totalCount int
	for rows.Next() {
		var a models.Asset
		if err := scanAsset(rows, &a, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	sendListResponse(w, assets, totalCount, params)
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var a models.Asset
	err := scanAsset(s.DB.QueryRowContext(r.Context(),
		fmt.Sprintf(`SELECT %s FROM assets WHERE scom_asset_id = $1`, assetColumns), id), &a)
	if err == sql.ErrNoRows {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// createAsset generates the SCOM ID server-side. Concurrent creates under the
// same prefix can race on the generated ID, so the insert retries a few times
// before giving up.
func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.TypeOfAcquisition == "" {
		req.TypeOfAcquisition = "purchase"
	}

	var created models.Asset
	for attempt := 0; ; attempt++ {
		scomID, err := s.generateSCOMID(r.Context(), s.DB, req.LegalEntityID, req.LocationID, req.ProjectID)
		if err != nil {
			if _, ok := models.KindOf(err); ok {
				writeDomainError(w, err)
			} else {
				http.Error(w, err.Error(), 500)
			}
			return
		}

		err = scanAsset(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
			INSERT INTO assets (scom_asset_id, asset_name, tag_number, brand, model,
				acquisition_price, currency, date_of_acquisition, type_of_acquisition,
				vendor_name, vendor_account, purchase_order_number, rent_price, status,
				scom_category, useful_life_years, business_unit, funding_source_id,
				legal_entity_id, project_id, location_id, custodian_id, category_id,
				sub_category_id, vin_number)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
			RETURNING %s`, assetColumns),
			scomID, req.AssetName, req.TagNumber, req.Brand, req.Model,
			req.AcquisitionPrice, req.Currency, req.DateOfAcquisition, req.TypeOfAcquisition,
			req.VendorName, req.VendorAccount, req.PurchaseOrderNumber, req.RentPrice, req.Status,
			req.SCOMCategory, req.UsefulLifeYears, req.BusinessUnit, req.FundingSourceID,
			req.LegalEntityID, req.ProjectID, req.LocationID, req.CustodianID, req.CategoryID,
			req.SubCategoryID, req.VINNumber), &created)
		if err == nil {
			break
		}
		if isUniqueViolation(err) {
			if strings.Contains(strings.ToLower(err.Error()), "tag_number") {
				http.Error(w, "tag_number already exists", http.StatusConflict)
				return
			}
			// Lost the race on the generated ID.
			if attempt < 2 {
				continue
			}
			http.Error(w, "could not allocate an asset ID, retry", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	add := func(col string, val interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, argIndex))
		args = append(args, val)
		argIndex++
	}

	if req.AssetName != nil {
		add("asset_name", *req.AssetName)
	}
	if req.TagNumber != nil {
		add("tag_number", *req.TagNumber)
	}
	if req.Brand != nil {
		add("brand", *req.Brand)
	}
	if req.Model != nil {
		add("model", *req.Model)
	}
	if req.AcquisitionPrice != nil {
		add("acquisition_price", *req.AcquisitionPrice)
	}
	if req.Currency != nil {
		add("currency", *req.Currency)
	}
	if req.DateOfAcquisition != nil {
		add("date_of_acquisition", *req.DateOfAcquisition)
	}
	if req.TypeOfAcquisition != nil {
		add("type_of_acquisition", *req.TypeOfAcquisition)
	}
	if req.VendorName != nil {
		add("vendor_name", *req.VendorName)
	}
	if req.VendorAccount != nil {
		add("vendor_account", *req.VendorAccount)
	}
	if req.PurchaseOrderNumber != nil {
		add("purchase_order_number", *req.PurchaseOrderNumber)
	}
	if req.RentPrice != nil {
		add("rent_price", *req.RentPrice)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	if req.SCOMCategory != nil {
		add("scom_category", *req.SCOMCategory)
	}
	if req.UsefulLifeYears != nil {
		add("useful_life_years", *req.UsefulLifeYears)
	}
	if req.BusinessUnit != nil {
		add("business_unit", *req.BusinessUnit)
	}
	if req.FundingSourceID != nil {
		add("funding_source_id", *req.FundingSourceID)
	}
	if req.CustodianID != nil {
		add("custodian_id", *req.CustodianID)
	}
	if req.CategoryID != nil {
		add("category_id", *req.CategoryID)
	}
	if req.SubCategoryID != nil {
		add("sub_category_id", *req.SubCategoryID)
	}
	if req.LocationID != nil {
		add("location_id", *req.LocationID)
	}
	if req.VINNumber != nil {
		add("vin_number", *req.VINNumber)
	}

	if len(setParts) == 0 {
		http.Error(w, "no fields to update", 400)
		return
	}

	setParts = append(setParts, "updated_at = now()")
	sqlStr := fmt.Sprintf(`UPDATE assets SET %s WHERE scom_asset_id = $%d RETURNING %s`,
		strings.Join(setParts, ", "), argIndex, assetColumns)
	args = append(args, id)

	var out models.Asset
	if err := scanAsset(s.DB.QueryRowContext(r.Context(), sqlStr, args...), &out); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		if isUniqueViolation(err) {
			http.Error(w, "tag_number already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM assets WHERE scom_asset_id = $1`, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key") {
			http.Error(w, "asset has dependent records", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
