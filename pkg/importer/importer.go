// Package importer loads asset registers from Excel workbooks. Column
// headers are mapped to asset fields through a YAML mapping file, rows are
// matched to existing assets by tag number, and new rows receive a freshly
// generated SCOM ID.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"
)

const DefaultMappingPath = "configs/mapping/assets.yaml"

// Options configures one import run.
type Options struct {
	MappingPath string // default DefaultMappingPath
	DryRun      bool   // parse and validate, then roll back
	MaxErrors   int    // default 50
}

// RowError describes one failed row.
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// SheetSummary is the per-sheet outcome.
type SheetSummary struct {
	Name     string     `json:"name"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"error_samples,omitempty"`
}

// Summary is the overall outcome of an import run.
type Summary struct {
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Sheets   []SheetSummary `json:"sheets"`
	DryRun   bool           `json:"dry_run"`
}

// MappingConfig is the YAML mapping file.
type MappingConfig struct {
	Version  int                    `yaml:"version"`
	Defaults map[string]string      `yaml:"defaults"`
	Sheets   map[string]SheetConfig `yaml:"sheets"`
}

// SheetConfig maps one worksheet onto the assets table.
type SheetConfig struct {
	Aliases map[string][]string     `yaml:"aliases"`
	Columns map[string]ColumnConfig `yaml:"columns"`
}

// ColumnConfig binds a header name to an asset column.
type ColumnConfig struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
}

// assetColumns whitelists importable columns; everything else in the mapping
// file is rejected at load time.
var assetColumns = map[string]bool{
	"asset_name":            true,
	"tag_number":            true,
	"brand":                 true,
	"model":                 true,
	"acquisition_price":     true,
	"currency":              true,
	"date_of_acquisition":   true,
	"type_of_acquisition":   true,
	"vendor_name":           true,
	"vendor_account":        true,
	"purchase_order_number": true,
	"rent_price":            true,
	"status":                true,
	"scom_category":         true,
	"useful_life_years":     true,
	"business_unit":         true,
	"legal_entity_id":       true,
	"project_id":            true,
	"location_id":           true,
	"custodian_id":          true,
	"vin_number":            true,
}

// LoadMapping reads and validates the YAML mapping file.
func LoadMapping(path string) (*MappingConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	var cfg MappingConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse mapping file: %w", err)
	}
	if len(cfg.Sheets) == 0 {
		return nil, errors.New("mapping file defines no sheets")
	}
	for sheetName, sheet := range cfg.Sheets {
		for header, col := range sheet.Columns {
			if !assetColumns[col.Field] {
				return nil, fmt.Errorf("sheet %q header %q maps to unknown field %q", sheetName, header, col.Field)
			}
		}
	}
	return &cfg, nil
}

// ImportExcel runs one import inside a single transaction. With DryRun the
// transaction always rolls back, so the summary reflects what would happen.
func ImportExcel(ctx context.Context, db *pgxpool.Pool, r io.Reader, opts Options) (Summary, error) {
	summary := Summary{DryRun: opts.DryRun, Sheets: []SheetSummary{}}

	if opts.MappingPath == "" {
		opts.MappingPath = DefaultMappingPath
	}
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}

	mapping, err := LoadMapping(opts.MappingPath)
	if err != nil {
		return summary, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("read workbook: %w", err)
	}
	workbook, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("open workbook: %w", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return summary, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, sheet := range workbook.Sheets {
		sheetConfig, ok := mapping.Sheets[sheet.Name]
		if !ok {
			continue
		}

		sheetSummary := importSheet(ctx, tx, sheet, sheetConfig, mapping.Defaults)
		summary.Sheets = append(summary.Sheets, sheetSummary)
		summary.Inserted += sheetSummary.Inserted
		summary.Updated += sheetSummary.Updated
		summary.Skipped += sheetSummary.Skipped
		summary.Errors += sheetSummary.Errors

		if summary.Errors > opts.MaxErrors {
			return summary, fmt.Errorf("too many errors (%d), import aborted", summary.Errors)
		}
	}

	if opts.DryRun {
		return summary, nil
	}
	if err := tx.Commit(ctx); err != nil {
		return summary, fmt.Errorf("commit import: %w", err)
	}
	return summary, nil
}

// headerIndex resolves the sheet's header row into canonical header name ->
// column index, applying aliases from the mapping.
func headerIndex(sheet *xlsx.Sheet, row *xlsx.Row, config SheetConfig) map[string]int {
	canonical := map[string]string{}
	for header := range config.Columns {
		canonical[strings.ToUpper(header)] = header
	}
	for header, aliases := range config.Aliases {
		for _, alias := range aliases {
			canonical[strings.ToUpper(alias)] = header
		}
	}

	index := map[string]int{}
	for col := 0; col < sheet.MaxCol; col++ {
		name := strings.TrimSpace(row.GetCell(col).String())
		if name == "" {
			continue
		}
		if header, ok := canonical[strings.ToUpper(name)]; ok {
			index[header] = col
		}
	}
	return index
}

func importSheet(ctx context.Context, tx pgx.Tx, sheet *xlsx.Sheet, config SheetConfig, defaults map[string]string) SheetSummary {
	summary := SheetSummary{Name: sheet.Name}

	headerRow, err := sheet.Row(0)
	if err != nil {
		summary.Errors++
		summary.Samples = append(summary.Samples, RowError{Sheet: sheet.Name, Row: 1, Message: "missing header row"})
		return summary
	}
	headers := headerIndex(sheet, headerRow, config)
	if len(headers) == 0 {
		summary.Errors++
		summary.Samples = append(summary.Samples, RowError{Sheet: sheet.Name, Row: 1, Message: "no mapped columns found in header row"})
		return summary
	}

	fail := func(rowIdx int, msg string) {
		summary.Errors++
		if len(summary.Samples) < 10 {
			summary.Samples = append(summary.Samples, RowError{Sheet: sheet.Name, Row: rowIdx + 1, Message: msg})
		}
	}

	for rowIdx := 1; rowIdx < sheet.MaxRow; rowIdx++ {
		row, err := sheet.Row(rowIdx)
		if err != nil {
			break
		}

		fields, empty, err := extractRow(row, headers, config, defaults)
		if empty {
			summary.Skipped++
			continue
		}
		if err != nil {
			fail(rowIdx, err.Error())
			continue
		}

		tag, _ := fields["tag_number"].(string)
		if tag == "" {
			summary.Skipped++
			continue
		}

		var existingID string
		err = tx.QueryRow(ctx, `SELECT scom_asset_id FROM assets WHERE tag_number = $1`, tag).Scan(&existingID)
		switch {
		case err == nil:
			if err := updateAsset(ctx, tx, existingID, fields); err != nil {
				fail(rowIdx, err.Error())
				continue
			}
			summary.Updated++
		case errors.Is(err, pgx.ErrNoRows):
			if err := insertAsset(ctx, tx, fields); err != nil {
				fail(rowIdx, err.Error())
				continue
			}
			summary.Inserted++
		default:
			fail(rowIdx, err.Error())
		}
	}

	return summary
}

// extractRow converts one data row into asset fields. A row whose mapped
// cells are all blank is reported as empty and skipped.
func extractRow(row *xlsx.Row, headers map[string]int, config SheetConfig, defaults map[string]string) (map[string]interface{}, bool, error) {
	fields := map[string]interface{}{}
	blank := true

	for header, col := range headers {
		value := strings.TrimSpace(row.GetCell(col).String())
		if value == "" {
			continue
		}
		blank = false

		colConfig := config.Columns[header]
		parsed, err := parseValue(value, colConfig.Type)
		if err != nil {
			return nil, false, fmt.Errorf("column %q: %v", header, err)
		}
		fields[colConfig.Field] = parsed
	}
	if blank {
		return nil, true, nil
	}

	for field, value := range defaults {
		if _, set := fields[field]; !set && assetColumns[field] {
			fields[field] = value
		}
	}

	for _, required := range []string{"asset_name", "tag_number", "legal_entity_id", "location_id", "project_id"} {
		if _, ok := fields[required]; !ok {
			return nil, false, fmt.Errorf("%s is required", required)
		}
	}
	return fields, false, nil
}

func parseValue(value, valueType string) (interface{}, error) {
	switch strings.ToLower(valueType) {
	case "", "text":
		return value, nil
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", value)
		}
		return n, nil
	case "numeric":
		f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", value)
		}
		return f, nil
	case "date":
		for _, layout := range []string{"2006-01-02", "02/01/2006", "01/02/2006", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid date %q", value)
	default:
		return nil, fmt.Errorf("unknown column type %q", valueType)
	}
}

// nextSCOMID allocates the next sequential ID for the row's entity, location
// and project codes, inside the import transaction.
func nextSCOMID(ctx context.Context, tx pgx.Tx, fields map[string]interface{}) (string, error) {
	var entityCode, locationCode, projectCode string

	err := tx.QueryRow(ctx, `SELECT legal_entity_code FROM legal_entities WHERE legal_entity_id = $1`,
		fields["legal_entity_id"]).Scan(&entityCode)
	if err != nil {
		return "", fmt.Errorf("legal entity %v not found", fields["legal_entity_id"])
	}
	err = tx.QueryRow(ctx, `SELECT location_code FROM locations WHERE location_id = $1`,
		fields["location_id"]).Scan(&locationCode)
	if err != nil {
		return "", fmt.Errorf("location %v not found", fields["location_id"])
	}
	err = tx.QueryRow(ctx, `SELECT project_code FROM projects WHERE project_id = $1`,
		fields["project_id"]).Scan(&projectCode)
	if err != nil {
		return "", fmt.Errorf("project %v not found", fields["project_id"])
	}

	prefix := entityCode + "-" + locationCode + "-" + projectCode

	rows, err := tx.Query(ctx, `SELECT scom_asset_id FROM assets WHERE scom_asset_id LIKE $1`, prefix+"-%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		seq, err := strconv.Atoi(strings.TrimPrefix(id, prefix+"-"))
		if err != nil || seq < 0 {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", prefix, max+1), nil
}

func insertAsset(ctx context.Context, tx pgx.Tx, fields map[string]interface{}) error {
	id, err := nextSCOMID(ctx, tx, fields)
	if err != nil {
		return err
	}

	columns := []string{"scom_asset_id"}
	values := []interface{}{id}
	placeholders := []string{"$1"}
	for field, value := range fields {
		columns = append(columns, field)
		values = append(values, value)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(values)))
	}

	query := fmt.Sprintf(`INSERT INTO assets (%s) VALUES (%s)`,
		strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	_, err = tx.Exec(ctx, query, values...)
	return err
}

func updateAsset(ctx context.Context, tx pgx.Tx, assetID string, fields map[string]interface{}) error {
	sets := []string{}
	values := []interface{}{}
	for field, value := range fields {
		if field == "tag_number" {
			continue
		}
		values = append(values, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", field, len(values)))
	}
	if len(sets) == 0 {
		return nil
	}

	values = append(values, assetID)
	query := fmt.Sprintf(`UPDATE assets SET %s, updated_at = now() WHERE scom_asset_id = $%d`,
		strings.Join(sets, ", "), len(values))
	_, err := tx.Exec(ctx, query, values...)
	return err
}
