package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

func TestLoadMapping(t *testing.T) {
	cfg, err := LoadMapping("testdata/mapping.yaml")
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "GOOD", cfg.Defaults["status"])

	sheet, ok := cfg.Sheets["Assets"]
	require.True(t, ok)
	assert.Equal(t, "asset_name", sheet.Columns["Asset Name"].Field)
	assert.Contains(t, sheet.Aliases["Tag Number"], "Asset Tag")
}

func TestLoadMappingRejectsUnknownField(t *testing.T) {
	_, err := LoadMapping("testdata/bad_mapping.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "serial_number"`)
}

func TestLoadMappingMissingFile(t *testing.T) {
	_, err := LoadMapping("testdata/nope.yaml")
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		value     string
		valueType string
		want      interface{}
		wantErr   bool
	}{
		{"Toyota", "text", "Toyota", false},
		{"Toyota", "", "Toyota", false},
		{"5", "int", 5, false},
		{"abc", "int", nil, true},
		{"1,250.50", "numeric", 1250.50, false},
		{"abc", "numeric", nil, true},
		{"2024-03-15", "date", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"15/03/2024", "date", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"not a date", "date", nil, true},
		{"x", "geometry", nil, true},
	}

	for _, tt := range tests {
		got, err := parseValue(tt.value, tt.valueType)
		if tt.wantErr {
			assert.Error(t, err, "value %q type %q", tt.value, tt.valueType)
			continue
		}
		require.NoError(t, err, "value %q type %q", tt.value, tt.valueType)
		assert.Equal(t, tt.want, got)
	}
}

func newSheetRow(t *testing.T, values ...string) (*xlsx.Sheet, *xlsx.Row) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Assets")
	require.NoError(t, err)
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
	return sheet, row
}

func TestHeaderIndex(t *testing.T) {
	cfg, err := LoadMapping("testdata/mapping.yaml")
	require.NoError(t, err)
	sheetCfg := cfg.Sheets["Assets"]

	sheet, row := newSheetRow(t, "Asset Tag", "Name", "Acquisition Price", "Ignored Column")
	index := headerIndex(sheet, row, sheetCfg)

	// Aliases resolve to the canonical header names.
	assert.Equal(t, 0, index["Tag Number"])
	assert.Equal(t, 1, index["Asset Name"])
	assert.Equal(t, 2, index["Acquisition Price"])
	assert.NotContains(t, index, "Ignored Column")
}

func TestExtractRow(t *testing.T) {
	cfg, err := LoadMapping("testdata/mapping.yaml")
	require.NoError(t, err)
	sheetCfg := cfg.Sheets["Assets"]

	sheet, header := newSheetRow(t, "Tag Number", "Asset Name", "Acquisition Price", "Useful Life Years")
	headers := headerIndex(sheet, header, sheetCfg)

	data := sheet.AddRow()
	data.AddCell().SetString("TAG-0001")
	data.AddCell().SetString("Generator")
	data.AddCell().SetString("1500")
	data.AddCell().SetString("10")

	// Row is missing the required legal_entity_id/location_id/project_id.
	_, empty, err := extractRow(data, headers, sheetCfg, cfg.Defaults)
	assert.False(t, empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is required")

	blank := sheet.AddRow()
	_, empty, err = extractRow(blank, headers, sheetCfg, cfg.Defaults)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestExtractRowAppliesDefaults(t *testing.T) {
	cfg := &MappingConfig{
		Defaults: map[string]string{"status": "GOOD", "currency": "USD"},
		Sheets: map[string]SheetConfig{
			"Assets": {
				Columns: map[string]ColumnConfig{
					"Asset Name":   {Field: "asset_name", Type: "text"},
					"Tag Number":   {Field: "tag_number", Type: "text"},
					"Legal Entity": {Field: "legal_entity_id", Type: "text"},
					"Location":     {Field: "location_id", Type: "text"},
					"Project":      {Field: "project_id", Type: "text"},
				},
			},
		},
	}
	sheetCfg := cfg.Sheets["Assets"]

	sheet, header := newSheetRow(t, "Asset Name", "Tag Number", "Legal Entity", "Location", "Project")
	headers := headerIndex(sheet, header, sheetCfg)

	data := sheet.AddRow()
	for _, v := range []string{"Generator", "TAG-0001", "le-1", "loc-1", "prj-1"} {
		data.AddCell().SetString(v)
	}

	fields, empty, err := extractRow(data, headers, sheetCfg, cfg.Defaults)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, "Generator", fields["asset_name"])
	assert.Equal(t, "GOOD", fields["status"])
	assert.Equal(t, "USD", fields["currency"])
}
