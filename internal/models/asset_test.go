package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validCreateAssetRequest() CreateAssetRequest {
	return CreateAssetRequest{
		AssetName:     "Toyota Land Cruiser",
		TagNumber:     "TAG-0001",
		LegalEntityID: "le-1",
		LocationID:    "loc-1",
		ProjectID:     "prj-1",
	}
}

func TestCreateAssetRequestValidate(t *testing.T) {
	req := validCreateAssetRequest()
	assert.NoError(t, req.Validate())
	assert.Equal(t, StatusGood, req.Status, "empty status defaults to GOOD")

	req = validCreateAssetRequest()
	req.AssetName = ""
	assert.EqualError(t, req.Validate(), "asset_name and tag_number are required")

	req = validCreateAssetRequest()
	req.ProjectID = ""
	assert.EqualError(t, req.Validate(), "legal_entity_id, location_id and project_id are required")

	req = validCreateAssetRequest()
	req.Status = "BROKEN"
	assert.EqualError(t, req.Validate(), `invalid asset status "BROKEN"`)

	req = validCreateAssetRequest()
	req.Status = StatusDisposed
	assert.EqualError(t, req.Validate(), "assets cannot be created as DISPOSED; use a disposal request")
}

func TestUpdateAssetRequestValidate(t *testing.T) {
	assert.NoError(t, (&UpdateAssetRequest{}).Validate())

	fair := StatusFair
	assert.NoError(t, (&UpdateAssetRequest{Status: &fair}).Validate())

	disposed := StatusDisposed
	err := (&UpdateAssetRequest{Status: &disposed}).Validate()
	assert.EqualError(t, err, "status DISPOSED can only be set by an approved disposal")
	assert.True(t, IsKind(err, KindValidation))
}

func TestValidAssetStatus(t *testing.T) {
	for _, s := range []AssetStatus{StatusGood, StatusFair, StatusDamaged, StatusDisposed} {
		assert.True(t, ValidAssetStatus(s))
	}
	assert.False(t, ValidAssetStatus("good"))
	assert.False(t, ValidAssetStatus(""))
}
