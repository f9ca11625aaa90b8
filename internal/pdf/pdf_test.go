package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleAssets = []AssetLine{
	{SCOMAssetID: "EGYI-2033-EGOO491-000001", AssetName: "Laptop", TagNumber: "TAG-001", Status: "GOOD"},
	{SCOMAssetID: "EGYI-2033-EGOO491-000002", AssetName: "Generator", TagNumber: "TAG-002", Status: "FAIR"},
}

func TestGoodIssueNote(t *testing.T) {
	r := NewRenderer()

	data, err := r.GoodIssueNote(GoodIssueNoteData{
		TransferID: "3f2a1b9c",
		ApprovedBy: "Jane Doe",
		ApprovedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		FromHolder: "Old Custodian",
		ToHolder:   "New Custodian",
		Assets:     sampleAssets,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestGoodIssueNoteLocationPair(t *testing.T) {
	r := NewRenderer()

	data, err := r.GoodIssueNote(GoodIssueNoteData{
		TransferID:   "3f2a1b9c",
		ApprovedBy:   "Jane Doe",
		ApprovedAt:   time.Now(),
		FromLocation: "Warehouse A",
		ToLocation:   "Warehouse B",
		Assets:       sampleAssets,
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestGoodIssueNoteNoAssets(t *testing.T) {
	r := NewRenderer()

	data, err := r.GoodIssueNote(GoodIssueNoteData{
		TransferID: "3f2a1b9c",
		ApprovedBy: "Jane Doe",
		ApprovedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestAssetHolderForm(t *testing.T) {
	r := NewRenderer()

	data, err := r.AssetHolderForm(AssetHolderFormData{
		CustodianName: "John Smith",
		GeneratedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Assets:        sampleAssets,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
