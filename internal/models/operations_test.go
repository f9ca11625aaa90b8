package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCreateTransferRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateTransferRequest
		wantErr string
	}{
		{
			name: "user pair ok",
			req: CreateTransferRequest{
				AssetIDs:   []string{"EGYI-2033-EGOO491-000001"},
				FromUserID: strPtr("u1"),
				ToUserID:   strPtr("u2"),
			},
		},
		{
			name: "location pair ok",
			req: CreateTransferRequest{
				AssetIDs:       []string{"EGYI-2033-EGOO491-000001"},
				FromLocationID: strPtr("l1"),
				ToLocationID:   strPtr("l2"),
			},
		},
		{
			name:    "no asset IDs",
			req:     CreateTransferRequest{FromUserID: strPtr("u1"), ToUserID: strPtr("u2")},
			wantErr: "asset_ids is required",
		},
		{
			name:    "neither pair",
			req:     CreateTransferRequest{AssetIDs: []string{"a"}},
			wantErr: "transfer must be user-to-user or location-to-location",
		},
		{
			name: "half a user pair",
			req: CreateTransferRequest{
				AssetIDs:   []string{"a"},
				FromUserID: strPtr("u1"),
			},
			wantErr: "transfer must be user-to-user or location-to-location",
		},
		{
			name: "empty strings do not count as a pair",
			req: CreateTransferRequest{
				AssetIDs:   []string{"a"},
				FromUserID: strPtr(""),
				ToUserID:   strPtr("u2"),
			},
			wantErr: "transfer must be user-to-user or location-to-location",
		},
		{
			name: "both pairs rejected",
			req: CreateTransferRequest{
				AssetIDs:       []string{"a"},
				FromUserID:     strPtr("u1"),
				ToUserID:       strPtr("u2"),
				FromLocationID: strPtr("l1"),
				ToLocationID:   strPtr("l2"),
			},
			wantErr: "transfer cannot specify both a user pair and a location pair",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
			assert.True(t, IsKind(err, KindValidation))
		})
	}
}

func TestCheckPending(t *testing.T) {
	assert.NoError(t, CheckPending("transfer", WorkflowPending))

	err := CheckPending("transfer", WorkflowApproved)
	assert.EqualError(t, err, "transfer is already APPROVED and cannot be changed")
	assert.True(t, IsKind(err, KindInvalidState))

	err = CheckPending("disposal", WorkflowRejected)
	assert.EqualError(t, err, "disposal is already REJECTED and cannot be changed")
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestStatusUpdateRequestValidate(t *testing.T) {
	assert.NoError(t, (&StatusUpdateRequest{Status: WorkflowApproved}).Validate())
	assert.NoError(t, (&StatusUpdateRequest{Status: WorkflowRejected}).Validate())

	for _, status := range []WorkflowStatus{WorkflowPending, "", "approved", "CANCELLED"} {
		err := (&StatusUpdateRequest{Status: status}).Validate()
		assert.Error(t, err, "status %q should be rejected", status)
		assert.True(t, IsKind(err, KindValidation))
	}
}

func TestCreateDisposalRequestValidate(t *testing.T) {
	req := CreateDisposalRequest{
		AssetIDs:       []string{"a"},
		TypeOfDisposal: DisposalDonated,
	}
	assert.NoError(t, req.Validate())

	req.AssetIDs = nil
	assert.EqualError(t, req.Validate(), "asset_ids is required")

	req.AssetIDs = []string{"a"}
	req.TypeOfDisposal = "SOLD"
	assert.EqualError(t, req.Validate(), `invalid disposal type "SOLD"`)
}

func TestValidDisposalType(t *testing.T) {
	for _, dt := range []DisposalType{DisposalAuctionSold, DisposalDonated, DisposalDestroyed, DisposalLost} {
		assert.True(t, ValidDisposalType(dt))
	}
	assert.False(t, ValidDisposalType("RECYCLED"))
	assert.False(t, ValidDisposalType(""))
}

func TestCreateMaintenanceRequestValidate(t *testing.T) {
	req := CreateMaintenanceRequest{AssetID: "a", Type: "service"}
	assert.EqualError(t, req.Validate(), "date_of_maintenance is required")

	req = CreateMaintenanceRequest{Type: "service"}
	assert.EqualError(t, req.Validate(), "asset_id and type are required")
}
