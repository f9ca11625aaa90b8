package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionRequestValidate(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)

	tests := []struct {
		name    string
		req     CreateSessionRequest
		wantErr string
	}{
		{
			name: "valid",
			req:  CreateSessionRequest{Name: "Q3 count", StartDate: start, EndDate: end},
		},
		{
			name:    "missing name",
			req:     CreateSessionRequest{StartDate: start, EndDate: end},
			wantErr: "name is required",
		},
		{
			name:    "missing dates",
			req:     CreateSessionRequest{Name: "Q3 count"},
			wantErr: "start_date and end_date are required",
		},
		{
			name:    "end before start",
			req:     CreateSessionRequest{Name: "Q3 count", StartDate: end, EndDate: start},
			wantErr: "end_date must be after start_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.True(t, IsKind(err, KindValidation))
		})
	}
}

func TestSessionStatusRequestValidate(t *testing.T) {
	assert.NoError(t, (&SessionStatusRequest{Status: SessionOpen}).Validate())
	assert.NoError(t, (&SessionStatusRequest{Status: SessionClosed}).Validate())

	err := (&SessionStatusRequest{Status: "PAUSED"}).Validate()
	require.Error(t, err)
	assert.Equal(t, "status must be OPEN or CLOSED", err.Error())
}

func TestRecordVerificationRequestValidate(t *testing.T) {
	for _, status := range []AssetStatus{StatusGood, StatusFair, StatusDamaged} {
		req := RecordVerificationRequest{StatusObserved: status}
		assert.NoError(t, req.Validate(), "status %s", status)
	}

	err := (&RecordVerificationRequest{StatusObserved: "BROKEN"}).Validate()
	require.Error(t, err)
	assert.Equal(t, `invalid observed status "BROKEN"`, err.Error())
}

func TestRecordVerificationRequestRejectsDisposed(t *testing.T) {
	err := (&RecordVerificationRequest{StatusObserved: StatusDisposed}).Validate()
	require.Error(t, err)
	assert.Equal(t, "status DISPOSED can only be set by an approved disposal", err.Error())
	assert.True(t, IsKind(err, KindValidation))
}
