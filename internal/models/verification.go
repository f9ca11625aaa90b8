package models

import (
	"time"
)

// SessionStatus is the state of a physical verification session.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// VerificationSession is a bounded period during which assigned users scan
// assets.
type VerificationSession struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    SessionStatus `json:"status"`
	CreatedBy string        `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
}

// CreateSessionRequest is the request body for opening a new session.
type CreateSessionRequest struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func (r *CreateSessionRequest) Validate() error {
	if r.Name == "" {
		return ValidationError("name is required")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return ValidationError("start_date and end_date are required")
	}
	if !r.EndDate.After(r.StartDate) {
		return ValidationError("end_date must be after start_date")
	}
	return nil
}

// SessionStatusRequest opens or closes a session.
type SessionStatusRequest struct {
	Status SessionStatus `json:"status"`
}

func (r *SessionStatusRequest) Validate() error {
	if r.Status != SessionOpen && r.Status != SessionClosed {
		return ValidationError("status must be OPEN or CLOSED")
	}
	return nil
}

// AssignVerificatorsRequest links users to a session.
type AssignVerificatorsRequest struct {
	UserIDs []string `json:"user_ids"`
}

// AssetVerification is one scan event. It always refreshes the parent
// asset's denormalized last-verified fields; those fields are a read cache
// re-derivable from this history (latest row by scanned_at per asset).
type AssetVerification struct {
	ID             int64       `json:"id"`
	AssetID        string      `json:"asset_id"`
	SessionID      *int64      `json:"session_id,omitempty"`
	VerificatorID  string      `json:"verificator_id"`
	StatusObserved AssetStatus `json:"status_observed"`
	Notes          *string     `json:"notes,omitempty"`
	ScannedAt      time.Time   `json:"scanned_at"`
}

// RecordVerificationRequest is the request body for recording a scan.
type RecordVerificationRequest struct {
	SessionID      *int64      `json:"session_id,omitempty"`
	StatusObserved AssetStatus `json:"status_observed"`
	Notes          *string     `json:"notes,omitempty"`
}

func (r *RecordVerificationRequest) Validate() error {
	if !ValidAssetStatus(r.StatusObserved) {
		return ValidationError("invalid observed status %q", r.StatusObserved)
	}
	// Retiring an asset goes through the disposal workflow, not a scan.
	if r.StatusObserved == StatusDisposed {
		return ValidationError("status DISPOSED can only be set by an approved disposal")
	}
	return nil
}
