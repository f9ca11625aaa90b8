package models

import (
	"time"
)

// WorkflowStatus is the shared lifecycle of transfer and disposal requests.
// PENDING is the only non-terminal state.
type WorkflowStatus string

const (
	WorkflowPending  WorkflowStatus = "PENDING"
	WorkflowApproved WorkflowStatus = "APPROVED"
	WorkflowRejected WorkflowStatus = "REJECTED"
)

// CheckPending guards state transitions: only PENDING requests may be
// approved or rejected, both outcomes are terminal.
func CheckPending(kind string, status WorkflowStatus) error {
	if status != WorkflowPending {
		return InvalidStateError("%s is already %s and cannot be changed", kind, status)
	}
	return nil
}

// Transfer moves one asset between two users or between two locations.
type Transfer struct {
	TransferID     string         `json:"transfer_id"`
	AssetID        string         `json:"asset_id"`
	Status         WorkflowStatus `json:"status"`
	RequestedAt    time.Time      `json:"requested_at"`
	FromUserID     *string        `json:"from_user_id,omitempty"`
	ToUserID       *string        `json:"to_user_id,omitempty"`
	FromLocationID *string        `json:"from_location_id,omitempty"`
	ToLocationID   *string        `json:"to_location_id,omitempty"`
	Reason         string         `json:"reason"`
	InitiatedBy    string         `json:"initiated_by"`
}

// CreateTransferRequest creates one PENDING transfer per asset ID, all
// sharing the same from/to pair.
type CreateTransferRequest struct {
	AssetIDs       []string `json:"asset_ids"`
	FromUserID     *string  `json:"from_user_id,omitempty"`
	ToUserID       *string  `json:"to_user_id,omitempty"`
	FromLocationID *string  `json:"from_location_id,omitempty"`
	ToLocationID   *string  `json:"to_location_id,omitempty"`
	Reason         string   `json:"reason"`
}

// Validate enforces that exactly one pair is fully populated: either
// user-to-user or location-to-location. Both pairs at once is ambiguous and
// rejected.
func (r *CreateTransferRequest) Validate() error {
	if len(r.AssetIDs) == 0 {
		return ValidationError("asset_ids is required")
	}
	hasUsers := notEmpty(r.FromUserID) && notEmpty(r.ToUserID)
	hasLocations := notEmpty(r.FromLocationID) && notEmpty(r.ToLocationID)
	if !hasUsers && !hasLocations {
		return ValidationError("transfer must be user-to-user or location-to-location")
	}
	if hasUsers && hasLocations {
		return ValidationError("transfer cannot specify both a user pair and a location pair")
	}
	return nil
}

func notEmpty(s *string) bool {
	return s != nil && *s != ""
}

// DisposalType is the way an asset leaves the inventory.
type DisposalType string

const (
	DisposalAuctionSold DisposalType = "AUCTION_SOLD"
	DisposalDonated     DisposalType = "DONATED"
	DisposalDestroyed   DisposalType = "DESTROYED"
	DisposalLost        DisposalType = "LOST"
)

// ValidDisposalType reports whether t is a known disposal type.
func ValidDisposalType(t DisposalType) bool {
	switch t {
	case DisposalAuctionSold, DisposalDonated, DisposalDestroyed, DisposalLost:
		return true
	}
	return false
}

// Disposal is a retirement request for one asset, backed by a stored
// justification document shared across the batch it was created in.
type Disposal struct {
	DisposalID     string         `json:"disposal_id"`
	AssetID        string         `json:"asset_id"`
	TypeOfDisposal DisposalType   `json:"type_of_disposal"`
	Reason         string         `json:"reason"`
	RequestedBy    string         `json:"requested_by"`
	RequestedAt    time.Time      `json:"requested_at"`
	Status         WorkflowStatus `json:"status"`
	DocumentPath   string         `json:"document_path"`
}

// CreateDisposalRequest is the JSON part of the multipart disposal request;
// the justification document travels as the file part.
type CreateDisposalRequest struct {
	AssetIDs       []string     `json:"asset_ids"`
	TypeOfDisposal DisposalType `json:"type_of_disposal"`
	Reason         string       `json:"reason"`
}

func (r *CreateDisposalRequest) Validate() error {
	if len(r.AssetIDs) == 0 {
		return ValidationError("asset_ids is required")
	}
	if !ValidDisposalType(r.TypeOfDisposal) {
		return ValidationError("invalid disposal type %q", r.TypeOfDisposal)
	}
	return nil
}

// StatusUpdateRequest approves or rejects a pending workflow request.
type StatusUpdateRequest struct {
	Status WorkflowStatus `json:"status"`
}

func (r *StatusUpdateRequest) Validate() error {
	if r.Status != WorkflowApproved && r.Status != WorkflowRejected {
		return ValidationError("status must be APPROVED or REJECTED")
	}
	return nil
}

// BatchFailure records one input that could not be processed in a batch
// creation request.
type BatchFailure struct {
	AssetID string `json:"asset_id"`
	Error   string `json:"error"`
}

// TransferBatchResult is the outcome of a batch transfer creation; partial
// failure is representable rather than all-or-nothing.
type TransferBatchResult struct {
	Created []Transfer     `json:"created"`
	Failed  []BatchFailure `json:"failed,omitempty"`
}

// DisposalBatchResult is the outcome of a batch disposal creation.
type DisposalBatchResult struct {
	Created []Disposal     `json:"created"`
	Failed  []BatchFailure `json:"failed,omitempty"`
}

// TransferApprovalResult separates the committed workflow outcome from the
// best-effort document generation. The approval stands even when the Good
// Issue Note could not be rendered.
type TransferApprovalResult struct {
	Transfer      Transfer `json:"transfer"`
	Document      *string  `json:"document,omitempty"`
	DocumentError *string  `json:"document_error,omitempty"`
}

// Maintenance is a historical service record for an asset. Append/update
// only; there is no state machine.
type Maintenance struct {
	MaintenanceID     string    `json:"maintenance_id"`
	AssetID           string    `json:"asset_id"`
	DateOfMaintenance time.Time `json:"date_of_maintenance"`
	Type              string    `json:"type"`
	Provider          string    `json:"provider"`
	Cost              float64   `json:"cost"`
	Notes             *string   `json:"notes,omitempty"`
}

// CreateMaintenanceRequest is the request body for recording maintenance.
type CreateMaintenanceRequest struct {
	AssetID           string    `json:"asset_id"`
	DateOfMaintenance time.Time `json:"date_of_maintenance"`
	Type              string    `json:"type"`
	Provider          string    `json:"provider"`
	Cost              float64   `json:"cost"`
	Notes             *string   `json:"notes,omitempty"`
}

func (r *CreateMaintenanceRequest) Validate() error {
	if r.AssetID == "" || r.Type == "" {
		return ValidationError("asset_id and type are required")
	}
	if r.DateOfMaintenance.IsZero() {
		return ValidationError("date_of_maintenance is required")
	}
	return nil
}

// UpdateMaintenanceRequest updates an existing maintenance record.
type UpdateMaintenanceRequest struct {
	DateOfMaintenance *time.Time `json:"date_of_maintenance,omitempty"`
	Type              *string    `json:"type,omitempty"`
	Provider          *string    `json:"provider,omitempty"`
	Cost              *float64   `json:"cost,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
}
