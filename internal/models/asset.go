package models

import (
	"time"
)

// AssetStatus is the lifecycle status of an asset.
type AssetStatus string

const (
	StatusGood     AssetStatus = "GOOD"
	StatusFair     AssetStatus = "FAIR"
	StatusDamaged  AssetStatus = "DAMAGED"
	StatusDisposed AssetStatus = "DISPOSED"
)

// ValidAssetStatus reports whether s is one of the known statuses.
func ValidAssetStatus(s AssetStatus) bool {
	switch s {
	case StatusGood, StatusFair, StatusDamaged, StatusDisposed:
		return true
	}
	return false
}

// Asset is the core asset record. The primary key is the generated SCOM ID
// (entity-location-project prefix plus a zero-padded sequence).
type Asset struct {
	SCOMAssetID         string      `json:"scom_asset_id"`
	AssetName           string      `json:"asset_name"`
	TagNumber           string      `json:"tag_number"`
	Brand               string      `json:"brand"`
	Model               string      `json:"model"`
	AcquisitionPrice    float64     `json:"acquisition_price"`
	Currency            string      `json:"currency"`
	DateOfAcquisition   *time.Time  `json:"date_of_acquisition,omitempty"`
	TypeOfAcquisition   string      `json:"type_of_acquisition"`
	VendorName          *string     `json:"vendor_name,omitempty"`
	VendorAccount       *string     `json:"vendor_account,omitempty"`
	PurchaseOrderNumber *string     `json:"purchase_order_number,omitempty"`
	RentPrice           *float64    `json:"rent_price,omitempty"`
	Status              AssetStatus `json:"status"`
	SCOMCategory        string      `json:"scom_category"`
	UsefulLifeYears     int         `json:"useful_life_years"`
	BusinessUnit        string      `json:"business_unit"`
	FundingSourceID     *string     `json:"funding_source_id,omitempty"`
	LegalEntityID       string      `json:"legal_entity_id"`
	ProjectID           string      `json:"project_id"`
	LocationID          string      `json:"location_id"`
	CustodianID         *string     `json:"custodian_id,omitempty"`
	CategoryID          *string     `json:"category_id,omitempty"`
	SubCategoryID       *string     `json:"sub_category_id,omitempty"`
	VINNumber           *string     `json:"vin_number,omitempty"`
	LastVerifiedBy      *string     `json:"last_verified_by,omitempty"`
	LastVerifiedDate    *time.Time  `json:"last_verified_date,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// CreateAssetRequest is the request body for creating a new asset. The SCOM
// ID is generated server-side from the entity/location/project codes.
type CreateAssetRequest struct {
	AssetName           string      `json:"asset_name"`
	TagNumber           string      `json:"tag_number"`
	Brand               string      `json:"brand"`
	Model               string      `json:"model"`
	AcquisitionPrice    float64     `json:"acquisition_price"`
	Currency            string      `json:"currency"`
	DateOfAcquisition   *time.Time  `json:"date_of_acquisition,omitempty"`
	TypeOfAcquisition   string      `json:"type_of_acquisition"`
	VendorName          *string     `json:"vendor_name,omitempty"`
	VendorAccount       *string     `json:"vendor_account,omitempty"`
	PurchaseOrderNumber *string     `json:"purchase_order_number,omitempty"`
	RentPrice           *float64    `json:"rent_price,omitempty"`
	Status              AssetStatus `json:"status"`
	SCOMCategory        string      `json:"scom_category"`
	UsefulLifeYears     int         `json:"useful_life_years"`
	BusinessUnit        string      `json:"business_unit"`
	FundingSourceID     *string     `json:"funding_source_id,omitempty"`
	LegalEntityID       string      `json:"legal_entity_id"`
	ProjectID           string      `json:"project_id"`
	LocationID          string      `json:"location_id"`
	CustodianID         *string     `json:"custodian_id,omitempty"`
	CategoryID          *string     `json:"category_id,omitempty"`
	SubCategoryID       *string     `json:"sub_category_id,omitempty"`
	VINNumber           *string     `json:"vin_number,omitempty"`
}

// Validate checks required fields and the status enum.
func (r *CreateAssetRequest) Validate() error {
	if r.AssetName == "" || r.TagNumber == "" {
		return ValidationError("asset_name and tag_number are required")
	}
	if r.LegalEntityID == "" || r.LocationID == "" || r.ProjectID == "" {
		return ValidationError("legal_entity_id, location_id and project_id are required")
	}
	if r.Status == "" {
		r.Status = StatusGood
	}
	if !ValidAssetStatus(r.Status) {
		return ValidationError("invalid asset status %q", r.Status)
	}
	if r.Status == StatusDisposed {
		return ValidationError("assets cannot be created as DISPOSED; use a disposal request")
	}
	return nil
}

// UpdateAssetRequest is the request body for updating an asset. Nil fields
// are left unchanged.
type UpdateAssetRequest struct {
	AssetName           *string      `json:"asset_name,omitempty"`
	TagNumber           *string      `json:"tag_number,omitempty"`
	Brand               *string      `json:"brand,omitempty"`
	Model               *string      `json:"model,omitempty"`
	AcquisitionPrice    *float64     `json:"acquisition_price,omitempty"`
	Currency            *string      `json:"currency,omitempty"`
	DateOfAcquisition   *time.Time   `json:"date_of_acquisition,omitempty"`
	TypeOfAcquisition   *string      `json:"type_of_acquisition,omitempty"`
	VendorName          *string      `json:"vendor_name,omitempty"`
	VendorAccount       *string      `json:"vendor_account,omitempty"`
	PurchaseOrderNumber *string      `json:"purchase_order_number,omitempty"`
	RentPrice           *float64     `json:"rent_price,omitempty"`
	Status              *AssetStatus `json:"status,omitempty"`
	SCOMCategory        *string      `json:"scom_category,omitempty"`
	UsefulLifeYears     *int         `json:"useful_life_years,omitempty"`
	BusinessUnit        *string      `json:"business_unit,omitempty"`
	FundingSourceID     *string      `json:"funding_source_id,omitempty"`
	CustodianID         *string      `json:"custodian_id,omitempty"`
	CategoryID          *string      `json:"category_id,omitempty"`
	SubCategoryID       *string      `json:"sub_category_id,omitempty"`
	LocationID          *string      `json:"location_id,omitempty"`
	VINNumber           *string      `json:"vin_number,omitempty"`
}

// Validate rejects direct status changes to DISPOSED; retirement goes
// through the disposal workflow only.
func (r *UpdateAssetRequest) Validate() error {
	if r.Status != nil {
		if !ValidAssetStatus(*r.Status) {
			return ValidationError("invalid asset status %q", *r.Status)
		}
		if *r.Status == StatusDisposed {
			return ValidationError("status DISPOSED can only be set by an approved disposal")
		}
	}
	return nil
}

// AssetPhoto is a stored photo for an asset. At most three per asset; the
// first uploaded photo becomes the profile picture.
type AssetPhoto struct {
	ID        int64     `json:"id"`
	AssetID   string    `json:"asset_id"`
	Filename  string    `json:"filename"`
	IsProfile bool      `json:"is_profile"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxPhotosPerAsset caps how many photos one asset may carry.
const MaxPhotosPerAsset = 3
