package models

// Master data entities referenced by assets. Each carries a short code used
// by the SCOM ID generator.

// LegalEntity is the owning legal entity of an asset.
type LegalEntity struct {
	LegalEntityID   string `json:"legal_entity_id"`
	LegalEntityCode string `json:"legal_entity_code"`
	LegalEntityName string `json:"legal_entity_name"`
}

// Location is a physical site/room where assets live.
type Location struct {
	LocationID   string `json:"location_id"`
	LocationCode string `json:"location_code"`
	LocationName string `json:"location_name"`
	SiteName     string `json:"site_name"`
}

// Project is the funding/operational project an asset belongs to.
type Project struct {
	ProjectID   string `json:"project_id"`
	ProjectCode string `json:"project_code"`
	Name        string `json:"name"`
}

// AssetCategory groups assets at the top level.
type AssetCategory struct {
	CategoryID  string  `json:"category_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// AssetSubCategory refines a category and carries the default useful life.
type AssetSubCategory struct {
	SubCategoryID   string  `json:"sub_category_id"`
	CategoryID      string  `json:"category_id"`
	Name            string  `json:"name"`
	UsefulLifeYears int     `json:"useful_life_years"`
	Description     *string `json:"description,omitempty"`
}

// Vendor is a supplier of assets.
type Vendor struct {
	VendorID      string `json:"vendor_id"`
	VendorName    string `json:"vendor_name"`
	VendorAccount string `json:"vendor_account"`
}
