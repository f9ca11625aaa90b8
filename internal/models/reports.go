package models

import (
	"time"
)

// Read-side report rows. Each report is an independent aggregation query;
// none of these mutate state.

// AssetsByStatusRow is one group in the status breakdown.
type AssetsByStatusRow struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// AssetsByLocationRow is one group in the per-location count.
type AssetsByLocationRow struct {
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
	Count        int    `json:"count"`
}

// AssetsByCustodianRow is one of the top-N asset holders.
type AssetsByCustodianRow struct {
	CustodianID   string `json:"custodian_id"`
	CustodianName string `json:"custodian_name"`
	Count         int    `json:"count"`
}

// VerificationCoverageReport is the share of assets scanned in a window.
type VerificationCoverageReport struct {
	TotalAssets        int        `json:"total_assets"`
	VerifiedCount      int        `json:"verified_count"`
	CoveragePercentage float64    `json:"coverage_percentage"`
	PeriodStart        *time.Time `json:"period_start,omitempty"`
	PeriodEnd          *time.Time `json:"period_end,omitempty"`
}

// TransferSummaryReport tallies transfers by status over a window.
type TransferSummaryReport struct {
	TotalTransfers int        `json:"total_transfers"`
	PendingCount   int        `json:"pending_count"`
	ApprovedCount  int        `json:"approved_count"`
	RejectedCount  int        `json:"rejected_count"`
	PeriodStart    *time.Time `json:"period_start,omitempty"`
	PeriodEnd      *time.Time `json:"period_end,omitempty"`
}

// CategoryValueRow is a per-category slice of the total value report.
type CategoryValueRow struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// TotalValueReport is the book value of all assets.
type TotalValueReport struct {
	TotalValue float64            `json:"total_value"`
	AssetCount int                `json:"asset_count"`
	ByCategory []CategoryValueRow `json:"by_category"`
}

// MaintenanceDueRow flags an asset whose last service is beyond the
// threshold, or which was never serviced at all.
type MaintenanceDueRow struct {
	AssetID                 string     `json:"asset_id"`
	AssetName               string     `json:"asset_name"`
	LastMaintenanceDate     *time.Time `json:"last_maintenance_date,omitempty"`
	DaysSinceMaintenance    *int       `json:"days_since_maintenance,omitempty"`
	RecommendedIntervalDays int        `json:"recommended_interval_days"`
}

// DashboardMetrics is the role-gated landing page payload. Keys are present
// only when the caller's roles grant them.
type DashboardMetrics struct {
	Roles   []string       `json:"roles"`
	Metrics map[string]int `json:"metrics"`
}
