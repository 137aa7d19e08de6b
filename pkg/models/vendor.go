package models

import (
	"time"
)

// Vendor is a parts supplier registered with the admin service.
// The stored durability_score is an advisory snapshot; the authoritative
// value is always computed from the batch ledger (see pkg/scoring).
type Vendor struct {
	ID              string    `json:"id" db:"id"`
	VendorID        string    `json:"vendor_id" db:"vendor_id"`
	Name            string    `json:"name" db:"name"`
	Category        string    `json:"category" db:"category"`
	Contact         string    `json:"contact" db:"contact"`
	DurabilityScore float64   `json:"durability_score" db:"durability_score"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterVendorRequest is the request body for registering a vendor
type RegisterVendorRequest struct {
	VendorID        string   `json:"vendor_id" validate:"required"`
	Name            string   `json:"name" validate:"required"`
	Category        string   `json:"category" validate:"required"`
	Contact         string   `json:"contact" validate:"required"`
	DurabilityScore *float64 `json:"durability_score,omitempty"`
}

// VendorAnalytics is the on-demand durability report for a vendor.
// Computed live from the batch ledger on every request.
type VendorAnalytics struct {
	VendorName                string  `json:"vendor_name"`
	CalculatedDurabilityScore float64 `json:"calculated_durability_score"`
	TotalPartsSupplied        int     `json:"total_parts_supplied"`
	TotalFailuresDetected     int     `json:"total_failures_detected"`
	BatchesAnalyzed           int     `json:"batches_analyzed"`
}

// VendorMatch is a fuzzy-search candidate with its similarity score
type VendorMatch struct {
	Vendor Vendor  `json:"vendor"`
	Score  float64 `json:"score"`
}

// VendorSearchResponse is the response for fuzzy vendor name search
type VendorSearchResponse struct {
	Query      string        `json:"query"`
	Best       *VendorMatch  `json:"best,omitempty"`
	Candidates []VendorMatch `json:"candidates"`
}
