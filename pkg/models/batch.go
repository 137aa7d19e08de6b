package models

import (
	"time"
)

// BatchPart is one manifest entry within a supply batch, keyed by part_sku
// unique within its batch. quantity is fixed at creation; failures_logged
// only ever moves through the atomic increment in the batch repository.
type BatchPart struct {
	PartSKU        string `json:"part_sku" db:"part_sku" validate:"required"`
	PartName       string `json:"part_name" db:"part_name" validate:"required"`
	Quantity       int    `json:"quantity" db:"quantity" validate:"required,gt=0"`
	FailuresLogged int    `json:"failures_logged" db:"failures_logged" validate:"gte=0"`
}

// BatchAllocation is one supply shipment from a vendor.
// vendor_details is a free-form snapshot of the vendor at creation time;
// when it carries a vendor_id the batch is linked to that vendor for
// analytics, otherwise the batch is accepted but never rolls up.
type BatchAllocation struct {
	ID                string         `json:"id" db:"id"`
	BatchAllocationID string         `json:"batch_allocation_id" db:"batch_allocation_id"`
	CompanyName       string         `json:"company_name" db:"company_name"`
	VendorID          *string        `json:"vendor_id,omitempty" db:"vendor_id"`
	VendorDetails     map[string]any `json:"vendor_details" db:"vendor_details"`
	BatchInfo         map[string]any `json:"batch_info" db:"batch_info"`
	PartsManifest     []BatchPart    `json:"parts_manifest"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateBatchRequest is the request body for logging a supply batch
type CreateBatchRequest struct {
	BatchAllocationID string         `json:"batch_allocation_id" validate:"required"`
	CompanyName       string         `json:"company_name" validate:"required"`
	VendorDetails     map[string]any `json:"vendor_details" validate:"required"`
	BatchInfo         map[string]any `json:"batch_info" validate:"required"`
	PartsManifest     []BatchPart    `json:"parts_manifest" validate:"required,min=1,dive"`
}

// LinkedVendorID extracts the vendor linkage from the vendor_details
// snapshot. Returns false when the snapshot carries no usable vendor_id.
func (r *CreateBatchRequest) LinkedVendorID() (string, bool) {
	if r.VendorDetails == nil {
		return "", false
	}
	id, ok := r.VendorDetails["vendor_id"].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// ReportFailureRequest attributes one real-world part failure to a
// (batch, SKU) pair. Each call is one distinct failure event; callers own
// deduplication.
type ReportFailureRequest struct {
	BatchID string `json:"batch_id" validate:"required"`
	PartSKU string `json:"part_sku" validate:"required"`
}
