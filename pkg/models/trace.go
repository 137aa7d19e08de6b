package models

// PartTraceBatch is one batch edge in a part's supply lineage
type PartTraceBatch struct {
	BatchID     string  `json:"batch_id"`
	CompanyName string  `json:"company_name,omitempty"`
	VendorID    *string `json:"vendor_id,omitempty"`
	VendorName  *string `json:"vendor_name,omitempty"`
	Quantity    int     `json:"quantity"`
	Failures    int     `json:"failures"`
}

// PartTrace is the lineage document for a part SKU: every batch that
// carried it and the vendor behind each batch
type PartTrace struct {
	PartSKU       string           `json:"part_sku"`
	PartName      string           `json:"part_name,omitempty"`
	Batches       []PartTraceBatch `json:"batches"`
	TotalQuantity int              `json:"total_quantity"`
	TotalFailures int              `json:"total_failures"`
}
