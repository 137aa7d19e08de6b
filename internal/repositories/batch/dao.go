package batch

import (
	"database/sql"
	"time"

	"github.com/Ramsey-B/sequoia/pkg/database"
	"github.com/Ramsey-B/sequoia/pkg/models"
)

const (
	batchesTable    = "batches"
	batchPartsTable = "batch_parts"
)

// BatchRow represents the database row for a supply batch
type BatchRow struct {
	ID                sql.NullString                 `db:"id"`
	BatchAllocationID sql.NullString                 `db:"batch_allocation_id"`
	CompanyName       sql.NullString                 `db:"company_name"`
	VendorID          sql.NullString                 `db:"vendor_id"`
	VendorDetails     database.JSONB[map[string]any] `db:"vendor_details"`
	BatchInfo         database.JSONB[map[string]any] `db:"batch_info"`
	CreatedAt         sql.NullTime                   `db:"created_at"`
	UpdatedAt         sql.NullTime                   `db:"updated_at"`
}

var batchStruct = database.NewStruct(new(BatchRow))

// BatchPartRow represents the database row for one manifest entry
type BatchPartRow struct {
	ID             sql.NullString `db:"id"`
	BatchID        sql.NullString `db:"batch_id"`
	PartSKU        sql.NullString `db:"part_sku"`
	PartName       sql.NullString `db:"part_name"`
	Quantity       sql.NullInt64  `db:"quantity"`
	FailuresLogged sql.NullInt64  `db:"failures_logged"`
}

var batchPartStruct = database.NewStruct(new(BatchPartRow))

// FromBatch converts a domain model to a database row
func FromBatch(b *models.BatchAllocation) *BatchRow {
	var vendorID sql.NullString
	if b.VendorID != nil {
		vendorID = sql.NullString{String: *b.VendorID, Valid: *b.VendorID != ""}
	}

	return &BatchRow{
		ID:                sql.NullString{String: b.ID, Valid: b.ID != ""},
		BatchAllocationID: sql.NullString{String: b.BatchAllocationID, Valid: b.BatchAllocationID != ""},
		CompanyName:       sql.NullString{String: b.CompanyName, Valid: b.CompanyName != ""},
		VendorID:          vendorID,
		VendorDetails:     database.NewJSONB(b.VendorDetails),
		BatchInfo:         database.NewJSONB(b.BatchInfo),
		CreatedAt:         sql.NullTime{Time: b.CreatedAt, Valid: !b.CreatedAt.IsZero()},
		UpdatedAt:         sql.NullTime{Time: b.UpdatedAt, Valid: !b.UpdatedAt.IsZero()},
	}
}

// ToBatch converts a database row and its manifest rows to a domain model
func ToBatch(row *BatchRow, parts []BatchPartRow) *models.BatchAllocation {
	var vendorID *string
	if row.VendorID.Valid {
		vendorID = &row.VendorID.String
	}

	return &models.BatchAllocation{
		ID:                row.ID.String,
		BatchAllocationID: row.BatchAllocationID.String,
		CompanyName:       row.CompanyName.String,
		VendorID:          vendorID,
		VendorDetails:     row.VendorDetails.GetValue(),
		BatchInfo:         row.BatchInfo.GetValue(),
		PartsManifest:     ToParts(parts),
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}

// FromPart converts one manifest entry to a database row
func FromPart(id, batchID string, p *models.BatchPart) *BatchPartRow {
	return &BatchPartRow{
		ID:             sql.NullString{String: id, Valid: id != ""},
		BatchID:        sql.NullString{String: batchID, Valid: batchID != ""},
		PartSKU:        sql.NullString{String: p.PartSKU, Valid: p.PartSKU != ""},
		PartName:       sql.NullString{String: p.PartName, Valid: p.PartName != ""},
		Quantity:       sql.NullInt64{Int64: int64(p.Quantity), Valid: true},
		FailuresLogged: sql.NullInt64{Int64: int64(p.FailuresLogged), Valid: true},
	}
}

// ToParts converts manifest rows to domain entries
func ToParts(rows []BatchPartRow) []models.BatchPart {
	parts := make([]models.BatchPart, len(rows))
	for i, row := range rows {
		parts[i] = models.BatchPart{
			PartSKU:        row.PartSKU.String,
			PartName:       row.PartName.String,
			Quantity:       int(row.Quantity.Int64),
			FailuresLogged: int(row.FailuresLogged.Int64),
		}
	}
	return parts
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}
