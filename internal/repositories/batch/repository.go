package batch

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sequoia/pkg/database"
	"github.com/Ramsey-B/sequoia/pkg/errors"
	"github.com/Ramsey-B/sequoia/pkg/models"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/google/uuid"
)

// BatchRepository defines the interface for batch ledger access
type BatchRepository interface {
	Create(ctx context.Context, batch *models.BatchAllocation) (*models.BatchAllocation, error)
	GetByBatchID(ctx context.Context, batchAllocationID string) (*models.BatchAllocation, error)
	ListByVendor(ctx context.Context, vendorID string) ([]models.BatchAllocation, error)
	IncrementFailure(ctx context.Context, batchAllocationID, partSKU string) error
}

// Repository implements BatchRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new batch repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create persists a batch and its manifest rows in one transaction.
// The batch_allocation_id uniqueness decision happens in storage; the
// manifest is rejected up front when it repeats a part_sku, since the
// (batch_id, part_sku) rows are what failure increments key on.
func (r *Repository) Create(ctx context.Context, batch *models.BatchAllocation) (*models.BatchAllocation, error) {
	ctx, span := tracing.StartSpan(ctx, "BatchRepository.Create")
	defer span.End()

	seen := make(map[string]bool, len(batch.PartsManifest))
	for _, part := range batch.PartsManifest {
		if seen[part.PartSKU] {
			return nil, errors.NewDuplicateKeyError("Duplicate part SKU in batch manifest").
				WithResource("batch_part").
				WithKey(part.PartSKU)
		}
		seen[part.PartSKU] = true
	}

	now := Now()
	batch.ID = uuid.New().String()
	batch.CreatedAt = now
	batch.UpdatedAt = now

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ib := batchStruct.InsertInto(batchesTable, FromBatch(batch))
	ib.OnConflictDoNothing()
	query, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":                  batch.ID,
		"batch_allocation_id": batch.BatchAllocationID,
		"manifest_size":       len(batch.PartsManifest),
	}).Debug("Creating batch")

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create batch")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create batch")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, errors.NewDuplicateKeyError("Batch ID already exists").
			WithResource("batch").
			WithKey(batch.BatchAllocationID)
	}

	rows := make([]any, len(batch.PartsManifest))
	for i := range batch.PartsManifest {
		rows[i] = FromPart(uuid.New().String(), batch.ID, &batch.PartsManifest[i])
	}

	pib := batchPartStruct.InsertInto(batchPartsTable, rows...)
	query, args = pib.Build()

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create batch manifest")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create batch manifest")
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit batch")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create batch")
	}

	return batch, nil
}

// GetByBatchID retrieves a batch and its manifest by external batch id
func (r *Repository) GetByBatchID(ctx context.Context, batchAllocationID string) (*models.BatchAllocation, error) {
	ctx, span := tracing.StartSpan(ctx, "BatchRepository.GetByBatchID")
	defer span.End()

	sb := batchStruct.SelectFrom(batchesTable)
	sb.Where(sb.Equal("batch_allocation_id", batchAllocationID))

	query, args := sb.Build()

	var row BatchRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, errors.NewNotFoundError("Batch not found").
				WithResource("batch").
				WithKey(batchAllocationID)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get batch")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get batch")
	}

	parts, err := r.getParts(ctx, row.ID.String)
	if err != nil {
		return nil, err
	}

	return ToBatch(&row, parts), nil
}

// ListByVendor retrieves every batch whose vendor linkage matches vendorID.
// Batches created without a usable vendor_details.vendor_id never match.
func (r *Repository) ListByVendor(ctx context.Context, vendorID string) ([]models.BatchAllocation, error) {
	ctx, span := tracing.StartSpan(ctx, "BatchRepository.ListByVendor")
	defer span.End()

	sb := batchStruct.SelectFrom(batchesTable)
	sb.Where(sb.Equal("vendor_id", vendorID))
	sb.OrderBy("created_at")

	query, args := sb.Build()

	var rows []BatchRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list batches by vendor")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list batches")
	}

	if len(rows) == 0 {
		return []models.BatchAllocation{}, nil
	}

	ids := make([]any, len(rows))
	for i, row := range rows {
		ids[i] = row.ID.String
	}

	psb := batchPartStruct.SelectFrom(batchPartsTable)
	psb.Where(psb.In("batch_id", ids...))
	psb.OrderBy("part_sku")

	query, args = psb.Build()

	var partRows []BatchPartRow
	err = r.db.SelectContext(ctx, &partRows, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list batch manifests")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list batches")
	}

	partsByBatch := make(map[string][]BatchPartRow, len(rows))
	for _, part := range partRows {
		partsByBatch[part.BatchID.String] = append(partsByBatch[part.BatchID.String], part)
	}

	batches := make([]models.BatchAllocation, len(rows))
	for i := range rows {
		batches[i] = *ToBatch(&rows[i], partsByBatch[rows[i].ID.String])
	}

	return batches, nil
}

// IncrementFailure applies one failure report to the manifest row matching
// (batchAllocationID, partSKU). The counter moves by exactly 1 per call and
// only through this statement; concurrent reports serialize on the row.
func (r *Repository) IncrementFailure(ctx context.Context, batchAllocationID, partSKU string) error {
	ctx, span := tracing.StartSpan(ctx, "BatchRepository.IncrementFailure")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("id")
	sb.From(batchesTable)
	sb.Where(sb.Equal("batch_allocation_id", batchAllocationID))

	query, args := sb.Build()

	var batchID string
	err := r.db.GetContext(ctx, &batchID, query, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return errors.NewNotFoundError("Batch not found").
				WithResource("batch").
				WithKey(batchAllocationID)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find batch for failure report")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to report failure")
	}

	// Using raw SQL for increment since sqlbuilder doesn't have a nice way to do this
	incr := `
		UPDATE batch_parts
		SET failures_logged = failures_logged + 1
		WHERE batch_id = $1 AND part_sku = $2`

	result, err := r.db.ExecContext(ctx, incr, batchID, partSKU)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to increment failure count")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to report failure")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to increment failure count")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to report failure")
	}
	if rowsAffected == 0 {
		return errors.NewPartNotInManifestError(batchAllocationID, partSKU)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_allocation_id": batchAllocationID,
		"part_sku":            partSKU,
	}).Info("Logged part failure")

	return nil
}

func (r *Repository) getParts(ctx context.Context, batchID string) ([]BatchPartRow, error) {
	sb := batchPartStruct.SelectFrom(batchPartsTable)
	sb.Where(sb.Equal("batch_id", batchID))
	sb.OrderBy("part_sku")

	query, args := sb.Build()

	var rows []BatchPartRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get batch manifest")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get batch")
	}

	return rows, nil
}
