package batch

import (
	"net/http"

	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/sequoia/internal/repositories/batch"
	"github.com/Ramsey-B/sequoia/pkg/errors"
	"github.com/Ramsey-B/sequoia/pkg/events"
	"github.com/Ramsey-B/sequoia/pkg/graph"
	"github.com/Ramsey-B/sequoia/pkg/metrics"
	"github.com/Ramsey-B/sequoia/pkg/models"
	"github.com/Ramsey-B/sequoia/pkg/redis"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/Ramsey-B/sequoia/pkg/utils"
	"github.com/labstack/echo/v4"
)

// Register registers the batch ledger routes
func Register(g *echo.Group) {
	g.POST("/add-batch", Create)
	g.GET("/get-batch/:batch_id", Get)
	g.GET("/get-vendor-batches/:vendor_id", ListByVendor)
	g.POST("/report-failure", ReportFailure)
}

// Create handles POST /add-batch
func Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "BatchHandler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.CreateBatchRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[batch.BatchRepository](ctx)
	if err != nil {
		return err
	}

	b := &models.BatchAllocation{
		BatchAllocationID: req.BatchAllocationID,
		CompanyName:       req.CompanyName,
		VendorDetails:     req.VendorDetails,
		BatchInfo:         req.BatchInfo,
		PartsManifest:     req.PartsManifest,
	}
	if vendorID, ok := req.LinkedVendorID(); ok {
		b.VendorID = &vendorID
	}

	created, err := repo.Create(ctx, b)
	if err != nil {
		return errors.ToHTTPError(err)
	}

	// A new linked batch changes the vendor's supplied totals
	if created.VendorID != nil {
		ctx, cache, err := ectoinject.GetContext[*redis.AnalyticsCache](ctx)
		if err == nil && cache != nil && cache.Enabled() {
			_ = cache.Invalidate(ctx, *created.VendorID)
		}
	}

	ctx, lineage, err := ectoinject.GetContext[*graph.LineageService](ctx)
	if err == nil && lineage != nil {
		_ = lineage.RecordBatch(ctx, created)
	}

	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err == nil && emitter != nil {
		_ = emitter.EmitBatchCreated(ctx, created)
	}

	return c.JSON(http.StatusOK, models.CreatedResponse{
		Message: "Batch Logged Successfully",
		ID:      created.ID,
	})
}

// Get handles GET /get-batch/:batch_id
func Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "BatchHandler.Get")
	defer span.End()

	batchID := c.Param("batch_id")

	ctx, repo, err := ectoinject.GetContext[batch.BatchRepository](ctx)
	if err != nil {
		return err
	}

	b, err := repo.GetByBatchID(ctx, batchID)
	if err != nil {
		return errors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, b)
}

// ListByVendor handles GET /get-vendor-batches/:vendor_id
func ListByVendor(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "BatchHandler.ListByVendor")
	defer span.End()

	vendorID := c.Param("vendor_id")

	ctx, repo, err := ectoinject.GetContext[batch.BatchRepository](ctx)
	if err != nil {
		return err
	}

	batches, err := repo.ListByVendor(ctx, vendorID)
	if err != nil {
		return errors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, batches)
}

// ReportFailure handles POST /report-failure. The increment happens as a
// single atomic update in storage; this handler only translates the
// outcome and fans out the best-effort side effects.
func ReportFailure(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "BatchHandler.ReportFailure")
	defer span.End()

	req, err := utils.BindRequest[models.ReportFailureRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[batch.BatchRepository](ctx)
	if err != nil {
		return err
	}

	if err := repo.IncrementFailure(ctx, req.BatchID, req.PartSKU); err != nil {
		switch {
		case errors.IsNotFound(err):
			metrics.RecordFailureReport("batch_not_found")
		case errors.IsPartNotInManifest(err):
			metrics.RecordFailureReport("sku_not_found")
		default:
			metrics.RecordFailureReport("error")
		}
		return errors.ToHTTPError(err)
	}
	metrics.RecordFailureReport("accepted")

	// The cached analytics document for the linked vendor is now stale
	ctx, cache, err := ectoinject.GetContext[*redis.AnalyticsCache](ctx)
	if err == nil && cache != nil && cache.Enabled() {
		if b, err := repo.GetByBatchID(ctx, req.BatchID); err == nil && b.VendorID != nil {
			_ = cache.Invalidate(ctx, *b.VendorID)
		}
	}

	ctx, lineage, err := ectoinject.GetContext[*graph.LineageService](ctx)
	if err == nil && lineage != nil {
		_ = lineage.RecordFailure(ctx, req.BatchID, req.PartSKU)
	}

	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err == nil && emitter != nil {
		_ = emitter.EmitFailureReported(ctx, req.BatchID, req.PartSKU)
	}

	return c.JSON(http.StatusOK, models.MessageResponse{
		Message: "Failure Logged. Vendor Durability Score Impacted.",
	})
}
