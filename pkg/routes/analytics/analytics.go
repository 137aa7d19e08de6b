package analytics

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/sequoia/internal/repositories/batch"
	"github.com/Ramsey-B/sequoia/internal/repositories/vendor"
	"github.com/Ramsey-B/sequoia/pkg/errors"
	"github.com/Ramsey-B/sequoia/pkg/redis"
	"github.com/Ramsey-B/sequoia/pkg/scoring"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// Register registers the vendor analytics routes
func Register(g *echo.Group) {
	g.GET("/vendor-analytics/:vendor_id", GetVendorAnalytics)
}

// GetVendorAnalytics handles GET /vendor-analytics/:vendor_id. The score
// is always computed from the batch ledger; the Redis document and the
// vendor row snapshot are advisory copies of the same computation.
func GetVendorAnalytics(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "AnalyticsHandler.GetVendorAnalytics")
	defer span.End()

	vendorID := c.Param("vendor_id")

	ctx, vendorRepo, err := ectoinject.GetContext[vendor.VendorRepository](ctx)
	if err != nil {
		return err
	}

	v, err := vendorRepo.GetByVendorID(ctx, vendorID)
	if err != nil {
		return errors.ToHTTPError(err)
	}
	if v == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "Vendor not found")
	}

	ctx, cache, err := ectoinject.GetContext[*redis.AnalyticsCache](ctx)
	if err == nil && cache != nil {
		if cached, err := cache.Get(ctx, vendorID); err == nil && cached != nil {
			return c.JSON(http.StatusOK, cached)
		}
	}

	ctx, batchRepo, err := ectoinject.GetContext[batch.BatchRepository](ctx)
	if err != nil {
		return err
	}

	batches, err := batchRepo.ListByVendor(ctx, vendorID)
	if err != nil {
		return errors.ToHTTPError(err)
	}

	ctx, calculator, err := ectoinject.GetContext[*scoring.Calculator](ctx)
	if err != nil {
		return err
	}

	result := calculator.Analyze(v.Name, batches)

	if cache != nil {
		_ = cache.Set(ctx, vendorID, &result)
	}
	// Refresh the advisory snapshot on the vendor row
	_ = vendorRepo.UpdateScoreSnapshot(ctx, vendorID, result.CalculatedDurabilityScore)

	return c.JSON(http.StatusOK, result)
}
