package lineage

import (
	"net/http"

	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/sequoia/pkg/errors"
	"github.com/Ramsey-B/sequoia/pkg/graph"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// Register registers the supply lineage routes
func Register(g *echo.Group) {
	g.GET("/trace-part/:part_sku", TracePart)
}

// TracePart handles GET /trace-part/:part_sku. An unknown SKU is not an
// error; it traces to an empty document.
func TracePart(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "LineageHandler.TracePart")
	defer span.End()

	partSKU := c.Param("part_sku")

	ctx, svc, err := ectoinject.GetContext[*graph.LineageService](ctx)
	if err != nil {
		return err
	}

	trace, err := svc.TracePart(ctx, partSKU)
	if err != nil {
		return errors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, trace)
}
