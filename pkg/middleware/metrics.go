package middleware

import (
	"strconv"
	"time"

	"github.com/Ramsey-B/sequoia/pkg/metrics"
	"github.com/labstack/echo/v4"
)

// Metrics records request counts and durations labeled by the route
// template, so path parameters don't blow up cardinality.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			metrics.RecordHTTPRequest(
				c.Request().Method,
				path,
				strconv.Itoa(c.Response().Status),
				time.Since(start).Seconds(),
			)

			return nil
		}
	}
}
