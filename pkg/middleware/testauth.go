package middleware

import (
	appctx "github.com/Ramsey-B/sequoia/pkg/context"
	"github.com/labstack/echo/v4"
)

// TestAuth middleware extracts the user_id from headers when auth is disabled.
// This allows testing the API without a real JWT auth system.
// Headers:
//   - X-User-ID: The user ID
//
// WARNING: Only use this when AUTH_ENABLED=false. Do not enable in production.
func TestAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			userID := c.Request().Header.Get(HeaderUserID)
			if userID != "" {
				ctx = appctx.SetUserID(ctx, userID)
			}

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
