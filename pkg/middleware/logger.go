package middleware

import (
	"time"

	"github.com/Gobusters/ectologger"
	appctx "github.com/Ramsey-B/sequoia/pkg/context"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

// Logger emits one structured line per request after the handler chain
// finishes. The request id comes from the Context middleware and the user id
// from whichever auth middleware ran, so this reads the context after next.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			ctx := req.Context()

			fields := map[string]any{
				"request_id":    appctx.GetRequestID(ctx),
				"method":        req.Method,
				"uri":           req.RequestURI,
				"route":         c.Path(),
				"status":        res.Status,
				"remote_ip":     c.RealIP(),
				"host":          req.Host,
				"user_agent":    req.UserAgent(),
				"response_time": time.Since(start),
				"response_size": res.Size,
			}
			if userID := appctx.GetUserID(ctx); userID != "" {
				fields["user_id"] = userID
			}
			if span := trace.SpanContextFromContext(ctx); span.HasTraceID() {
				fields["trace_id"] = span.TraceID().String()
			}

			logger.WithContext(ctx).WithFields(fields).Info("Request")

			return nil
		}
	}
}
