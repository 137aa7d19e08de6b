package middleware_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/sequoia/pkg/errors"
	"github.com/Ramsey-B/sequoia/pkg/middleware"
)

func testLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

// newTestServer builds an echo instance with the error handler and context
// middleware wired the same way main wires them.
func newTestServer(handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(testLogger())
	e.Use(middleware.Context())
	e.GET("/test", handler)
	return e
}

func doRequest(t *testing.T, e *echo.Echo, headers map[string]string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestError_NotFoundEnvelope(t *testing.T) {
	e := newTestServer(func(c echo.Context) error {
		return errors.ToHTTPError(errors.NewNotFoundError("Batch not found").
			WithResource("batch").
			WithKey("TOYOTA_202403A001"))
	})

	code, body := doRequest(t, e, nil)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Batch not found", body["message"])
	assert.NotEmpty(t, body["request_id"])

	meta, ok := body["meta"].(map[string]any)
	require.True(t, ok, "expected meta object, got: %v", body["meta"])
	assert.Equal(t, "batch", meta["resource"])
	assert.Equal(t, "TOYOTA_202403A001", meta["key"])
}

func TestError_DuplicateKeyEnvelope(t *testing.T) {
	e := newTestServer(func(c echo.Context) error {
		return errors.ToHTTPError(errors.NewDuplicateKeyError("Vendor ID already exists").
			WithResource("vendor").
			WithKey("V-DENSO-09"))
	})

	code, body := doRequest(t, e, nil)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Vendor ID already exists", body["message"])
}

func TestError_PartNotInManifestEnvelope(t *testing.T) {
	e := newTestServer(func(c echo.Context) error {
		return errors.ToHTTPError(errors.NewPartNotInManifestError("TOYOTA_202403A001", "99999-00000"))
	})

	code, body := doRequest(t, e, nil)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Part SKU not found in this batch", body["message"])

	meta, ok := body["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "99999-00000", meta["part_sku"])
}

func TestError_EchoHTTPErrorPassthrough(t *testing.T) {
	e := newTestServer(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	})

	code, body := doRequest(t, e, nil)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "name is required", body["message"])
}

func TestError_UnknownErrorIsInternal(t *testing.T) {
	e := newTestServer(func(c echo.Context) error {
		return fmt.Errorf("connection reset")
	})

	code, body := doRequest(t, e, nil)

	assert.Equal(t, http.StatusInternalServerError, code)
	// Internal details never leak into the response body
	assert.NotContains(t, body["message"], "connection reset")
}

func TestError_RequestIDFromHeader(t *testing.T) {
	e := newTestServer(func(c echo.Context) error {
		return errors.ToHTTPError(errors.NewNotFoundError("Vendor not found"))
	})

	code, body := doRequest(t, e, map[string]string{echo.HeaderXRequestID: "req-e2e-42"})

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "req-e2e-42", body["request_id"])
}
