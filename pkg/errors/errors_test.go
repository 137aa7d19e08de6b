package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateKeyError(t *testing.T) {
	err := NewDuplicateKeyError("Vendor ID already exists").WithResource("vendor").WithKey("V-DENSO-09")

	assert.Equal(t, "Vendor ID already exists", err.Error())
	assert.True(t, IsDuplicateKey(err))
	assert.False(t, IsNotFound(err))

	httperr := err.ToHTTPError()
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(httperr))
	assert.Equal(t, "vendor", httperr.Meta["resource"])
	assert.Equal(t, "V-DENSO-09", httperr.Meta["key"])
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("Batch not found").WithResource("batch").WithKey("TOYOTA_202403A001")

	assert.Equal(t, "Batch not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsDuplicateKey(err))

	httperr := err.ToHTTPError()
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(httperr))
	assert.Equal(t, "batch", httperr.Meta["resource"])
}

func TestPartNotInManifestError(t *testing.T) {
	err := NewPartNotInManifestError("TOYOTA_202403A001", "90919-01191")

	assert.Equal(t, "Part SKU not found in this batch", err.Error())
	assert.True(t, IsPartNotInManifest(err))

	httperr := err.ToHTTPError()
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(httperr))
	assert.Equal(t, "TOYOTA_202403A001", httperr.Meta["batch_id"])
	assert.Equal(t, "90919-01191", httperr.Meta["part_sku"])
}

func TestToHTTPError(t *testing.T) {
	t.Run("maps domain errors to their status", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
		}{
			{NewDuplicateKeyError("Batch ID already exists"), http.StatusBadRequest},
			{NewNotFoundError("Vendor not found"), http.StatusNotFound},
			{NewPartNotInManifestError("B1", "SKU-1"), http.StatusBadRequest},
		}

		for _, tc := range cases {
			httperr := ToHTTPError(tc.err)
			require.NotNil(t, httperr)
			assert.Equal(t, tc.status, httperror.GetStatusCode(httperr))
			assert.Equal(t, tc.err.Error(), httperr.Error())
		}
	})

	t.Run("passes through existing http errors", func(t *testing.T) {
		in := httperror.NewHTTPError(http.StatusConflict, "conflict")
		out := ToHTTPError(in)
		assert.Equal(t, in, out)
	})

	t.Run("wraps unknown errors as 500", func(t *testing.T) {
		out := ToHTTPError(fmt.Errorf("broken pipe"))
		assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(out))
	})
}
