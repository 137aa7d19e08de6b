package errors

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// DuplicateKeyError is returned when an insert would reuse an external key
// that already exists. It is a terminal client error.
type DuplicateKeyError struct {
	Resource string
	Key      string
	Message  string
}

func NewDuplicateKeyError(msg string) *DuplicateKeyError {
	return &DuplicateKeyError{Message: msg}
}

func (e *DuplicateKeyError) WithResource(resource string) *DuplicateKeyError {
	e.Resource = resource
	return e
}

func (e *DuplicateKeyError) WithKey(key string) *DuplicateKeyError {
	e.Key = key
	return e
}

func (e *DuplicateKeyError) Error() string {
	return e.Message
}

func (e *DuplicateKeyError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(http.StatusBadRequest, e.Message).AddMetaValue("resource", e.Resource).AddMetaValue("key", e.Key)
}

func IsDuplicateKey(err error) bool {
	_, ok := err.(*DuplicateKeyError)
	return ok
}

// NotFoundError is returned when a lookup by external key matches nothing.
// It is a terminal client error.
type NotFoundError struct {
	Resource string
	Key      string
	Message  string
}

func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{Message: msg}
}

func (e *NotFoundError) WithResource(resource string) *NotFoundError {
	e.Resource = resource
	return e
}

func (e *NotFoundError) WithKey(key string) *NotFoundError {
	e.Key = key
	return e
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(http.StatusNotFound, e.Message).AddMetaValue("resource", e.Resource).AddMetaValue("key", e.Key)
}

func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// PartNotInManifestError is returned when a failure report names a SKU the
// batch never shipped. The batch itself exists. Terminal client error.
type PartNotInManifestError struct {
	BatchID string
	PartSKU string
}

func NewPartNotInManifestError(batchID string, partSKU string) *PartNotInManifestError {
	return &PartNotInManifestError{
		BatchID: batchID,
		PartSKU: partSKU,
	}
}

func (e *PartNotInManifestError) Error() string {
	return "Part SKU not found in this batch"
}

func (e *PartNotInManifestError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(http.StatusBadRequest, e.Error()).AddMetaValue("batch_id", e.BatchID).AddMetaValue("part_sku", e.PartSKU)
}

func IsPartNotInManifest(err error) bool {
	_, ok := err.(*PartNotInManifestError)
	return ok
}

// ToHTTPError converts any error to an httperror, mapping the domain error
// types to their status codes and everything else to a 500.
func ToHTTPError(err error) *httperror.HTTPError {
	switch e := err.(type) {
	case *DuplicateKeyError:
		return e.ToHTTPError()
	case *NotFoundError:
		return e.ToHTTPError()
	case *PartNotInManifestError:
		return e.ToHTTPError()
	case *httperror.HTTPError:
		return e
	default:
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
}
