// Package apperr defines the error codes surfaced at the HTTP boundary.
package apperr

import (
	"net/http"

	"github.com/morikuni/failure"
)

const (
	// StorageUnavailable means the database could not be opened or reached.
	StorageUnavailable failure.StringCode = "StorageUnavailable"
	// MissingField means a required form field was not submitted.
	MissingField failure.StringCode = "MissingField"
	// InvalidField means a submitted form field could not be parsed.
	InvalidField failure.StringCode = "InvalidField"
)

// Missing returns a MissingField error for the named form field
func Missing(field string) error {
	return failure.New(MissingField,
		failure.Context{"field": field},
		failure.Messagef("missing form field %q", field),
	)
}

// Invalid returns an InvalidField error for the named form field
func Invalid(field, value string, cause error) error {
	return failure.Translate(cause, InvalidField,
		failure.Context{"field": field, "value": value},
		failure.Messagef("invalid value for form field %q", field),
	)
}

// HTTPStatus maps an error to the status code of the generic failure response.
// Form errors are client errors, everything else is a server error.
func HTTPStatus(err error) int {
	if failure.Is(err, MissingField, InvalidField) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
