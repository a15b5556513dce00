package handlers

import (
	"net/http"
	"strconv"

	"github.com/saltyorg/microblog/internal/apperr"
)

// formFields returns the submitted values of the named fields in order.
// A field that was not submitted at all is an apperr.MissingField error;
// an empty value is accepted.
func formFields(r *http.Request, names ...string) ([]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, apperr.Invalid("form", "", err)
	}

	values := make([]string, len(names))
	for i, name := range names {
		v, ok := r.PostForm[name]
		if !ok || len(v) == 0 {
			return nil, apperr.Missing(name)
		}
		values[i] = v[0]
	}
	return values, nil
}

// parseEntryID parses an entry id submitted in the named field
func parseEntryID(field, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, apperr.Invalid(field, value, err)
	}
	return id, nil
}
