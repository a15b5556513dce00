package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/morikuni/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyorg/microblog/internal/apperr"
	"github.com/saltyorg/microblog/internal/database"
	"github.com/saltyorg/microblog/internal/web/flash"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	connector := database.NewConnector(filepath.Join(t.TempDir(), "test.db"))

	conn, err := connector.Open(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.InitSchema(context.Background()))
	require.NoError(t, conn.Close())

	signer, err := flash.NewSigner("test secret")
	require.NoError(t, err)

	return New(connector, nil, signer, false)
}

func TestWrap_ReleasesLeaseOnSuccessAndError(t *testing.T) {
	h := newTestHandlers(t)

	tests := []struct {
		name   string
		result error
		status int
	}{
		{name: "success", result: nil, status: http.StatusOK},
		{name: "storage error", result: errors.New("boom"), status: http.StatusInternalServerError},
		{name: "missing field", result: apperr.Missing("title"), status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *database.Lease
			handler := h.Wrap(func(w http.ResponseWriter, r *http.Request, lease *database.Lease) error {
				seen = lease
				_, err := lease.Conn(r.Context())
				require.NoError(t, err)
				require.True(t, lease.Acquired())
				return tt.result
			})

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, rec.Code)
			require.NotNil(t, seen)
			assert.False(t, seen.Acquired())
			_, err := seen.Conn(context.Background())
			assert.ErrorIs(t, err, database.ErrLeaseReleased)
		})
	}
}

func TestWrap_ReleasesLeaseOnPanic(t *testing.T) {
	h := newTestHandlers(t)

	var seen *database.Lease
	handler := h.Wrap(func(w http.ResponseWriter, r *http.Request, lease *database.Lease) error {
		seen = lease
		_, err := lease.Conn(r.Context())
		require.NoError(t, err)
		panic("handler exploded")
	})

	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
	require.NotNil(t, seen)
	assert.False(t, seen.Acquired())
}

func TestWrap_LeaseIsPerRequest(t *testing.T) {
	h := newTestHandlers(t)

	var leases []*database.Lease
	handler := h.Wrap(func(w http.ResponseWriter, r *http.Request, lease *database.Lease) error {
		leases = append(leases, lease)
		return nil
	})

	for range 2 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	require.Len(t, leases, 2)
	assert.NotSame(t, leases[0], leases[1])
}

func TestFormFields(t *testing.T) {
	newRequest := func(form url.Values) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return r
	}

	values, err := formFields(newRequest(url.Values{"a": {"1"}, "b": {""}}), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", ""}, values)

	_, err = formFields(newRequest(url.Values{"a": {"1"}}), "a", "b")
	require.Error(t, err)
	assert.True(t, failure.Is(err, apperr.MissingField))

	// query string values do not count as form fields
	r := httptest.NewRequest(http.MethodPost, "/?a=1", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err = formFields(r, "a")
	assert.True(t, failure.Is(err, apperr.MissingField))
}

func TestParseEntryID(t *testing.T) {
	id, err := parseEntryID("id", "12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = parseEntryID("id", "twelve")
	require.Error(t, err)
	assert.True(t, failure.Is(err, apperr.InvalidField))
}

func TestEditEntry_DoesNotOpenConnection(t *testing.T) {
	h := newTestHandlers(t)
	h.templates = nil

	form := url.Values{
		"old_title":    {"t"},
		"old_text":     {"x"},
		"old_category": {"c"},
		"id":           {"1"},
	}
	r := httptest.NewRequest(http.MethodPost, "/edit_entry", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	lease := h.connector.Lease()
	defer lease.Release()

	rec := httptest.NewRecorder()
	require.NoError(t, h.EditEntry(rec, r, lease))
	assert.False(t, lease.Acquired())
}
