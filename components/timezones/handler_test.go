package timezones

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwidgets/pkg/option"
)

func serve(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, []option.Option) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	if rec.Code != http.StatusOK || method == http.MethodHead {
		return rec, nil
	}
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	var payload struct {
		Data []option.Option `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	require.NotNil(t, payload.Data, "data must encode as an array")
	return rec, payload.Data
}

func TestHandlerSearch(t *testing.T) {
	zones := WithZones([]string{"Europe/Paris", "Europe/Prague", "America/Paramaribo", "UTC"})

	tests := []struct {
		name   string
		fns    []OptionFn
		target string
		want   []string
	}{
		{name: "empty query", target: "/?q=", want: []string{}},
		{name: "prefix first", target: "/?q=par", want: []string{"America/Paramaribo", "Europe/Paris"}},
		{name: "limit", target: "/?q=europe&limit=1", want: []string{"Europe/Paris"}},
		{name: "limit clamped", fns: []OptionFn{WithMaxLimit(2)}, target: "/?q=e&limit=50", want: []string{"Europe/Paris", "Europe/Prague"}},
		{name: "negative limit", target: "/?q=utc&limit=-1", want: []string{}},
		{name: "bad limit uses default", target: "/?q=utc&limit=ten", want: []string{"UTC"}},
		{name: "custom params", fns: []OptionFn{WithSearchParam("term"), WithLimitParam("n")}, target: "/?term=europe&n=1", want: []string{"Europe/Paris"}},
		{name: "empty search top", fns: []OptionFn{WithEmptySearchMode(EmptySearchTop), WithDefaultLimit(1)}, target: "/", want: []string{"Europe/Paris"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(append([]OptionFn{zones}, tt.fns...)...)
			rec, got := serve(t, h, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			values := make([]string, 0, len(got))
			for _, opt := range got {
				values = append(values, opt.Value.(string))
			}
			assert.Equal(t, tt.want, values)
		})
	}
}

func TestHandlerLabels(t *testing.T) {
	h := NewHandler(WithZones([]string{"Asia/Kolkata"}), WithLabel(OffsetLabel))
	_, got := serve(t, h, http.MethodGet, "/?q=kolkata")
	assert.Equal(t, []option.Option{{Label: "UTC+05:30", Value: "Asia/Kolkata"}}, got)
}

func TestHandlerMethodsAndGuard(t *testing.T) {
	h := NewHandler(WithZones([]string{"UTC"}))

	rec, _ := serve(t, h, http.MethodHead, "/?q=utc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())

	rec, _ = serve(t, h, http.MethodPost, "/?q=utc")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))

	guarded := NewHandler(WithZones([]string{"UTC"}), WithGuard(func(*http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))
	rec, _ = serve(t, guarded, http.MethodGet, "/?q=utc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	denied := NewHandler(WithGuard(func(*http.Request) error { return errors.New("nope") }))
	rec, _ = serve(t, denied, http.MethodGet, "/?q=utc")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
