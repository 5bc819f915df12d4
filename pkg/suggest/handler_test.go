package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

func newOptionsServer(t *testing.T, source choice.Fetcher) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/api/options/{kind}", Handler(source, nil))
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func TestHandlerServesRouterKinds(t *testing.T) {
	router := NewRouter()
	router.MustRegister("letters", NewValueListSource([]string{"alpha", "beta"}, 0))
	server := newOptionsServer(t, router)

	resp, err := http.Get(server.URL + "/api/options/letters?q=al")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data []option.Option `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, []option.Option{{Label: "alpha", Value: "alpha"}}, body.Data)

	resp, err = http.Get(server.URL + "/api/options/numbers?q=1")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerReportsSourceFailures(t *testing.T) {
	server := newOptionsServer(t, choice.FetcherFunc(func(context.Context, string, string) ([]option.Option, error) {
		return nil, errors.New("upstream down")
	}))

	resp, err := http.Get(server.URL + "/api/options/cities?q=am")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHTTPSourceReadsHandler(t *testing.T) {
	router := NewRouter()
	router.MustRegister("letters", NewValueListSource([]string{"alpha", "beta"}, 0))
	server := newOptionsServer(t, router)

	source, err := NewHTTPSource(server.URL + "/api/options/" + KindPlaceholder)
	require.NoError(t, err)
	got, err := source.Fetch(context.Background(), "letters", "be")
	require.NoError(t, err)
	require.Equal(t, []option.Option{{Label: "beta", Value: "beta"}}, got)
}
