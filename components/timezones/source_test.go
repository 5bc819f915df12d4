package timezones

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

func TestSourceSearchesZones(t *testing.T) {
	source := New(WithZones([]string{"Europe/Paris", "America/Paris_Like", "UTC"}), WithMaxLimit(1)).Source()

	got, err := source.Fetch(context.Background(), Kind, "paris")
	require.NoError(t, err)
	require.Equal(t, []option.Option{{Label: "America/Paris_Like", Value: "America/Paris_Like"}}, got)

	got, err = source.Fetch(context.Background(), Kind, "")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSourceUsesEmbeddedZones(t *testing.T) {
	got, err := Source().Fetch(context.Background(), Kind, "Europe/Paris")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.Equal(t, "Europe/Paris", got[0].Value)
}

func TestRemoteSourceQueriesHandler(t *testing.T) {
	mux := http.NewServeMux()
	_, err := RegisterRoutes(mux, "/admin", WithZones([]string{"Europe/Paris", "UTC"}))
	require.NoError(t, err)
	server := httptest.NewServer(mux)
	defer server.Close()

	source, err := RemoteSource(server.URL, "/admin", nil)
	require.NoError(t, err)

	got, err := source.Fetch(context.Background(), Kind, "utc")
	require.NoError(t, err)
	require.Equal(t, []option.Option{{Label: "UTC", Value: "UTC"}}, got)
}

func TestSourceFeedsAutocomplete(t *testing.T) {
	var committed any
	props := model.WidgetProps{
		ID:      "root_tz",
		Options: model.UIOptions{AutocompleteType: Kind},
	}
	ac := choice.NewAutocomplete(props, model.Handlers{OnChange: func(v any) { committed = v }},
		choice.WithFetcher(Source(WithZones([]string{"Asia/Tokyo", "UTC"}))))
	defer ac.Close()

	require.NoError(t, ac.Input("tok"))
	ac.Wait()
	require.Equal(t, "Asia/Tokyo", ac.Select(0))
	require.Equal(t, "Asia/Tokyo", committed)
}
