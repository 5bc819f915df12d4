package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

func TestHTTPSourceDefaultConvention(t *testing.T) {
	requests := make(chan *http.Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"data":[
			{"value":"ams","label":"Amsterdam"},
			{"value":7,"label":"Seven"},
			{"label":"no value"},
			"bare"
		]}`))
	}))
	defer server.Close()

	source, err := NewHTTPSource(server.URL+"/api/options/{kind}",
		WithLimit("limit", 10),
		WithParams(map[string]string{"country": "nl"}),
	)
	require.NoError(t, err)

	got, err := source.Fetch(context.Background(), "cities", "ams")
	require.NoError(t, err)
	seen := <-requests
	require.Equal(t, "/api/options/cities", seen.URL.Path)
	require.Equal(t, "ams", seen.URL.Query().Get("q"))
	require.Equal(t, "10", seen.URL.Query().Get("limit"))
	require.Equal(t, "nl", seen.URL.Query().Get("country"))
	require.Equal(t, "application/json", seen.Header.Get("Accept"))
	require.Equal(t, []option.Option{
		{Label: "Amsterdam", Value: "ams"},
		{Label: "Seven", Value: float64(7)},
		{Value: "bare"},
	}, got)
}

func TestHTTPSourceNestedPaths(t *testing.T) {
	requests := make(chan *http.Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"result":{"items":[
			{"attributes":{"id":"ber","name":"Berlin"}}
		]}}`))
	}))
	defer server.Close()

	source, err := NewHTTPSource(server.URL,
		WithQueryParam("search"),
		WithHeader("X-Api-Key", "token"),
		WithResultsPath("result.items"),
		WithValueField("attributes.id"),
		WithLabelField("attributes.name"),
	)
	require.NoError(t, err)

	got, err := source.Fetch(context.Background(), "cities", "berl")
	require.NoError(t, err)
	seen := <-requests
	require.Equal(t, "berl", seen.URL.Query().Get("search"))
	require.Equal(t, "token", seen.Header.Get("X-Api-Key"))
	require.Equal(t, []option.Option{{Label: "Berlin", Value: "ber"}}, got)
}

func TestHTTPSourceErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "bad-json" {
			_, _ = w.Write([]byte(`{not json`))
			return
		}
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	source, err := NewHTTPSource(server.URL)
	require.NoError(t, err)

	_, err = source.Fetch(context.Background(), "x", "q")
	require.ErrorContains(t, err, "unexpected status 502")

	_, err = source.Fetch(context.Background(), "x", "bad-json")
	require.ErrorContains(t, err, "suggest: decode")

	_, err = NewHTTPSource("  ")
	require.Error(t, err)
}

type countingFetcher struct {
	calls   atomic.Int32
	options []option.Option
	err     error
}

func (f *countingFetcher) Fetch(context.Context, string, string) ([]option.Option, error) {
	f.calls.Add(1)
	return f.options, f.err
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedSourceServesRepeatQueries(t *testing.T) {
	mr, client := newRedis(t)
	inner := &countingFetcher{options: []option.Option{{Label: "Oslo", Value: "osl"}}}

	cached, err := NewCachedSource(inner, client, WithTTL(time.Minute), WithKeyPrefix("test"), WithCaseInsensitiveKeys())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := cached.Fetch(ctx, "cities", "Os")
	require.NoError(t, err)
	second, err := cached.Fetch(ctx, "cities", " os ")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, int32(1), inner.calls.Load())
	require.Equal(t, "test:cities:os", cached.Key("cities", "Os"))
	require.True(t, mr.Exists("test:cities:os"))
	require.Equal(t, time.Minute, mr.TTL("test:cities:os"))

	mr.FastForward(2 * time.Minute)
	_, err = cached.Fetch(ctx, "cities", "os")
	require.NoError(t, err)
	require.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedSourceKeepsQueryCaseByDefault(t *testing.T) {
	mr, client := newRedis(t)
	inner := &countingFetcher{options: []option.Option{{Label: "Alpha", Value: "A"}}}
	cached, err := NewCachedSource(inner, client, WithKeyPrefix("test"))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cached.Fetch(ctx, "codes", "A")
	require.NoError(t, err)
	_, err = cached.Fetch(ctx, "codes", "a")
	require.NoError(t, err)

	require.Equal(t, int32(2), inner.calls.Load())
	require.True(t, mr.Exists("test:codes:A"))
	require.True(t, mr.Exists("test:codes:a"))
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	mr, client := newRedis(t)
	inner := &countingFetcher{err: errors.New("upstream down")}
	cached, err := NewCachedSource(inner, client)
	require.NoError(t, err)

	_, err = cached.Fetch(context.Background(), "cities", "x")
	require.Error(t, err)
	require.Empty(t, mr.Keys())
}

func TestCachedSourceDiscardsCorruptEntries(t *testing.T) {
	mr, client := newRedis(t)
	inner := &countingFetcher{options: []option.Option{{Value: "fresh"}}}
	cached, err := NewCachedSource(inner, client)
	require.NoError(t, err)
	require.NoError(t, mr.Set(cached.Key("k", "q"), "{broken"))

	got, err := cached.Fetch(context.Background(), "k", "q")
	require.NoError(t, err)
	require.Equal(t, []option.Option{{Value: "fresh"}}, got)

	stored, err := mr.Get(cached.Key("k", "q"))
	require.NoError(t, err)
	var decoded []option.Option
	require.NoError(t, json.Unmarshal([]byte(stored), &decoded))
	require.Equal(t, got, decoded)
}

func TestCachedSourceFallsBackWhenRedisIsDown(t *testing.T) {
	mr, client := newRedis(t)
	inner := &countingFetcher{options: []option.Option{{Value: "direct"}}}
	cached, err := NewCachedSource(inner, client)
	require.NoError(t, err)
	mr.Close()

	got, err := cached.Fetch(context.Background(), "k", "q")
	require.NoError(t, err)
	require.Equal(t, []option.Option{{Value: "direct"}}, got)
}

func TestListSourceRanksPrefixMatches(t *testing.T) {
	source := NewListSource([]option.Option{
		{Label: "Europe/Paris", Value: "Europe/Paris"},
		{Label: "America/Paramaribo", Value: "America/Paramaribo"},
		{Label: "Paris Orly", Value: "ORY"},
		{Label: "Lisbon", Value: "LIS"},
	}, 2)

	got, err := source.Fetch(context.Background(), "airports", "par")
	require.NoError(t, err)
	require.Equal(t, []option.Option{
		{Label: "Paris Orly", Value: "ORY"},
		{Label: "Europe/Paris", Value: "Europe/Paris"},
	}, got)

	byValue, err := source.Fetch(context.Background(), "airports", "lis")
	require.NoError(t, err)
	require.Equal(t, []option.Option{{Label: "Lisbon", Value: "LIS"}}, byValue)

	empty, err := source.Fetch(context.Background(), "airports", " ")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestRouterDispatchesByKind(t *testing.T) {
	router := NewRouter()
	router.MustRegister("letters", NewValueListSource([]string{"alpha", "beta"}, 0))
	require.Error(t, router.Register("", NewValueListSource(nil, 0)))
	require.Error(t, router.Register("nil", nil))

	got, err := router.Fetch(context.Background(), "letters", "be")
	require.NoError(t, err)
	require.Equal(t, []option.Option{{Label: "beta", Value: "beta"}}, got)

	_, err = router.Fetch(context.Background(), "numbers", "1")
	require.ErrorIs(t, err, ErrUnknownKind)

	router.SetFallback(choice.FetcherFunc(func(_ context.Context, kind, query string) ([]option.Option, error) {
		return []option.Option{{Label: kind, Value: query}}, nil
	}))
	got, err = router.Fetch(context.Background(), "numbers", "1")
	require.NoError(t, err)
	require.Equal(t, []option.Option{{Label: "numbers", Value: "1"}}, got)
	require.Equal(t, []string{"letters"}, router.Kinds())
}

func TestRouterFeedsAutocomplete(t *testing.T) {
	router := NewRouter()
	router.MustRegister("letters", NewValueListSource([]string{"alpha", "beta", "gamma"}, 0))

	props := model.WidgetProps{ID: "root_letter", Options: model.UIOptions{AutocompleteType: "letters"}}
	ac := choice.NewAutocomplete(props, model.Handlers{}, choice.WithFetcher(router))
	defer ac.Close()

	require.NoError(t, ac.Input("a"))
	ac.Wait()
	require.Equal(t, []option.Option{
		{Label: "alpha", Value: "alpha"},
		{Label: "beta", Value: "beta"},
		{Label: "gamma", Value: "gamma"},
	}, ac.Displayed())
}
