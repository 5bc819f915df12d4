package timezones

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwidgets/pkg/option"
	"github.com/goliatone/go-formwidgets/pkg/suggest"
)

func TestSearch(t *testing.T) {
	zones := []string{"x/a/b", "a/b/c", "a/b", "c/d", "Europe/Paris"}
	opts := NewOptions()

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{name: "case insensitive", query: "eUrOpE/p", limit: 10, want: []string{"Europe/Paris"}},
		{name: "prefix first", query: "a/b", limit: 10, want: []string{"a/b", "a/b/c", "x/a/b"}},
		{name: "limited", query: "a/b", limit: 2, want: []string{"a/b", "a/b/c"}},
		{name: "negative limit", query: "a/b", limit: -1, want: nil},
		{name: "empty query", query: "  ", limit: 10, want: nil},
		{name: "no match", query: "tokyo", limit: 10, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Search(zones, tt.query, tt.limit, opts))
		})
	}
}

func TestSearchEmptyQueryTop(t *testing.T) {
	opts := NewOptions(WithDefaultLimit(2), WithMaxLimit(3), WithEmptySearchMode(EmptySearchTop))
	zones := []string{"a", "b", "c", "d"}

	assert.Equal(t, []string{"a", "b"}, Search(zones, "", 0, opts))
	assert.Equal(t, []string{"a", "b", "c"}, Search(zones, "", 10, opts))
}

func TestSearchOptionsLabels(t *testing.T) {
	zones := []string{"UTC", "Asia/Kolkata"}

	got := SearchOptions(zones, "utc", 10, NewOptions())
	assert.Equal(t, []option.Option{{Label: "UTC", Value: "UTC"}}, got)

	got = SearchOptions(zones, "kolkata", 10, NewOptions(WithLabel(OffsetLabel)))
	assert.Equal(t, []option.Option{{Label: "UTC+05:30", Value: "Asia/Kolkata"}}, got)
}

func TestRegisterSourceUsesKind(t *testing.T) {
	router := suggest.NewRouter()
	component := New(WithKind("zones"), WithZones([]string{"Europe/Amsterdam", "UTC"}))
	require.NoError(t, component.RegisterSource(router))
	assert.Equal(t, []string{"zones"}, router.Kinds())

	got, err := router.Fetch(context.Background(), "zones", "amster")
	require.NoError(t, err)
	assert.Equal(t, []option.Option{{Label: "Europe/Amsterdam", Value: "Europe/Amsterdam"}}, got)

	assert.Error(t, RegisterSource(nil))
}
