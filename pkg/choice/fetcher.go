package choice

import (
	"context"

	"github.com/goliatone/go-formwidgets/pkg/option"
)

// Fetcher produces suggestions for free-text input. kind is the configured
// autocomplete type so one fetcher can serve several sources. The wire
// protocol behind a Fetcher is opaque to the widgets.
type Fetcher interface {
	Fetch(ctx context.Context, kind, query string) ([]option.Option, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, kind, query string) ([]option.Option, error)

// Fetch calls the underlying function.
func (fn FetcherFunc) Fetch(ctx context.Context, kind, query string) ([]option.Option, error) {
	return fn(ctx, kind, query)
}
