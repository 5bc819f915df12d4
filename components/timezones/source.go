package timezones

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/option"
	"github.com/goliatone/go-formwidgets/pkg/suggest"
)

// Kind is the default autocomplete type timezone fields declare through
// ui:autocompleteType.
const Kind = "timezones"

// Source searches the configured zones in process. The kind argument is
// ignored; route by kind with RegisterSource or a suggest.Router.
func Source(fns ...OptionFn) choice.Fetcher {
	opts := NewOptions(fns...)
	return choice.FetcherFunc(func(ctx context.Context, _ string, query string) ([]option.Option, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		zones, err := zonesFor(opts)
		if err != nil {
			return nil, fmt.Errorf("timezones: load zones: %w", err)
		}
		return SearchOptions(zones, query, 0, opts), nil
	})
}

// RegisterSource adds Source under opts.Kind to router.
func RegisterSource(router *suggest.Router, fns ...OptionFn) error {
	if router == nil {
		return fmt.Errorf("timezones: missing router")
	}
	opts := NewOptions(fns...)
	return router.Register(opts.Kind, Source(func(o *Options) { *o = opts }))
}

// RemoteSource queries a handler mounted under basePath on baseURL, using the
// handler's own search and limit parameters.
func RemoteSource(baseURL, basePath string, fns []OptionFn, httpOpts ...suggest.HTTPOption) (*suggest.HTTPSource, error) {
	opts := NewOptions(fns...)
	endpoint := strings.TrimRight(strings.TrimSpace(baseURL), "/") + mountPath(basePath, opts.RoutePath)
	source, err := suggest.NewHTTPSource(endpoint, append([]suggest.HTTPOption{
		suggest.WithQueryParam(opts.SearchParam),
		suggest.WithLimit(opts.LimitParam, opts.DefaultLimit),
		suggest.WithResultsPath("data"),
		suggest.WithValueField("value"),
		suggest.WithLabelField("label"),
	}, httpOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("timezones: remote source: %w", err)
	}
	return source, nil
}
