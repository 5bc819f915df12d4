package timezones

import (
	"net/http"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/suggest"
)

// Component keeps one Options value behind the handler, the routes and the
// suggestion source so they agree on limits, kind and labels.
type Component struct {
	opts Options
}

func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

func (c *Component) options() OptionFn {
	return func(o *Options) {
		if c != nil {
			*o = c.opts
		}
	}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	return NewOptions(c.options())
}

func (c *Component) Handler() http.Handler {
	return HandlerWithOptions(c.Options())
}

func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, c.Options())
}

func (c *Component) Source() choice.Fetcher {
	return Source(c.options())
}

// RegisterSource adds the component source to router under its kind.
func (c *Component) RegisterSource(router *suggest.Router) error {
	return RegisterSource(router, c.options())
}
