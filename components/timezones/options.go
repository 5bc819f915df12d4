package timezones

import "net/http"

// EmptySearchMode decides what an empty query returns.
type EmptySearchMode string

const (
	// EmptySearchNone returns no zones until the user types.
	EmptySearchNone EmptySearchMode = "none"
	// EmptySearchTop returns the first zones of the list.
	EmptySearchTop EmptySearchMode = "top"
)

// GuardFunc authorises a handler request. Returning a StatusError picks the
// response status; any other error answers 403.
type GuardFunc func(r *http.Request) error

// LabelFunc renders the option label shown next to a zone.
type LabelFunc func(zone string) string

// Options configure the handler, the in-process source and the route.
type Options struct {
	RoutePath       string
	SearchParam     string
	LimitParam      string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc

	// Kind is the autocomplete type the source registers under.
	Kind string
	// Label defaults to the zone name itself.
	Label LabelFunc

	// Zones replaces the embedded IANA list when non-nil.
	Zones []string
}

// OptionFn mutates Options.
type OptionFn func(*Options)

const (
	defaultRoutePath = "/api/timezones"
	defaultLimit     = 50
	defaultMaxLimit  = 200
)

// DefaultOptions returns the configuration used when no overrides apply.
func DefaultOptions() Options {
	return Options{
		RoutePath:       defaultRoutePath,
		SearchParam:     "q",
		LimitParam:      "limit",
		DefaultLimit:    defaultLimit,
		MaxLimit:        defaultMaxLimit,
		EmptySearchMode: EmptySearchNone,
		Kind:            Kind,
	}
}

// NewOptions applies fns over DefaultOptions and restores defaults for any
// field an override left blank.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}

	base := DefaultOptions()
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = base.DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = base.MaxLimit
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = base.EmptySearchMode
	}
	if opts.RoutePath == "" {
		opts.RoutePath = base.RoutePath
	}
	if opts.SearchParam == "" {
		opts.SearchParam = base.SearchParam
	}
	if opts.LimitParam == "" {
		opts.LimitParam = base.LimitParam
	}
	if opts.Kind == "" {
		opts.Kind = base.Kind
	}
	if opts.Zones != nil {
		opts.Zones = append([]string{}, opts.Zones...)
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) { o.RoutePath = path }
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) { o.SearchParam = name }
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) { o.LimitParam = name }
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) { o.DefaultLimit = limit }
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) { o.MaxLimit = limit }
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) { o.EmptySearchMode = mode }
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

// WithKind registers the source under a different autocomplete type.
func WithKind(kind string) OptionFn {
	return func(o *Options) { o.Kind = kind }
}

// WithLabel formats option labels, e.g. with OffsetLabel.
func WithLabel(label LabelFunc) OptionFn {
	return func(o *Options) { o.Label = label }
}

func WithZones(zones []string) OptionFn {
	return func(o *Options) {
		if zones == nil {
			o.Zones = nil
			return
		}
		o.Zones = append([]string{}, zones...)
	}
}

// clampLimit maps a requested limit onto [0, MaxLimit]; zero means the
// default limit and negatives disable results.
func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
