package timezones

import (
	"cmp"
	"slices"
	"strings"

	"github.com/goliatone/go-formwidgets/pkg/option"
)

// Search returns zones containing query, case-insensitively, with prefix
// matches first. An empty query returns nothing unless EmptySearchTop is set.
func Search(zones []string, query string, limit int, opts Options) []string {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		if opts.EmptySearchMode != EmptySearchTop {
			return nil
		}
		return slices.Clone(zones[:min(limit, len(zones))])
	}

	var prefixed, contained []string
	for _, zone := range zones {
		lower := strings.ToLower(zone)
		switch {
		case strings.HasPrefix(lower, query):
			prefixed = append(prefixed, zone)
		case strings.Contains(lower, query):
			contained = append(contained, zone)
		}
	}
	slices.SortFunc(prefixed, cmp.Compare[string])
	slices.SortFunc(contained, cmp.Compare[string])

	out := append(prefixed, contained...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SearchOptions wraps Search results as options valued by zone and labelled
// by opts.Label.
func SearchOptions(zones []string, query string, limit int, opts Options) []option.Option {
	results := Search(zones, query, limit, opts)
	if len(results) == 0 {
		return nil
	}

	label := opts.Label
	if label == nil {
		label = func(zone string) string { return zone }
	}
	out := make([]option.Option, len(results))
	for i, zone := range results {
		out[i] = option.Option{Label: label(zone), Value: zone}
	}
	return out
}
