package suggest

import (
	"context"
	"sort"
	"strings"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

// ListSource filters a fixed option list. Matches are case-insensitive on
// label or value; prefix matches rank first.
type ListSource struct {
	options []option.Option
	limit   int
}

var _ choice.Fetcher = (*ListSource)(nil)

// NewListSource filters options, returning at most limit entries (0 means
// no limit).
func NewListSource(options []option.Option, limit int) *ListSource {
	return &ListSource{
		options: append([]option.Option(nil), options...),
		limit:   limit,
	}
}

// NewValueListSource wraps bare values.
func NewValueListSource(values []string, limit int) *ListSource {
	options := make([]option.Option, 0, len(values))
	for _, value := range values {
		options = append(options, option.Option{Label: value, Value: value})
	}
	return &ListSource{options: options, limit: limit}
}

// Fetch implements choice.Fetcher. An empty query matches nothing.
func (s *ListSource) Fetch(ctx context.Context, _ string, query string) ([]option.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	type match struct {
		opt      option.Option
		isPrefix bool
		pos      int
	}
	matches := make([]match, 0, 16)
	for idx, opt := range s.options {
		label := strings.ToLower(opt.Label)
		value := strings.ToLower(option.ValueString(opt.Value))
		if !strings.Contains(label, q) && !strings.Contains(value, q) {
			continue
		}
		matches = append(matches, match{
			opt:      opt,
			isPrefix: strings.HasPrefix(label, q) || strings.HasPrefix(value, q),
			pos:      idx,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].pos < matches[j].pos
	})
	if s.limit > 0 && len(matches) > s.limit {
		matches = matches[:s.limit]
	}

	out := make([]option.Option, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.opt)
	}
	return out, nil
}
