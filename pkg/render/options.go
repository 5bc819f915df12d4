package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formwidgets/pkg/model"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form definition.
type RenderOptions struct {
	// Values pre-populates controls keyed by field name. They take precedence
	// over form.Values.
	Values map[string]any
	// Errors flags fields as invalid. Messages are opaque to the widgets; only
	// a non-empty slice changes their state.
	Errors map[string][]string
	// Defaults seeds every ui option bag before field-level ui:options apply.
	Defaults map[string]any
	// Theme carries the resolved partial overrides, tokens and asset resolver.
	Theme *theme.RendererConfig
}

// Value returns the prefill for name, preferring RenderOptions over the form.
func (o RenderOptions) Value(form model.Form, name string) (any, bool) {
	if value, ok := o.Values[name]; ok {
		return value, true
	}
	value, ok := form.Values[name]
	return value, ok
}

// ErrorsFor returns the errors for name, merging RenderOptions and the form.
func (o RenderOptions) ErrorsFor(form model.Form, name string) []string {
	var out []string
	out = append(out, form.Errors[name]...)
	out = append(out, o.Errors[name]...)
	return out
}
