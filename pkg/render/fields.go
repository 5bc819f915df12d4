package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/uischema"
)

// IDPrefix prefixes every control id so ids stay unique next to host markup.
const IDPrefix = "root"

// FieldID returns the control id of a top-level field.
func FieldID(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return IDPrefix
	}
	return IDPrefix + "_" + name
}

// Prepare copies form and runs the decorators over the copy in order, so the
// caller's definition is never mutated.
func Prepare(form model.Form, decorators ...model.Decorator) (model.Form, error) {
	out := form
	out.UI = cloneMap(form.UI)
	out.Fields = make([]model.Field, len(form.Fields))
	for idx, field := range form.Fields {
		field.UI = cloneMap(field.UI)
		out.Fields[idx] = field
	}
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&out); err != nil {
			return model.Form{}, fmt.Errorf("render: decorate form %q: %w", form.ID, err)
		}
	}
	return out, nil
}

// Defaults merges option defaults; later maps win.
func Defaults(layers ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, layer := range layers {
		for key, value := range layer {
			out[key] = value
		}
	}
	return out
}

// FormData merges form.Values with the RenderOptions prefill.
func (o RenderOptions) FormData(form model.Form) map[string]any {
	return Defaults(form.Values, o.Values)
}

// WidgetProps resolves the ui options of field and assembles the props its
// widget receives. Form-level disabled/readonly flags cascade to every field.
func WidgetProps(form model.Form, field model.Field, opts RenderOptions, defaults map[string]any) (model.WidgetProps, error) {
	uiOpts, err := uischema.ResolveField(field, defaults)
	if err != nil {
		return model.WidgetProps{}, err
	}
	value, ok := opts.Value(form, field.Name)
	if !ok {
		value = field.Schema.Default
	}
	return model.WidgetProps{
		ID:          FieldID(field.Name),
		Label:       firstNonEmpty(field.Label, uiOpts.Title),
		Schema:      field.Schema,
		Options:     uiOpts,
		Value:       value,
		Required:    field.Required,
		Disabled:    field.Disabled || form.Disabled,
		Readonly:    field.Readonly || form.Readonly,
		Multiple:    field.Multiple(),
		Autofocus:   field.Autofocus,
		Placeholder: field.Placeholder,
		RawErrors:   opts.ErrorsFor(form, field.Name),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
