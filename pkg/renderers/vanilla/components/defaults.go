package components

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
	"github.com/goliatone/go-formwidgets/pkg/schema"
)

const templatePrefix = "templates/"

// Theme partial keys for the built-in component templates.
const (
	PartialSelect       = "forms.select"
	PartialAutocomplete = "forms.autocomplete"
	PartialText         = "forms.text"
)

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components used by the vanilla renderer.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameSelect, Descriptor{
		Renderer: selectRenderer,
	})
	registry.MustRegister(NameAutocomplete, Descriptor{
		Renderer: autocompleteRenderer,
		Scripts: []Script{
			{Src: "/formwidgets/autocomplete.js", Defer: true},
		},
	})
	registry.MustRegister(NameText, Descriptor{
		Renderer: templateRenderer(PartialText, templatePrefix+"text"),
	})
	registry.MustRegister(NameObject, Descriptor{
		Renderer: objectRenderer,
	})

	return registry
}

func renderTemplate(buf *bytes.Buffer, data ComponentData, partialKey, templateName string, payload map[string]any) error {
	if data.Template == nil {
		return fmt.Errorf("components: template renderer not configured for %q", templateName)
	}
	resolved := templateName
	if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
		resolved = candidate
	}
	rendered, err := data.Template.RenderTemplate(resolved, payload)
	if err != nil {
		return fmt.Errorf("components: render template %q: %w", resolved, err)
	}
	buf.WriteString(rendered)
	return nil
}

func templateRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, props model.WidgetProps, data ComponentData) error {
		value := ""
		if props.Value != nil {
			value = option.ValueString(props.Value)
		}
		return renderTemplate(buf, data, partialKey, templateName, map[string]any{
			"field": map[string]any{
				"id":          props.ID,
				"name":        props.ID,
				"value":       value,
				"placeholder": props.Placeholder,
				"required":    props.Required,
				"disabled":    props.Disabled,
				"readonly":    props.Readonly,
				"autofocus":   props.Autofocus,
				"invalid":     len(props.RawErrors) > 0,
			},
		})
	}
}

func selectRenderer(buf *bytes.Buffer, props model.WidgetProps, data ComponentData) error {
	view := choice.NewSelect(props, model.Handlers{}).View()
	return renderTemplate(buf, data, PartialSelect, templatePrefix+"select", map[string]any{
		"view": view,
	})
}

// autocompleteRenderer renders the static state of an autocomplete. With a
// fetcher configured, a prefilled single value is looked up so the input can
// show its label instead of the raw value.
func autocompleteRenderer(buf *bytes.Buffer, props model.WidgetProps, data ComponentData) error {
	opts := []choice.AutocompleteOption{
		choice.WithLogger(data.Logger),
		choice.WithInstanceID(props.ID),
	}
	if data.Context != nil {
		opts = append(opts, choice.WithContext(data.Context))
	}
	if data.Fetcher != nil {
		opts = append(opts, choice.WithFetcher(data.Fetcher))
	}
	if data.Observer != nil {
		opts = append(opts, choice.WithObserver(data.Observer))
	}
	ac := choice.NewAutocomplete(props, model.Handlers{}, opts...)
	defer ac.Close()

	if data.Fetcher != nil && !props.Multiple && props.Value != nil {
		if query := option.ValueString(props.Value); query != "" {
			if err := ac.Input(query); err == nil {
				ac.Wait()
			}
		}
	}

	return renderTemplate(buf, data, PartialAutocomplete, templatePrefix+"autocomplete", map[string]any{
		"view": ac.View(),
	})
}

// objectRenderer composes a nested object field. Its properties are not
// modelled as fields, so only the chrome and the expand control render.
func objectRenderer(buf *bytes.Buffer, props model.WidgetProps, data ComponentData) error {
	if data.RenderObject == nil {
		return fmt.Errorf("components: object renderer not configured for %q", props.ID)
	}
	nested, _ := props.Value.(map[string]any)
	rendered, err := data.RenderObject(model.ObjectProps{
		ID:          props.ID,
		Title:       objectTitle(props),
		Description: props.Schema.Description,
		Schema:      props.Schema,
		Options:     props.Options,
		Required:    props.Required,
		Disabled:    props.Disabled,
		Readonly:    props.Readonly,
		Expandable:  schema.CanExpand(props.Schema, props.Options, nested),
	})
	if err != nil {
		return fmt.Errorf("components: render object %q: %w", props.ID, err)
	}
	buf.WriteString(rendered)
	if nested != nil {
		payload, err := json.Marshal(nested)
		if err != nil {
			return fmt.Errorf("components: encode object %q: %w", props.ID, err)
		}
		buf.WriteString(`<input type="hidden" name="`)
		buf.WriteString(html.EscapeString(props.ID))
		buf.WriteString(`" value="`)
		buf.WriteString(html.EscapeString(string(payload)))
		buf.WriteString(`">`)
	}
	return nil
}

// objectTitle applies ui:title over the field label, the way the form-level
// title does.
func objectTitle(props model.WidgetProps) string {
	if title := strings.TrimSpace(props.Options.Title); title != "" {
		return title
	}
	return props.DisplayLabel()
}
