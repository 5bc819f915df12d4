package vanilla

import (
	"encoding/json"
	"html"
	"strings"

	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

// buildFieldMarkup wraps a rendered control with its label and error list.
// Object components draw their own title, so they get no label.
func buildFieldMarkup(props model.WidgetProps, componentName, control string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="fw-field grid gap-2" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString(`"`)
	if len(props.RawErrors) > 0 {
		builder.WriteString(` data-invalid="true"`)
	}
	builder.WriteString(">\n")

	if label := strings.TrimSpace(props.DisplayLabel()); label != "" && componentName != "object" {
		builder.WriteString(`<label for="`)
		builder.WriteString(html.EscapeString(props.ID))
		builder.WriteString(`" class="fw-label">`)
		builder.WriteString(html.EscapeString(label))
		if props.Required {
			builder.WriteString(`<span class="fw-required" aria-hidden="true">*</span>`)
		}
		builder.WriteString("</label>\n")
	}

	builder.WriteString(strings.TrimSpace(control))
	builder.WriteByte('\n')

	if desc := strings.TrimSpace(props.Schema.Description); desc != "" && componentName != "object" {
		builder.WriteString(`<small class="fw-help text-sm text-gray-500">`)
		builder.WriteString(html.EscapeString(desc))
		builder.WriteString("</small>\n")
	}

	if len(props.RawErrors) > 0 {
		builder.WriteString(`<ul class="fw-errors" id="`)
		builder.WriteString(html.EscapeString(props.ID))
		builder.WriteString(`-errors">`)
		for _, message := range props.RawErrors {
			builder.WriteString("<li>")
			builder.WriteString(html.EscapeString(message))
			builder.WriteString("</li>")
		}
		builder.WriteString("</ul>\n")
	}

	builder.WriteString("</div>")
	return builder.String()
}

// hiddenInput carries a hidden field's value through the form. Non-string
// values are JSON encoded.
func hiddenInput(props model.WidgetProps) string {
	value := ""
	switch typed := props.Value.(type) {
	case nil:
	case string:
		value = typed
	case map[string]any, []any:
		if payload, err := json.Marshal(typed); err == nil {
			value = string(payload)
		}
	default:
		value = option.ValueString(typed)
	}
	return `<input type="hidden" id="` + html.EscapeString(props.ID) +
		`" name="` + html.EscapeString(props.ID) +
		`" value="` + html.EscapeString(value) + `">`
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
