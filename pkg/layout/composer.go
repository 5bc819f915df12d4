// Package layout composes object fields: it partitions pre-rendered child
// elements into a primary group and an optional collapsible group and writes
// the container markup around them.
package layout

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-formwidgets/pkg/model"
)

// Names of the host templates the composer resolves.
const (
	TemplateTitle       = "TitleFieldTemplate"
	TemplateDescription = "DescriptionFieldTemplate"
	TemplateAddButton   = "AddButtonTemplate"
)

// DefaultOptionalTitle labels the collapsible optional group.
const DefaultOptionalTitle = "Optional Parameters"

const defaultOptionalElementClass = "p-2"

// TemplateContext is handed to every host template.
type TemplateContext struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	ClassName   string         `json:"className,omitempty"`
	Schema      model.Schema   `json:"schema"`
	UISchema    map[string]any `json:"uiSchema,omitempty"`
}

// TemplateProvider resolves host templates by name. The composer depends on
// nothing else from the host.
type TemplateProvider interface {
	Resolve(name string, ctx TemplateContext) (string, error)
}

// TemplateProviderFunc adapts a function into a TemplateProvider.
type TemplateProviderFunc func(name string, ctx TemplateContext) (string, error)

// Resolve calls the underlying function.
func (fn TemplateProviderFunc) Resolve(name string, ctx TemplateContext) (string, error) {
	return fn(name, ctx)
}

// Layout is the partitioned view of an object's children for one render.
type Layout struct {
	ShowTitle       bool
	Title           string
	ShowDescription bool
	Description     string

	Primary  []model.Element
	Optional []model.Element
	// ShowOptional is true only when a cut index is configured and at least
	// one element falls at or after it.
	ShowOptional  bool
	OptionalTitle string

	ShowExpand     bool
	ExpandDisabled bool
}

// Compose partitions props.Elements at the configured cut index. It holds no
// state between calls.
func Compose(props model.ObjectProps) Layout {
	opts := props.Options
	layout := Layout{
		Title:       props.Title,
		Description: firstNonEmpty(opts.Description, props.Description),
	}
	// A ui title only switches the block on; the text is the host's title.
	layout.ShowTitle = opts.Title != "" || props.Title != ""
	layout.ShowDescription = layout.Description != ""

	elements := props.Elements
	if opts.CutIndex == nil {
		layout.Primary = append([]model.Element(nil), elements...)
	} else {
		cut := *opts.CutIndex
		if cut < 0 {
			cut = 0
		}
		if cut > len(elements) {
			cut = len(elements)
		}
		layout.Primary = append([]model.Element(nil), elements[:cut]...)
		if len(elements) > cut {
			layout.Optional = append([]model.Element(nil), elements[cut:]...)
			layout.ShowOptional = true
		}
	}
	layout.OptionalTitle = firstNonEmpty(opts.OptionalTitle, DefaultOptionalTitle)

	layout.ShowExpand = props.Expandable
	layout.ExpandDisabled = props.Disabled || props.Readonly
	return layout
}

// Composer renders composed layouts into markup.
type Composer struct {
	templates TemplateProvider
}

// New constructs a composer resolving host templates through templates.
func New(templates TemplateProvider) *Composer {
	return &Composer{templates: templates}
}

// Render composes props and writes the container markup.
func (c *Composer) Render(props model.ObjectProps) (string, error) {
	if c == nil || c.templates == nil {
		return "", errors.New("layout: template provider is nil")
	}
	layout := Compose(props)
	opts := props.Options
	id := strings.TrimSpace(props.ID)

	var builder strings.Builder
	builder.WriteString(`<div`)
	if id != "" {
		builder.WriteString(` id="`)
		builder.WriteString(html.EscapeString(id))
		builder.WriteString(`"`)
	}
	builder.WriteString(` class="fw-object">`)

	if layout.ShowTitle {
		rendered, err := c.templates.Resolve(TemplateTitle, TemplateContext{
			ID:       suffixID(id, "title"),
			Title:    layout.Title,
			Required: props.Required,
			Schema:   props.Schema,
			UISchema: props.UISchema,
		})
		if err != nil {
			return "", fmt.Errorf("layout: render %s: %w", TemplateTitle, err)
		}
		builder.WriteString(rendered)
	}
	if layout.ShowDescription {
		rendered, err := c.templates.Resolve(TemplateDescription, TemplateContext{
			ID:          suffixID(id, "description"),
			Description: layout.Description,
			Schema:      props.Schema,
			UISchema:    props.UISchema,
		})
		if err != nil {
			return "", fmt.Errorf("layout: render %s: %w", TemplateDescription, err)
		}
		builder.WriteString(rendered)
	}

	builder.WriteString(`<div class="`)
	builder.WriteString(html.EscapeString(joinClasses("fw-object-fields", sanitizeClassList(opts.WrapperClass))))
	builder.WriteString(`">`)
	writeElements(&builder, layout.Primary, sanitizeClassList(opts.ElementClass))

	if layout.ShowExpand {
		rendered, err := c.templates.Resolve(TemplateAddButton, TemplateContext{
			ID:        suffixID(id, "add"),
			Disabled:  layout.ExpandDisabled,
			ClassName: "object-property-expand",
			Schema:    props.Schema,
			UISchema:  props.UISchema,
		})
		if err != nil {
			return "", fmt.Errorf("layout: render %s: %w", TemplateAddButton, err)
		}
		builder.WriteString(`<div class="fw-object-expand flex justify-end">`)
		builder.WriteString(rendered)
		builder.WriteString(`</div>`)
	}
	builder.WriteString(`</div>`)

	if layout.ShowOptional {
		var body strings.Builder
		body.WriteString(`<div class="`)
		body.WriteString(html.EscapeString(joinClasses("fw-object-optional", sanitizeClassList(opts.OptionalWrapperClass))))
		body.WriteString(`">`)
		elementClass := sanitizeClassList(opts.OptionalElementClass)
		if elementClass == "" {
			elementClass = defaultOptionalElementClass
		}
		writeElements(&body, layout.Optional, elementClass)
		body.WriteString(`</div>`)

		section := NewSection(layout.OptionalTitle, "", false, body.String())
		section.ID = suffixID(id, "optional")
		builder.WriteString(section.Render())
	}

	builder.WriteString(`</div>`)
	return builder.String(), nil
}

// writeElements wraps each visible element in a field container. Hidden
// elements are written bare: a wrapper would reserve space for nothing.
func writeElements(builder *strings.Builder, elements []model.Element, elementClass string) {
	for _, element := range elements {
		if element.Hidden {
			builder.WriteString(element.Content)
			continue
		}
		builder.WriteString(`<div class="`)
		builder.WriteString(html.EscapeString(joinClasses("fw-object-field", elementClass)))
		builder.WriteString(`"`)
		if name := strings.TrimSpace(element.Name); name != "" {
			builder.WriteString(` data-field="`)
			builder.WriteString(html.EscapeString(name))
			builder.WriteString(`"`)
		}
		builder.WriteString(`>`)
		builder.WriteString(element.Content)
		builder.WriteString(`</div>`)
	}
}

func suffixID(id, suffix string) string {
	if id == "" {
		return ""
	}
	return id + "-" + suffix
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func joinClasses(classes ...string) string {
	keep := make([]string, 0, len(classes))
	for _, class := range classes {
		if class = strings.TrimSpace(class); class != "" {
			keep = append(keep, class)
		}
	}
	return strings.Join(keep, " ")
}

// sanitizeClassList drops tokens in the reserved fw- namespace so author
// hooks cannot impersonate structural classes.
func sanitizeClassList(value string) string {
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "fw-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}
