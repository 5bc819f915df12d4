package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formwidgets/pkg/model"
)

// Extension keys read from OpenAPI schemas.
const (
	EnumNamesExtension = "x-enumNames"
	OrderExtension     = "x-formwidgets-order"
	UIExtension        = "x-ui"
)

// LoadOptions tunes LoadForm.
type LoadOptions struct {
	// ResolveReferences allows external $ref resolution and validates the
	// document.
	ResolveReferences bool
}

// LoadForm parses an OpenAPI document and builds the form for the named
// component schema.
func LoadForm(ctx context.Context, raw []byte, name string, opts LoadOptions) (model.Form, error) {
	if err := ctx.Err(); err != nil {
		return model.Form{}, err
	}
	if len(raw) == 0 {
		return model.Form{}, errors.New("schema: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.ResolveReferences,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return model.Form{}, fmt.Errorf("schema: load document: %w", err)
	}
	if opts.ResolveReferences {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return model.Form{}, fmt.Errorf("schema: validate: %w", err)
		}
	}
	if doc.Components == nil {
		return model.Form{}, fmt.Errorf("schema: component %q not found", name)
	}
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref == nil {
		return model.Form{}, fmt.Errorf("schema: component %q not found", name)
	}
	return FormFromOpenAPI(name, ref)
}

// FormFromOpenAPI flattens an object schema into a form: one field per
// property, ordered by the x-formwidgets-order extension and then by name.
func FormFromOpenAPI(id string, ref *openapi3.SchemaRef) (model.Form, error) {
	if ref == nil || ref.Value == nil {
		return model.Form{}, fmt.Errorf("schema: form %q has no schema", id)
	}
	src := ref.Value
	root := FromOpenAPI(ref)
	if root.Type != "" && root.Type != model.FieldTypeObject {
		return model.Form{}, fmt.Errorf("schema: form %q must be an object, got %s", id, root.Type)
	}

	form := model.Form{
		ID:          id,
		Title:       root.Title,
		Description: root.Description,
		Schema:      root,
		UI:          extensionMap(src.Extensions[UIExtension]),
	}

	required := make(map[string]struct{}, len(src.Required))
	for _, name := range src.Required {
		required[name] = struct{}{}
	}

	for _, name := range propertyOrder(src) {
		property := src.Properties[name]
		fieldSchema := FromOpenAPI(property)
		field := model.Field{
			Name:   name,
			Label:  fieldSchema.Title,
			Schema: fieldSchema,
		}
		if _, ok := required[name]; ok {
			field.Required = true
		}
		if property != nil && property.Value != nil {
			field.UI = extensionMap(property.Value.Extensions[UIExtension])
			field.Readonly = property.Value.ReadOnly
		}
		form.Fields = append(form.Fields, field)
	}
	return form, nil
}

// FromOpenAPI converts the subset of an OpenAPI schema the widgets read.
func FromOpenAPI(ref *openapi3.SchemaRef) model.Schema {
	if ref == nil || ref.Value == nil {
		return model.Schema{}
	}
	src := ref.Value
	out := model.Schema{
		Title:       src.Title,
		Description: src.Description,
		Type:        model.FieldType(firstSchemaType(src.Type)),
		Format:      src.Format,
		Default:     src.Default,
	}
	if len(src.Enum) > 0 {
		out.Enum = append([]any(nil), src.Enum...)
		out.EnumNames = enumNames(src.Extensions[EnumNamesExtension], len(src.Enum))
	}
	if src.Items != nil {
		items := FromOpenAPI(src.Items)
		out.Items = &items
	}
	ap := src.AdditionalProperties
	out.AdditionalProperties = (ap.Has != nil && *ap.Has) || ap.Schema != nil
	if src.MaxProps != nil {
		value := int(*src.MaxProps)
		out.MaxProperties = &value
	}
	return out
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// enumNames accepts the extension only when it names every enum value.
func enumNames(raw any, count int) []string {
	values, ok := raw.([]any)
	if !ok || len(values) != count {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		name, ok := value.(string)
		if !ok {
			return nil
		}
		out = append(out, name)
	}
	return out
}

func propertyOrder(src *openapi3.Schema) []string {
	seen := make(map[string]struct{}, len(src.Properties))
	order := make([]string, 0, len(src.Properties))
	if listed, ok := src.Extensions[OrderExtension].([]any); ok {
		for _, entry := range listed {
			name, ok := entry.(string)
			if !ok {
				continue
			}
			name = strings.TrimSpace(name)
			if _, exists := src.Properties[name]; !exists {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			order = append(order, name)
		}
	}
	rest := make([]string, 0, len(src.Properties))
	for name := range src.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func extensionMap(raw any) map[string]any {
	mapped, ok := raw.(map[string]any)
	if !ok || len(mapped) == 0 {
		return nil
	}
	out := make(map[string]any, len(mapped))
	for key, value := range mapped {
		out[key] = value
	}
	return out
}
