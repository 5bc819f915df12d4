package model

import "github.com/goliatone/go-formwidgets/pkg/option"

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

// Schema is the subset of a JSON-Schema-like descriptor the widgets read.
// Validation keywords are deliberately absent.
type Schema struct {
	Title       string    `json:"title,omitempty" yaml:"title,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Type        FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string    `json:"format,omitempty" yaml:"format,omitempty"`
	Enum        []any     `json:"enum,omitempty" yaml:"enum,omitempty"`
	EnumNames   []string  `json:"enumNames,omitempty" yaml:"enumNames,omitempty"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
	Items       *Schema   `json:"items,omitempty" yaml:"items,omitempty"`
	// AdditionalProperties and MaxProperties feed the host expand rule for
	// object schemas.
	AdditionalProperties bool `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	MaxProperties        *int `json:"maxProperties,omitempty" yaml:"maxProperties,omitempty"`
}

// EnumOptions derives options from the schema enum, falling back to the item
// schema for arrays of enumerated values.
func (s Schema) EnumOptions() []option.Option {
	if len(s.Enum) > 0 {
		return option.FromValues(s.Enum, s.EnumNames)
	}
	if s.Items != nil && len(s.Items.Enum) > 0 {
		return option.FromValues(s.Items.Enum, s.Items.EnumNames)
	}
	return nil
}

// Element is a child field the host already rendered. Hidden elements occupy
// no layout space and are emitted without a wrapper.
type Element struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
	Hidden  bool   `json:"hidden,omitempty"`
}

// Field describes one property of a form definition before it is rendered.
type Field struct {
	Name        string         `json:"name" yaml:"name"`
	Label       string         `json:"label,omitempty" yaml:"label,omitempty"`
	Schema      Schema         `json:"schema" yaml:"schema"`
	UI          map[string]any `json:"ui,omitempty" yaml:"ui,omitempty"`
	Required    bool           `json:"required,omitempty" yaml:"required,omitempty"`
	Disabled    bool           `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Readonly    bool           `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Autofocus   bool           `json:"autofocus,omitempty" yaml:"autofocus,omitempty"`
	Hidden      bool           `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Placeholder string         `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	// Widget is filled by decorators when no explicit ui:widget was given.
	Widget string `json:"widget,omitempty" yaml:"widget,omitempty"`
}

// Multiple reports whether the field holds a list of choices.
func (f Field) Multiple() bool {
	return f.Schema.Type == FieldTypeArray
}

// Form is an object schema plus its ordered child fields, the unit the
// object layout renders.
type Form struct {
	ID          string              `json:"id" yaml:"id"`
	Title       string              `json:"title,omitempty" yaml:"title,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      Schema              `json:"schema,omitempty" yaml:"schema,omitempty"`
	UI          map[string]any      `json:"ui,omitempty" yaml:"ui,omitempty"`
	Fields      []Field             `json:"fields" yaml:"fields"`
	Values      map[string]any      `json:"values,omitempty" yaml:"values,omitempty"`
	Errors      map[string][]string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Disabled    bool                `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Readonly    bool                `json:"readonly,omitempty" yaml:"readonly,omitempty"`
}
