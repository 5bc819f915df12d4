package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwidgets/pkg/model"
)

// Transformer mutates a Form before UI schema and widget decorators run.
// Implementations can rename fields, relabel them or inject ui hints.
type Transformer interface {
	Transform(ctx context.Context, form *model.Form) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.Form) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.Form) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// PresetTransformer applies declarative overrides loaded from a YAML or JSON
// document:
//
//	title: Custom
//	ui:
//	  ui:options: {optionalIndex: 2}
//	fields:
//	  city:
//	    label: Town
//	    ui: {ui:autocompleteType: cities}
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Title       string                `yaml:"title"`
	Description string                `yaml:"description"`
	UI          map[string]any        `yaml:"ui"`
	Fields      map[string]fieldPatch `yaml:"fields"`
}

type fieldPatch struct {
	Label       string         `yaml:"label"`
	Description string         `yaml:"description"`
	Placeholder string         `yaml:"placeholder"`
	Rename      string         `yaml:"rename"`
	Required    *bool          `yaml:"required"`
	Hidden      *bool          `yaml:"hidden"`
	UI          map[string]any `yaml:"ui"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied form. Patching
// a field the form does not declare is an error.
func (t *PresetTransformer) Transform(ctx context.Context, form *model.Form) error {
	if form == nil {
		return errors.New("preset transformer: form is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.Title != "" {
		form.Title = t.document.Title
	}
	if t.document.Description != "" {
		form.Description = t.document.Description
	}
	if len(t.document.UI) > 0 {
		form.UI = mergeUI(form.UI, t.document.UI)
	}

	for name, patch := range t.document.Fields {
		idx := fieldIndex(form.Fields, name)
		if idx < 0 {
			return fmt.Errorf("preset transformer: field %q not found", name)
		}
		applyFieldPatch(&form.Fields[idx], patch)
	}
	return nil
}

func applyFieldPatch(field *model.Field, patch fieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Schema.Description = patch.Description
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	if patch.Hidden != nil {
		field.Hidden = *patch.Hidden
	}
	if len(patch.UI) > 0 {
		field.UI = mergeUI(field.UI, patch.UI)
	}
	if name := strings.TrimSpace(patch.Rename); name != "" {
		field.Name = name
	}
}

func fieldIndex(fields []model.Field, name string) int {
	for idx, field := range fields {
		if field.Name == name {
			return idx
		}
	}
	return -1
}

// mergeUI overlays src onto a copy of dst. Nested "ui:options" maps merge
// key by key.
func mergeUI(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for key, value := range dst {
		out[key] = value
	}
	for key, value := range src {
		existing, okExisting := out[key].(map[string]any)
		incoming, okIncoming := value.(map[string]any)
		if okExisting && okIncoming {
			out[key] = mergeUI(existing, incoming)
			continue
		}
		out[key] = value
	}
	return out
}
