package widgets

import (
	"testing"

	"github.com/goliatone/go-formwidgets/pkg/model"
)

func TestResolve_ExplicitWidgetWins(t *testing.T) {
	reg := NewRegistry()
	field := model.Field{
		Schema: model.Schema{Type: model.FieldTypeString, Enum: []any{"a"}},
		UI:     map[string]any{"ui:widget": "radio"},
	}

	if got, ok := reg.Resolve(field); !ok || got != "radio" {
		t.Fatalf("expected explicit widget to win, got %q (ok=%v)", got, ok)
	}

	nested := model.Field{UI: map[string]any{"ui:options": map[string]any{"widget": "custom"}}}
	if got, _ := reg.Resolve(nested); got != "custom" {
		t.Fatalf("expected ui:options widget, got %q", got)
	}

	assigned := model.Field{Widget: "preset"}
	if got, _ := reg.Resolve(assigned); got != "preset" {
		t.Fatalf("expected assigned widget, got %q", got)
	}
}

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		field  model.Field
		expect string
	}{
		{
			name: "autocomplete type set",
			field: model.Field{
				Schema: model.Schema{Type: model.FieldTypeString, Enum: []any{"a"}},
				UI:     map[string]any{"ui:autocompleteType": "cities"},
			},
			expect: WidgetAutocomplete,
		},
		{
			name: "autocomplete type in ui options",
			field: model.Field{
				UI: map[string]any{"ui:options": map[string]any{"autocompleteType": "zones"}},
			},
			expect: WidgetAutocomplete,
		},
		{
			name: "schema enum",
			field: model.Field{
				Schema: model.Schema{Type: model.FieldTypeString, Enum: []any{"a"}},
			},
			expect: WidgetSelect,
		},
		{
			name: "array of enum items",
			field: model.Field{
				Schema: model.Schema{
					Type:  model.FieldTypeArray,
					Items: &model.Schema{Type: model.FieldTypeString, Enum: []any{"a", "b"}},
				},
			},
			expect: WidgetSelect,
		},
		{
			name: "ui enum options",
			field: model.Field{
				UI: map[string]any{"ui:enumOptions": []any{"x"}},
			},
			expect: WidgetSelect,
		},
		{
			name: "object",
			field: model.Field{
				Schema: model.Schema{Type: model.FieldTypeObject},
			},
			expect: WidgetObject,
		},
		{
			name: "plain string",
			field: model.Field{
				Schema: model.Schema{Type: model.FieldTypeString},
			},
			expect: WidgetText,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.field)
			if !ok {
				t.Fatalf("expected widget %q, got none", tc.expect)
			}
			if got != tc.expect {
				t.Fatalf("expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestResolve_PriorityAndOrder(t *testing.T) {
	reg := &Registry{}
	reg.Register("first", 10, func(model.Field) bool { return true })
	reg.Register("second", 10, func(model.Field) bool { return true })
	reg.Register("urgent", 20, func(f model.Field) bool { return f.Name == "urgent" })

	if got, _ := reg.Resolve(model.Field{Name: "plain"}); got != "first" {
		t.Fatalf("expected registration order tie-break, got %q", got)
	}
	if got, _ := reg.Resolve(model.Field{Name: "urgent"}); got != "urgent" {
		t.Fatalf("expected higher priority, got %q", got)
	}

	empty := &Registry{}
	if _, ok := empty.Resolve(model.Field{}); ok {
		t.Fatalf("empty registry should not resolve")
	}
}

func TestDecorate_AssignsWidgets(t *testing.T) {
	reg := NewRegistry()
	form := &model.Form{
		Fields: []model.Field{
			{Name: "size", Schema: model.Schema{Enum: []any{"s"}}},
			{Name: "zone", UI: map[string]any{"ui:autocompleteType": "zones"}},
			{Name: "kept", Widget: "custom"},
		},
	}
	if err := reg.Decorate(form); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	want := []string{WidgetSelect, WidgetAutocomplete, "custom"}
	for idx, field := range form.Fields {
		if field.Widget != want[idx] {
			t.Fatalf("field %s: expected %q, got %q", field.Name, want[idx], field.Widget)
		}
	}
}
