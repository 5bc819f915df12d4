package render

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

func TestPrepareDoesNotMutateInput(t *testing.T) {
	form := model.Form{
		ID: "f",
		UI: map[string]any{"ui:title": "Original"},
		Fields: []model.Field{
			{Name: "a", UI: map[string]any{"ui:widget": "text"}},
		},
	}
	decorator := model.DecoratorFunc(func(f *model.Form) error {
		f.UI["ui:title"] = "Changed"
		f.Fields[0].UI["ui:widget"] = "select"
		f.Fields[0].Widget = "select"
		return nil
	})

	got, err := Prepare(form, nil, decorator)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if got.Fields[0].Widget != "select" || got.UI["ui:title"] != "Changed" {
		t.Fatalf("decorator not applied: %+v", got)
	}
	if form.UI["ui:title"] != "Original" || form.Fields[0].UI["ui:widget"] != "text" || form.Fields[0].Widget != "" {
		t.Fatalf("input form mutated: %+v", form)
	}
}

func TestPrepareWrapsDecoratorErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Prepare(model.Form{ID: "f"}, model.DecoratorFunc(func(*model.Form) error { return boom }))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped decorator error, got %v", err)
	}
}

func TestWidgetPropsCascadesFormState(t *testing.T) {
	form := model.Form{
		ID:       "f",
		Disabled: true,
		Values:   map[string]any{"size": "m"},
		Errors:   map[string][]string{"size": {"form error"}},
	}
	field := model.Field{
		Name:        "size",
		Schema:      model.Schema{Type: model.FieldTypeArray, Items: &model.Schema{Enum: []any{"s", "m"}}, Default: []any{"s"}},
		UI:          map[string]any{"ui:title": "Size"},
		Required:    true,
		Placeholder: "Pick",
	}
	opts := RenderOptions{Errors: map[string][]string{"size": {"request error"}}}

	props, err := WidgetProps(form, field, opts, map[string]any{"emptyValue": "none"})
	if err != nil {
		t.Fatalf("props: %v", err)
	}
	want := model.WidgetProps{
		ID:     "root_size",
		Label:  "Size",
		Schema: field.Schema,
		Options: model.UIOptions{
			Title:       "Size",
			EmptyValue:  "none",
			EnumOptions: []option.Option{{Label: "s", Value: "s"}, {Label: "m", Value: "m"}},
		},
		Value:       "m",
		Required:    true,
		Disabled:    true,
		Multiple:    true,
		Placeholder: "Pick",
		RawErrors:   []string{"form error", "request error"},
	}
	if diff := cmp.Diff(want, props); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}

	form.Values = nil
	props, err = WidgetProps(form, field, RenderOptions{}, nil)
	if err != nil {
		t.Fatalf("props: %v", err)
	}
	if diff := cmp.Diff([]any{"s"}, props.Value); diff != "" {
		t.Fatalf("expected schema default (-want +got):\n%s", diff)
	}
}

func TestFieldIDAndDefaults(t *testing.T) {
	if FieldID(" city ") != "root_city" || FieldID("") != "root" {
		t.Fatalf("unexpected field ids %q %q", FieldID(" city "), FieldID(""))
	}
	got := Defaults(map[string]any{"a": 1, "b": 1}, nil, map[string]any{"b": 2})
	if diff := cmp.Diff(map[string]any{"a": 1, "b": 2}, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}
