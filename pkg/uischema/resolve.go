package uischema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

const (
	uiPrefix     = "ui:"
	uiOptionsKey = "ui:options"
)

var optionType = reflect.TypeOf(option.Option{})

// ResolveOptions merges defaults, the "ui:options" map and top-level "ui:*"
// keys, later sources winning, and decodes the result into a UIOptions.
// Keys without the ui: prefix address child fields and are ignored.
func ResolveOptions(uiSchema map[string]any, defaults map[string]any) (model.UIOptions, error) {
	merged := make(map[string]any, len(defaults)+len(uiSchema))
	for key, value := range defaults {
		merged[strings.TrimPrefix(key, uiPrefix)] = value
	}
	if nested, ok := asMap(uiSchema[uiOptionsKey]); ok {
		for key, value := range nested {
			merged[key] = value
		}
	}
	for key, value := range uiSchema {
		if key == uiOptionsKey || !strings.HasPrefix(key, uiPrefix) {
			continue
		}
		merged[strings.TrimPrefix(key, uiPrefix)] = value
	}

	var opts model.UIOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       normalizeOptionHook,
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return model.UIOptions{}, fmt.Errorf("uischema: build decoder: %w", err)
	}
	if err := decoder.Decode(merged); err != nil {
		return model.UIOptions{}, fmt.Errorf("uischema: decode options: %w", err)
	}

	opts.Title = StripMarkup(opts.Title)
	opts.OptionalTitle = StripMarkup(opts.OptionalTitle)
	opts.Description = SanitizeMarkup(opts.Description)
	for idx := range opts.EnumOptions {
		opts.EnumOptions[idx].Label = StripMarkup(opts.EnumOptions[idx].Label)
	}
	return opts, nil
}

// ResolveField resolves the options of a form field. Fields without
// configured enumOptions fall back to the schema enum.
func ResolveField(field model.Field, defaults map[string]any) (model.UIOptions, error) {
	opts, err := ResolveOptions(field.UI, defaults)
	if err != nil {
		return model.UIOptions{}, fmt.Errorf("uischema: field %q: %w", field.Name, err)
	}
	if !opts.HasEnumOptions() {
		opts.EnumOptions = field.Schema.EnumOptions()
	}
	if opts.Widget == "" {
		opts.Widget = field.Widget
	}
	return opts, nil
}

// normalizeOptionHook feeds every enumOptions entry through option.Normalize
// so bare values and labeled maps decode alike.
func normalizeOptionHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != optionType {
		return data, nil
	}
	return option.Normalize(data), nil
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, v := range typed {
			out[fmt.Sprint(key)] = v
		}
		return out, true
	default:
		return nil, false
	}
}
