// Package option implements the option model shared by the enumerated-choice
// widgets: the canonical {label, value} representation, equality, and the
// translation between UI-facing indices and schema-typed values.
package option

import (
	"fmt"
	"strings"
)

// Option is a selectable entry offered by a choice widget. The position of an
// option inside its list is the UI handle; Value is the domain handle.
type Option struct {
	Label string `json:"label" yaml:"label" mapstructure:"label"`
	Value any    `json:"value" yaml:"value" mapstructure:"value"`
}

// Normalize folds every accepted option representation into an Option. Bare
// values become Option{Value: raw}; Option, *Option and maps carrying a
// "value" key are treated as labeled values. Every equality, lookup and
// display call site goes through here.
func Normalize(raw any) Option {
	switch typed := raw.(type) {
	case Option:
		return typed
	case *Option:
		if typed == nil {
			return Option{}
		}
		return *typed
	case map[string]any:
		value, ok := typed["value"]
		if !ok {
			return Option{Value: raw}
		}
		label, _ := typed["label"].(string)
		return Option{Label: label, Value: value}
	case map[string]string:
		value, ok := typed["value"]
		if !ok {
			return Option{Value: raw}
		}
		return Option{Label: typed["label"], Value: value}
	default:
		return Option{Value: raw}
	}
}

// IsLabeled reports whether raw is a labeled value rather than a bare one.
func IsLabeled(raw any) bool {
	switch typed := raw.(type) {
	case Option, *Option:
		return true
	case map[string]any:
		_, ok := typed["value"]
		return ok
	case map[string]string:
		_, ok := typed["value"]
		return ok
	default:
		return false
	}
}

// FromValues builds options from bare enum values, pairing each with the
// matching entry in names when present. Unnamed values are labelled with
// their own text.
func FromValues(values []any, names []string) []Option {
	if len(values) == 0 {
		return nil
	}
	out := make([]Option, 0, len(values))
	for idx, value := range values {
		label := ""
		if idx < len(names) {
			label = strings.TrimSpace(names[idx])
		}
		if label == "" {
			label = ValueString(value)
		}
		out = append(out, Option{Label: label, Value: value})
	}
	return out
}

// ValueString renders a value for display and for use as a free-text key.
func ValueString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

// DisplayLabel is the text shown for an option in suggestion lists: the value
// followed by the label in parentheses when the label adds information.
func DisplayLabel(raw any) string {
	opt := Normalize(raw)
	value := strings.TrimSpace(ValueString(opt.Value))
	label := strings.TrimSpace(opt.Label)
	switch {
	case label == "" || label == value:
		return value
	case value == "":
		return label
	default:
		return value + " (" + label + ")"
	}
}

// Labels returns the display labels of options in order.
func Labels(options []Option) []string {
	out := make([]string, len(options))
	for idx, opt := range options {
		out[idx] = opt.Label
		if strings.TrimSpace(out[idx]) == "" {
			out[idx] = ValueString(opt.Value)
		}
	}
	return out
}

// IsDisabled reports whether value appears in the disabled set.
func IsDisabled(value any, disabled []any) bool {
	for _, candidate := range disabled {
		if Equal(candidate, value) {
			return true
		}
	}
	return false
}
