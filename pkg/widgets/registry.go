package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formwidgets/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetSelect       = "select"
	WidgetAutocomplete = "autocomplete"
	WidgetObject       = "object"
	WidgetText         = "text"
)

// Matcher decides whether a widget renderer should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widget renderers for fields based on explicit hints or
// registered matchers. Higher priority wins; ties fall back to registration
// order. An empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence. Callers should avoid duplicate names; the
// latest registration wins during resolution.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. Explicit hints (ui:widget,
// ui:options.widget or a previously assigned Field.Widget) are honoured
// before matcher evaluation.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := ExplicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate implements model.Decorator, assigning the resolved widget to every
// field that does not carry one yet.
func (r *Registry) Decorate(form *model.Form) error {
	if r == nil || form == nil {
		return nil
	}
	for idx := range form.Fields {
		if form.Fields[idx].Widget != "" {
			continue
		}
		if widget, ok := r.Resolve(form.Fields[idx]); ok {
			form.Fields[idx].Widget = widget
		}
	}
	return nil
}

var _ model.Decorator = (*Registry)(nil)

// ExplicitWidget returns the widget named by the field's ui schema, if any.
func ExplicitWidget(field model.Field) string {
	if widget := uiString(field.UI, "widget"); widget != "" {
		return widget
	}
	return strings.TrimSpace(field.Widget)
}

func uiString(ui map[string]any, key string) string {
	if ui == nil {
		return ""
	}
	if value, ok := ui["ui:"+key].(string); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	if nested, ok := ui["ui:options"].(map[string]any); ok {
		if value, ok := nested[key].(string); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func hasEnumOptions(field model.Field) bool {
	if len(field.Schema.EnumOptions()) > 0 {
		return true
	}
	if field.UI == nil {
		return false
	}
	if _, ok := field.UI["ui:enumOptions"]; ok {
		return true
	}
	if nested, ok := field.UI["ui:options"].(map[string]any); ok {
		_, ok := nested["enumOptions"]
		return ok
	}
	return false
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetAutocomplete, 90, func(field model.Field) bool {
		return uiString(field.UI, "autocompleteType") != ""
	})

	r.Register(WidgetSelect, 70, func(field model.Field) bool {
		if field.Schema.Type == model.FieldTypeObject {
			return false
		}
		return hasEnumOptions(field)
	})

	r.Register(WidgetObject, 60, func(field model.Field) bool {
		return field.Schema.Type == model.FieldTypeObject
	})

	r.Register(WidgetText, 0, func(model.Field) bool {
		return true
	})
}
