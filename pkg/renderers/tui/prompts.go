package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
	"github.com/goliatone/go-formwidgets/pkg/schema"
)

var errRetry = errors.New("tui: retry")

// attempt re-runs fn while it returns errRetry, up to the configured bound.
func (r *Renderer) attempt(name string, fn func() error) error {
	for i := 0; i < r.maxAttempts; i++ {
		err := fn()
		if !errors.Is(err, errRetry) {
			return err
		}
	}
	return fmt.Errorf("%w: field %q", ErrTooManyAttempts, name)
}

func (r *Renderer) setter(s *session, name string) model.Handlers {
	return model.Handlers{
		OnChange: func(value any) {
			s.state.Values()[name] = value
		},
	}
}

func (r *Renderer) promptSelect(ctx context.Context, s *session, field model.Field, props model.WidgetProps) error {
	sel := choice.NewSelect(props, r.setter(s, field.Name))
	view := sel.View()
	if len(view.Items) == 0 {
		return r.errorf(ctx, "%s: no options available", props.DisplayLabel())
	}
	if props.Multiple {
		return r.promptMultiSelect(ctx, field, props, sel, view)
	}

	labels := make([]string, len(view.Items))
	defaultIdx := 0
	for idx, item := range view.Items {
		labels[idx] = item.Label
		if item.Selected {
			defaultIdx = idx
		}
	}
	return r.attempt(field.Name, func() error {
		picked, err := r.driver.Select(ctx, SelectConfig{
			Message:      props.DisplayLabel(),
			Options:      labels,
			DefaultIndex: defaultIdx,
			Help:         props.Schema.Description,
		})
		if err != nil {
			return err
		}
		if picked < 0 || picked >= len(view.Items) {
			return errRetry
		}
		item := view.Items[picked]
		if item.Disabled {
			if err := r.errorf(ctx, "%s is not available", item.Label); err != nil {
				return err
			}
			return errRetry
		}
		if item.Placeholder && props.Required {
			if err := r.errorf(ctx, "%s is required", props.DisplayLabel()); err != nil {
				return err
			}
			return errRetry
		}
		sel.Change(item.Index)
		return nil
	})
}

func (r *Renderer) promptMultiSelect(ctx context.Context, field model.Field, props model.WidgetProps, sel *choice.Select, view choice.SelectView) error {
	items := make([]choice.Item, 0, len(view.Items))
	for _, item := range view.Items {
		if !item.Placeholder {
			items = append(items, item)
		}
	}
	labels := make([]string, len(items))
	var defaults []int
	for idx, item := range items {
		labels[idx] = item.Label
		if item.Selected {
			defaults = append(defaults, idx)
		}
	}
	return r.attempt(field.Name, func() error {
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  props.DisplayLabel(),
			Options:  labels,
			Defaults: defaults,
			Help:     props.Schema.Description,
		})
		if err != nil {
			return err
		}
		raw := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx < 0 || idx >= len(items) {
				continue
			}
			if items[idx].Disabled {
				if err := r.errorf(ctx, "%s is not available", items[idx].Label); err != nil {
					return err
				}
				return errRetry
			}
			raw = append(raw, items[idx].Index)
		}
		if len(raw) == 0 && props.Required {
			if err := r.errorf(ctx, "%s is required", props.DisplayLabel()); err != nil {
				return err
			}
			return errRetry
		}
		sel.Change(raw)
		return nil
	})
}

func (r *Renderer) promptAutocomplete(ctx context.Context, s *session, field model.Field, props model.WidgetProps) error {
	var collected []any
	handlers := r.setter(s, field.Name)
	if props.Multiple {
		handlers = model.Handlers{
			OnChange: func(value any) {
				if value != nil && value != "" {
					collected = append(collected, value)
				}
			},
		}
	}
	ac := choice.NewAutocomplete(props, handlers,
		choice.WithFetcher(r.fetcher),
		choice.WithObserver(r.observer),
		choice.WithLogger(r.logger),
		choice.WithContext(ctx),
	)
	defer ac.Close()

	if props.Multiple {
		for {
			message := props.DisplayLabel()
			if len(collected) > 0 {
				message += " (leave empty to finish)"
			}
			done := false
			err := r.attempt(field.Name, func() error {
				answer, err := r.driver.Input(ctx, InputConfig{
					Message: message,
					Help:    props.Schema.Description,
					Suggest: r.suggester(ac),
				})
				if err != nil {
					return err
				}
				if strings.TrimSpace(answer) == "" {
					if len(collected) == 0 && props.Required {
						if err := r.errorf(ctx, "%s is required", props.DisplayLabel()); err != nil {
							return err
						}
						return errRetry
					}
					done = true
					return nil
				}
				return r.commitAutocomplete(ctx, ac, props, answer)
			})
			if err != nil {
				return err
			}
			if done {
				break
			}
			ac.Reset()
		}
		s.state.Values()[field.Name] = collected
		return nil
	}

	if r.fetcher != nil && !isEmpty(props.Value) {
		if err := ac.Input(option.ValueString(option.Normalize(props.Value).Value)); err == nil {
			ac.Wait()
		}
	}
	defaultText := ac.View().Value
	return r.attempt(field.Name, func() error {
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: props.DisplayLabel(),
			Default: defaultText,
			Help:    props.Schema.Description,
			Suggest: r.suggester(ac),
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) == "" {
			if props.Required {
				if err := r.errorf(ctx, "%s is required", props.DisplayLabel()); err != nil {
					return err
				}
				return errRetry
			}
			ac.Select(nil)
			return nil
		}
		return r.commitAutocomplete(ctx, ac, props, answer)
	})
}

// suggester feeds survey completions from the autocomplete resolver. Static
// option lists are filtered locally; fetched suggestions are shown as
// returned.
func (r *Renderer) suggester(ac *choice.Autocomplete) func(string) []string {
	return func(toComplete string) []string {
		if err := ac.Input(toComplete); err != nil {
			return nil
		}
		ac.Wait()
		needle := strings.ToLower(strings.TrimSpace(toComplete))
		var out []string
		for _, item := range ac.View().Items {
			if item.Disabled {
				continue
			}
			if ac.Props().Options.HasEnumOptions() && needle != "" &&
				!strings.Contains(strings.ToLower(item.Label), needle) {
				continue
			}
			out = append(out, item.Label)
		}
		return out
	}
}

// commitAutocomplete matches answer against the offered suggestions first,
// then against a fresh lookup for the answer itself, and finally commits it
// as free text when the field allows that.
func (r *Renderer) commitAutocomplete(ctx context.Context, ac *choice.Autocomplete, props model.WidgetProps, answer string) error {
	answer = strings.TrimSpace(answer)
	idx, disabled := ac.Match(answer)
	if idx == option.NoIndex {
		if err := ac.Input(answer); err != nil {
			return err
		}
		ac.Wait()
		idx, disabled = ac.Match(answer)
	}
	switch {
	case disabled:
		if err := r.errorf(ctx, "%s is not available", answer); err != nil {
			return err
		}
		return errRetry
	case idx != option.NoIndex:
		ac.Select(idx)
		return nil
	case ac.FreeInput():
		ac.Blur(answer)
		return nil
	default:
		if err := r.errorf(ctx, "%q is not one of the offered options for %s", answer, props.DisplayLabel()); err != nil {
			return err
		}
		return errRetry
	}
}

func (r *Renderer) promptText(ctx context.Context, s *session, field model.Field, props model.WidgetProps) error {
	setValue := r.setter(s, field.Name).OnChange
	if props.Schema.Type == model.FieldTypeBoolean {
		current, _ := props.Value.(bool)
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: props.DisplayLabel(),
			Default: current,
			Help:    props.Schema.Description,
		})
		if err != nil {
			return err
		}
		setValue(answer)
		return nil
	}

	itemType := props.Schema.Type
	if props.Multiple && props.Schema.Items != nil {
		itemType = props.Schema.Items.Type
	}
	defaultText := option.ValueString(props.Value)
	if props.Multiple {
		parts := make([]string, 0)
		for _, entry := range option.AsSlice(props.Value) {
			parts = append(parts, option.ValueString(entry))
		}
		defaultText = strings.Join(parts, ", ")
	}
	parse := func(text string) (any, error) {
		text = strings.TrimSpace(text)
		if !props.Multiple {
			return coerce(text, itemType)
		}
		out := make([]any, 0)
		for _, part := range strings.Split(text, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			value, err := coerce(strings.TrimSpace(part), itemType)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	}

	message := props.DisplayLabel()
	if props.Multiple {
		message += " (comma separated)"
	}
	answer, err := r.driver.Input(ctx, InputConfig{
		Message: message,
		Default: defaultText,
		Help:    props.Schema.Description,
		Validator: func(text string) error {
			if strings.TrimSpace(text) == "" {
				if props.Required {
					return errors.New("a value is required")
				}
				return nil
			}
			_, err := parse(text)
			return err
		},
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		delete(s.state.Values(), field.Name)
		return nil
	}
	value, err := parse(answer)
	if err != nil {
		return err
	}
	setValue(value)
	return nil
}

func (r *Renderer) promptObject(ctx context.Context, s *session, field model.Field, props model.WidgetProps) error {
	if current, ok := s.state.Values()[field.Name]; !ok || current == nil {
		s.state.Values()[field.Name] = map[string]any{}
	}
	return r.promptProperties(ctx, s, field.Name, props.DisplayLabel(), field.Schema, props.Options)
}

// promptProperties keeps offering to add a property while the object at
// path may still grow. An empty path addresses the form root.
func (r *Renderer) promptProperties(ctx context.Context, s *session, path, label string, objectSchema model.Schema, opts model.UIOptions) error {
	current := func() map[string]any {
		if path == "" {
			return s.state.Values()
		}
		value, _ := s.state.GetValue(path)
		out, _ := value.(map[string]any)
		return out
	}
	for schema.CanExpand(objectSchema, opts, current()) {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add a property to %s?", label),
		})
		if err != nil {
			return err
		}
		if !add {
			return nil
		}
		key, err := r.driver.Input(ctx, InputConfig{
			Message: "Property name",
			Validator: func(text string) error {
				text = strings.TrimSpace(text)
				switch {
				case text == "":
					return errors.New("a property name is required")
				case strings.Contains(text, "."):
					return errors.New("property names cannot contain dots")
				}
				if _, exists := current()[text]; exists {
					return fmt.Errorf("property %q already exists", text)
				}
				return nil
			},
		})
		if err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		value, err := r.driver.Input(ctx, InputConfig{Message: fmt.Sprintf("Value for %s", key)})
		if err != nil {
			return err
		}
		target := key
		if path != "" {
			target = path + "." + key
		}
		if err := s.state.SetValue(target, value); err != nil {
			return err
		}
	}
	return nil
}

func coerce(text string, fieldType model.FieldType) (any, error) {
	switch fieldType {
	case model.FieldTypeInteger:
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", text)
		}
		return n, nil
	case model.FieldTypeNumber:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", text)
		}
		return n, nil
	case model.FieldTypeBoolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("%q is not true or false", text)
		}
		return b, nil
	default:
		return text, nil
	}
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if str, ok := value.(string); ok {
		return str == ""
	}
	return false
}
