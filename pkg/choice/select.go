package choice

import (
	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

// Item is one rendered entry of a choice control. Index is the control value
// submitted by the UI; the placeholder entry carries option.PlaceholderToken.
type Item struct {
	Index       string `json:"index"`
	Label       string `json:"label"`
	Disabled    bool   `json:"disabled,omitempty"`
	Selected    bool   `json:"selected,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// SelectView is the render-ready description of a select control.
type SelectView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Multiple    bool   `json:"multiple,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
	Autofocus   bool   `json:"autofocus,omitempty"`
	Invalid     bool   `json:"invalid,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Empty       bool   `json:"empty,omitempty"`
	// Selection is the control value: "" or []string{} when empty, otherwise
	// the index (or indices) of the current value.
	Selection any    `json:"selection"`
	Items     []Item `json:"items"`
}

// Select resolves a fixed option list against index-addressed control output.
type Select struct {
	props    model.WidgetProps
	handlers model.Handlers
}

// NewSelect binds props and handlers into a select resolver.
func NewSelect(props model.WidgetProps, handlers model.Handlers) *Select {
	return &Select{props: props, handlers: handlers}
}

// Props returns the props the resolver was built with.
func (s *Select) Props() model.WidgetProps {
	return s.props
}

// Options returns the selectable option list.
func (s *Select) Options() []option.Option {
	return s.props.Options.EnumOptions
}

// EmptyRepresentation is what the control displays with nothing selected.
func (s *Select) EmptyRepresentation() any {
	if s.props.Multiple {
		return []string{}
	}
	return ""
}

// IsEmpty reports whether the current value counts as no selection. Empty
// values are never sent through the index lookup.
func (s *Select) IsEmpty() bool {
	return isEmptyValue(s.props.Value, s.props.Multiple)
}

// Selection returns the control value for the current domain value.
func (s *Select) Selection() any {
	if s.IsEmpty() {
		return s.EmptyRepresentation()
	}
	if s.props.Multiple {
		indices := option.IndicesForValues(option.AsSlice(s.props.Value), s.Options())
		out := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx == option.NoIndex {
				continue
			}
			out = append(out, option.FormatIndex(idx))
		}
		return out
	}
	idx := option.IndexForValue(s.props.Value, s.Options())
	return option.FormatIndex(idx)
}

// Change converts raw control output and forwards it to OnChange.
func (s *Select) Change(raw any) any {
	value := s.resolve(raw)
	s.handlers.Change(value)
	return value
}

// Blur converts raw control output and forwards it to OnBlur.
func (s *Select) Blur(raw any) any {
	value := s.resolve(raw)
	s.handlers.Blur(s.props.ID, value)
	return value
}

// Focus converts raw control output and forwards it to OnFocus.
func (s *Select) Focus(raw any) any {
	value := s.resolve(raw)
	s.handlers.Focus(s.props.ID, value)
	return value
}

func (s *Select) resolve(raw any) any {
	return option.Resolve(raw, s.Options(), s.props.Options.EmptyValue)
}

// View builds the render-ready description of the control.
func (s *Select) View() SelectView {
	selection := s.Selection()
	view := SelectView{
		ID:          s.props.ID,
		Name:        s.props.ID,
		Label:       s.props.DisplayLabel(),
		Multiple:    s.props.Multiple,
		Required:    s.props.Required,
		Disabled:    !s.props.Interactive(),
		Autofocus:   s.props.Autofocus,
		Invalid:     len(s.props.RawErrors) > 0,
		Placeholder: s.props.Placeholder,
		Empty:       s.IsEmpty(),
		Selection:   selection,
	}

	selected := selectedSet(selection)
	if s.props.Placeholder != "" {
		view.Items = append(view.Items, Item{
			Index:       option.PlaceholderToken,
			Label:       s.props.Placeholder,
			Selected:    view.Empty && !s.props.Multiple,
			Placeholder: true,
		})
	}
	for idx, opt := range s.Options() {
		key := option.FormatIndex(idx)
		_, isSelected := selected[key]
		view.Items = append(view.Items, Item{
			Index:    key,
			Label:    optionLabel(opt),
			Disabled: option.IsDisabled(opt.Value, s.props.Options.EnumDisabled),
			Selected: isSelected,
		})
	}
	return view
}

func optionLabel(opt option.Option) string {
	if opt.Label != "" {
		return opt.Label
	}
	return option.ValueString(opt.Value)
}

func selectedSet(selection any) map[string]struct{} {
	out := make(map[string]struct{})
	switch typed := selection.(type) {
	case string:
		if typed != "" {
			out[typed] = struct{}{}
		}
	case []string:
		for _, entry := range typed {
			out[entry] = struct{}{}
		}
	}
	return out
}

func isEmptyValue(value any, multiple bool) bool {
	if value == nil {
		return true
	}
	if multiple {
		return len(option.AsSlice(value)) == 0
	}
	if str, ok := value.(string); ok {
		return str == ""
	}
	return false
}
