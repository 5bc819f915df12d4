package model

import "github.com/goliatone/go-formwidgets/pkg/option"

// UIOptions is the resolved options bag handed to every widget. It is built
// by a pure resolution step (see uischema.ResolveOptions); widgets never read
// global configuration themselves.
type UIOptions struct {
	Widget string `mapstructure:"widget"`

	EnumOptions  []option.Option `mapstructure:"enumOptions"`
	EnumDisabled []any           `mapstructure:"enumDisabled"`
	EmptyValue   any             `mapstructure:"emptyValue"`

	// AutocompleteType selects the external suggestion source and enables
	// free-text input on the autocomplete widget.
	AutocompleteType string `mapstructure:"autocompleteType"`

	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`

	// CutIndex partitions object children into primary (< CutIndex) and
	// optional (>= CutIndex) groups. Nil disables the split.
	CutIndex             *int   `mapstructure:"optionalIndex"`
	OptionalTitle        string `mapstructure:"optionalTitle"`
	WrapperClass         string `mapstructure:"wrapperClass"`
	ElementClass         string `mapstructure:"elementClass"`
	OptionalWrapperClass string `mapstructure:"optionalWrapperClass"`
	OptionalElementClass string `mapstructure:"optionalElementClass"`
	Expandable           *bool  `mapstructure:"expandable"`
}

// HasEnumOptions reports whether a static option list was configured.
func (o UIOptions) HasEnumOptions() bool {
	return o.EnumOptions != nil
}

// IntPtr is a small helper for literal CutIndex values.
func IntPtr(v int) *int {
	return &v
}

// BoolPtr is a small helper for literal Expandable values.
func BoolPtr(v bool) *bool {
	return &v
}
