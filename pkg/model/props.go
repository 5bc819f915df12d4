package model

// WidgetProps carries everything a choice widget receives per render.
type WidgetProps struct {
	ID          string
	Label       string
	Schema      Schema
	Options     UIOptions
	Value       any
	Required    bool
	Disabled    bool
	Readonly    bool
	Multiple    bool
	Autofocus   bool
	Placeholder string
	// RawErrors is opaque; a non-empty slice only flips the error state.
	RawErrors []string
}

// DisplayLabel falls back to the schema title when the field has no label.
func (p WidgetProps) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Schema.Title
}

// Interactive reports whether the control accepts input.
func (p WidgetProps) Interactive() bool {
	return !p.Disabled && !p.Readonly
}

// Handlers is the callback surface a widget exposes upward. Every value is
// already translated into domain space. Nil callbacks are skipped.
type Handlers struct {
	OnChange func(value any)
	OnBlur   func(id string, value any)
	OnFocus  func(id string, value any)
}

// Change invokes OnChange when set.
func (h Handlers) Change(value any) {
	if h.OnChange != nil {
		h.OnChange(value)
	}
}

// Blur invokes OnBlur when set.
func (h Handlers) Blur(id string, value any) {
	if h.OnBlur != nil {
		h.OnBlur(id, value)
	}
}

// Focus invokes OnFocus when set.
func (h Handlers) Focus(id string, value any) {
	if h.OnFocus != nil {
		h.OnFocus(id, value)
	}
}

// ObjectProps is the input of the object layout.
type ObjectProps struct {
	ID          string
	Title       string
	Description string
	Schema      Schema
	UISchema    map[string]any
	Options     UIOptions
	Elements    []Element
	Required    bool
	Disabled    bool
	Readonly    bool
	// Expandable is decided by the host (see schema.CanExpand).
	Expandable bool
}
