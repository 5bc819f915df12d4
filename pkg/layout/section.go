package layout

import (
	"html"
	"strings"

	"github.com/google/uuid"
)

// Section is an expand/collapse container. It carries no data contract
// beyond passing its children through.
type Section struct {
	ID              string
	Title           string
	OpenTitle       string
	DefaultExpanded bool
	Children        string
	Class           string

	expanded    bool
	initialized bool
}

// NewSection builds a section in its initial state.
func NewSection(title, openTitle string, defaultExpanded bool, children string) *Section {
	s := &Section{
		Title:           title,
		OpenTitle:       openTitle,
		DefaultExpanded: defaultExpanded,
		Children:        children,
	}
	s.init()
	return s
}

func (s *Section) init() {
	if s.initialized {
		return
	}
	s.expanded = s.DefaultExpanded
	s.initialized = true
}

// Expanded reports whether the section is open.
func (s *Section) Expanded() bool {
	s.init()
	return s.expanded
}

// Toggle flips the section and returns the new state.
func (s *Section) Toggle() bool {
	s.init()
	s.expanded = !s.expanded
	return s.expanded
}

// Expand opens the section.
func (s *Section) Expand() {
	s.init()
	s.expanded = true
}

// Collapse closes the section.
func (s *Section) Collapse() {
	s.init()
	s.expanded = false
}

// Header is the title shown for the current state.
func (s *Section) Header() string {
	if s.Expanded() {
		return s.expandedTitle()
	}
	return s.Title
}

func (s *Section) expandedTitle() string {
	if s.OpenTitle != "" {
		return s.OpenTitle
	}
	return s.Title
}

// Render writes the section as a details element. Both titles are emitted so
// the browser can swap them without a round trip; the one matching the
// current state is visible.
func (s *Section) Render() string {
	id := strings.TrimSpace(s.ID)
	if id == "" {
		id = "fw-section-" + uuid.NewString()
	}
	expanded := s.Expanded()

	var builder strings.Builder
	builder.WriteString(`<details id="`)
	builder.WriteString(html.EscapeString(id))
	builder.WriteString(`" class="`)
	builder.WriteString(html.EscapeString(joinClasses("fw-section", sanitizeClassList(s.Class))))
	builder.WriteString(`" data-section-expanded="`)
	if expanded {
		builder.WriteString(`true"`)
		builder.WriteString(` open`)
	} else {
		builder.WriteString(`false"`)
	}
	builder.WriteString(`>`)

	builder.WriteString(`<summary class="fw-section-summary">`)
	builder.WriteString(`<span class="fw-section-title-open"`)
	if !expanded {
		builder.WriteString(` hidden`)
	}
	builder.WriteString(`>`)
	builder.WriteString(html.EscapeString(s.expandedTitle()))
	builder.WriteString(`</span>`)
	builder.WriteString(`<span class="fw-section-title-closed"`)
	if expanded {
		builder.WriteString(` hidden`)
	}
	builder.WriteString(`>`)
	builder.WriteString(html.EscapeString(s.Title))
	builder.WriteString(`</span>`)
	builder.WriteString(`</summary>`)

	builder.WriteString(`<div class="fw-section-body">`)
	builder.WriteString(s.Children)
	builder.WriteString(`</div>`)
	builder.WriteString(`</details>`)
	return builder.String()
}
