package components

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/model"
	rendertemplate "github.com/goliatone/go-formwidgets/pkg/render/template"
)

// Renderer writes the control markup for one widget into buf. The label,
// error list and wrapper are written by the caller.
type Renderer func(buf *bytes.Buffer, props model.WidgetProps, data ComponentData) error

// ComponentData carries the per-render collaborators a component may use.
type ComponentData struct {
	Context  context.Context
	Template rendertemplate.TemplateRenderer
	// ThemePartials override component template paths by partial key.
	ThemePartials map[string]string
	// Fetcher resolves autocomplete labels for prefilled values. Optional.
	Fetcher  choice.Fetcher
	Observer choice.Observer
	Logger   *slog.Logger
	// RenderObject composes a nested object with the host layout.
	RenderObject func(model.ObjectProps) (string, error)
	// FormData is the merged prefill of the enclosing form.
	FormData map[string]any
}

// Script is a <script> tag emitted once per form that uses the component.
// Either Src or Inline is set.
type Script struct {
	Src    string
	Inline string
	Defer  bool
	Module bool
}

func (s Script) key() string {
	if s.Src != "" {
		return "src:" + s.Src
	}
	return "inline:" + s.Inline
}

// Descriptor pairs a widget renderer with the assets its markup depends on.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

func (d Descriptor) clone() Descriptor {
	d.Stylesheets = slices.Clone(d.Stylesheets)
	d.Scripts = slices.Clone(d.Scripts)
	return d
}

// Registry maps widget names (case-insensitive) to descriptors.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

func New() *Registry {
	return &Registry{components: make(map[string]Descriptor)}
}

// Register binds name to descriptor, replacing any previous binding.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	name = normalize(name)
	if name == "" {
		return errors.New("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}

	descriptor = descriptor.clone()
	descriptor.Name = name
	r.mu.Lock()
	r.components[name] = descriptor
	r.mu.Unlock()
	return nil
}

func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor returns a copy, so callers may modify the asset slices freely.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	descriptor, ok := r.components[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return Descriptor{}, false
	}
	return descriptor.clone(), true
}

// Names lists the registered widgets in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.components))
}

// Assets collects the stylesheets and scripts of the named widgets, first
// occurrence wins. Unknown names are skipped.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []Script) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, name := range names {
		descriptor, ok := r.components[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if href != "" && !seen["css:"+href] {
				seen["css:"+href] = true
				stylesheets = append(stylesheets, href)
			}
		}
		for _, script := range descriptor.Scripts {
			if key := script.key(); !seen[key] {
				seen[key] = true
				scripts = append(scripts, script)
			}
		}
	}
	return stylesheets, scripts
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
