package template

import (
	"errors"
	"fmt"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formwidgets/pkg/layout"
)

// Theme partial keys that override the host template paths.
const (
	PartialTitle       = "forms.title_field"
	PartialDescription = "forms.description_field"
	PartialAddButton   = "forms.add_button"
)

// DefaultPaths maps host template names to engine template paths.
func DefaultPaths() map[string]string {
	return map[string]string{
		layout.TemplateTitle:       "templates/title_field",
		layout.TemplateDescription: "templates/description_field",
		layout.TemplateAddButton:   "templates/add_button",
	}
}

var partialKeys = map[string]string{
	layout.TemplateTitle:       PartialTitle,
	layout.TemplateDescription: PartialDescription,
	layout.TemplateAddButton:   PartialAddButton,
}

// Provider serves layout host templates from a TemplateRenderer.
type Provider struct {
	engine TemplateRenderer
	paths  map[string]string
}

var _ layout.TemplateProvider = (*Provider)(nil)

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithTemplate points a host template name at a different engine path.
func WithTemplate(name, templatePath string) ProviderOption {
	return func(p *Provider) {
		name = strings.TrimSpace(name)
		templatePath = strings.TrimSpace(templatePath)
		if name != "" && templatePath != "" {
			p.paths[name] = templatePath
		}
	}
}

// WithTheme applies partial overrides from a resolved theme.
func WithTheme(cfg *theme.RendererConfig) ProviderOption {
	return func(p *Provider) {
		if cfg == nil {
			return
		}
		for name, key := range partialKeys {
			if override := strings.TrimSpace(cfg.Partials[key]); override != "" {
				p.paths[name] = override
			}
		}
	}
}

// NewProvider constructs a Provider backed by engine.
func NewProvider(engine TemplateRenderer, opts ...ProviderOption) (*Provider, error) {
	if engine == nil {
		return nil, errors.New("template: provider requires an engine")
	}
	p := &Provider{engine: engine, paths: DefaultPaths()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Path reports the engine path used for a host template name.
func (p *Provider) Path(name string) string {
	return p.paths[name]
}

// Resolve implements layout.TemplateProvider.
func (p *Provider) Resolve(name string, ctx layout.TemplateContext) (string, error) {
	templatePath, ok := p.paths[name]
	if !ok {
		return "", fmt.Errorf("template: no template registered for %q", name)
	}
	out, err := p.engine.RenderTemplate(templatePath, ctx)
	if err != nil {
		return "", fmt.Errorf("template: resolve %s: %w", name, err)
	}
	return out, nil
}

// Selector is the go-theme selection contract.
type Selector interface {
	Select(name, variant string, opts ...theme.QueryOption) (*theme.Selection, error)
}

var _ Selector = theme.ThemeSelector(nil)

// ResolveTheme selects a theme and converts it to renderer configuration.
func ResolveTheme(selector Selector, name, variant string, fallbacks map[string]string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, errors.New("template: theme selector is nil")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("template: select theme %q: %w", name, err)
	}
	return RendererConfigFromSelection(selection, fallbacks), nil
}

// RendererConfigFromSelection flattens a theme selection: variant tokens,
// templates and assets overlay the manifest's, and fallbacks fill partials
// the theme leaves unset. Every token is also exposed as a --token CSS
// variable.
func RendererConfigFromSelection(sel *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Partials: make(map[string]string, len(fallbacks)),
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}
	for key, value := range fallbacks {
		cfg.Partials[key] = value
	}
	if sel == nil {
		return cfg
	}
	cfg.Theme = sel.Theme
	cfg.Variant = sel.Variant

	prefix := ""
	files := map[string]string{}
	if m := sel.Manifest; m != nil {
		if cfg.Theme == "" {
			cfg.Theme = m.Name
		}
		overlay(cfg.Tokens, m.Tokens)
		overlay(cfg.Partials, m.Templates)
		overlay(files, m.Assets.Files)
		prefix = m.Assets.Prefix
		if v, ok := m.Variants[sel.Variant]; ok {
			overlay(cfg.Tokens, v.Tokens)
			overlay(cfg.Partials, v.Templates)
			overlay(files, v.Assets.Files)
			if v.Assets.Prefix != "" {
				prefix = v.Assets.Prefix
			}
		}
	}
	for token, value := range cfg.Tokens {
		cfg.CSSVars["--"+token] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" || strings.Contains(file, "://") {
			return file
		}
		return path.Join(prefix, file)
	}
	return cfg
}

func overlay(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
