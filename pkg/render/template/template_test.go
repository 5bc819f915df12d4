package template_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formwidgets/pkg/layout"
	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/render/template"
	"github.com/goliatone/go-formwidgets/pkg/render/template/gotemplate"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"hello.tpl":                       {Data: []byte(`Hello {{ name }}`)},
		"use-global.tpl":                  {Data: []byte(`env={{ settings.env }}`)},
		"use-filter.tpl":                  {Data: []byte(`{{ name|shout }}`)},
		"templates/title_field.tpl":       {Data: []byte(`<h5 id="{{ id }}">{{ title }}{% if required %}*{% endif %}</h5>`)},
		"templates/description_field.tpl": {Data: []byte(`<p id="{{ id }}">{{ description }}</p>`)},
		"templates/add_button.tpl":        {Data: []byte(`<button class="{{ className|classlist }}"{% if disabled %} disabled{% endif %}>+</button>`)},
		"themes/acme/title.tpl":           {Data: []byte(`<h1>{{ title|trim }}</h1>`)},
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()
	engine, err := gotemplate.New(gotemplate.WithFS(testFS()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplateWritesOutput(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada" || buf.String() != got {
		t.Fatalf("unexpected output %q / %q", got, buf.String())
	}

	inline, err := engine.Render("{{ name }}!", map[string]any{"name": "Bo"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if inline != "Bo!" {
		t.Fatalf("unexpected inline output %q", inline)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}
	got, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	got, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("unexpected output %q", got)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}
}

func TestEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}

func TestProvider_ResolvesHostTemplates(t *testing.T) {
	provider, err := template.NewProvider(newEngine(t))
	if err != nil {
		t.Fatalf("provider: %v", err)
	}

	ctx := layout.TemplateContext{ID: "root-title", Title: "Shipping", Required: true, Schema: model.Schema{}}
	got, err := provider.Resolve(layout.TemplateTitle, ctx)
	if err != nil {
		t.Fatalf("resolve title: %v", err)
	}
	if got != `<h5 id="root-title">Shipping*</h5>` {
		t.Fatalf("unexpected title markup %q", got)
	}

	button, err := provider.Resolve(layout.TemplateAddButton, layout.TemplateContext{
		ClassName: "object-property-expand fw-hijack",
		Disabled:  true,
	})
	if err != nil {
		t.Fatalf("resolve add button: %v", err)
	}
	if button != `<button class="object-property-expand" disabled>+</button>` {
		t.Fatalf("unexpected button markup %q", button)
	}

	if _, err := provider.Resolve("Unknown", layout.TemplateContext{}); err == nil {
		t.Fatalf("expected unknown template error")
	}
}

func TestProvider_EscapesContext(t *testing.T) {
	provider, err := template.NewProvider(newEngine(t))
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	got, err := provider.Resolve(layout.TemplateDescription, layout.TemplateContext{
		ID:          "d",
		Description: `<script>x</script>`,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Fatalf("description was not escaped: %q", got)
	}
}

func TestProvider_ThemePartialsOverridePaths(t *testing.T) {
	cfg := &theme.RendererConfig{Partials: map[string]string{
		template.PartialTitle: "themes/acme/title",
	}}
	provider, err := template.NewProvider(newEngine(t), template.WithTheme(cfg))
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	got, err := provider.Resolve(layout.TemplateTitle, layout.TemplateContext{Title: " Acme "})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "<h1>Acme</h1>" {
		t.Fatalf("unexpected themed markup %q", got)
	}
	if provider.Path(layout.TemplateDescription) != "templates/description_field" {
		t.Fatalf("unexpected default path %q", provider.Path(layout.TemplateDescription))
	}
}

type stubSelector struct {
	selection *theme.Selection
	err       error
	calls     []string
}

func (s *stubSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, name+"/"+variant)
	return s.selection, s.err
}

func TestRendererConfigFromSelection_MergesVariant(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456", "radius": "4px"},
		Templates: map[string]string{
			template.PartialTitle: "themes/acme/title",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
				Assets: theme.Assets{Files: map[string]string{"script": "dark.js"}},
			},
		},
	}
	selector := &stubSelector{selection: &theme.Selection{Theme: "acme", Variant: "dark", Manifest: manifest}}

	cfg, err := template.ResolveTheme(selector, "acme", "dark", map[string]string{
		template.PartialAddButton: "fallback/add",
	})
	if err != nil {
		t.Fatalf("resolve theme: %v", err)
	}
	if len(selector.calls) != 1 || selector.calls[0] != "acme/dark" {
		t.Fatalf("unexpected selector calls %v", selector.calls)
	}
	if cfg.Tokens["brand"] != "#654321" || cfg.Tokens["radius"] != "4px" {
		t.Fatalf("variant tokens not merged: %v", cfg.Tokens)
	}
	if cfg.CSSVars["--brand"] != "#654321" {
		t.Fatalf("css vars not derived: %v", cfg.CSSVars)
	}
	if cfg.Partials[template.PartialTitle] != "themes/acme/title" || cfg.Partials[template.PartialAddButton] != "fallback/add" {
		t.Fatalf("partials not merged: %v", cfg.Partials)
	}
	if got := cfg.AssetURL("stylesheet"); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("unexpected stylesheet url %q", got)
	}
	if got := cfg.AssetURL("script"); got != "/assets/themes/acme/dark.js" {
		t.Fatalf("unexpected script url %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %q", got)
	}
}

func TestResolveTheme_PropagatesSelectorErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := template.ResolveTheme(&stubSelector{err: boom}, "x", "", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped selector error, got %v", err)
	}
	if _, err := template.ResolveTheme(nil, "x", "", nil); err == nil {
		t.Fatalf("expected nil selector error")
	}
}
