package formwidgets

import (
	"context"

	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/orchestrator"
	"github.com/goliatone/go-formwidgets/pkg/render"
	rendertemplate "github.com/goliatone/go-formwidgets/pkg/render/template"
)

// Form is the schema-plus-fields unit every renderer consumes.
type Form = model.Form

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML renders form with the named renderer ("vanilla" when empty).
// It is the simplest entry point for callers that just want HTML output.
func GenerateHTML(ctx context.Context, form Form, rendererName string, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Form:          &form,
		Renderer:      rendererName,
		RenderOptions: opts,
	})
}

// GenerateHTMLFromOpenAPI builds the form for an OpenAPI component schema and
// renders it.
func GenerateHTMLFromOpenAPI(ctx context.Context, document []byte, component, rendererName string, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Document:      document,
		Component:     component,
		Renderer:      rendererName,
		RenderOptions: opts,
	})
}

// WithThemeSelector resolves go-theme selections ahead of rendering.
func WithThemeSelector(selector rendertemplate.Selector, defaultTheme, defaultVariant string) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector, defaultTheme, defaultVariant)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
