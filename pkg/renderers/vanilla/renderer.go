package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/layout"
	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/render"
	rendertemplate "github.com/goliatone/go-formwidgets/pkg/render/template"
	"github.com/goliatone/go-formwidgets/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formwidgets/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formwidgets/pkg/schema"
	"github.com/goliatone/go-formwidgets/pkg/uischema"
	"github.com/goliatone/go-formwidgets/pkg/widgets"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	widgets          *widgets.Registry
	uiSchemas        *uischema.Store
	fetcher          choice.Fetcher
	observer         choice.Observer
	logger           *slog.Logger
	inlineStyles     bool
}

// WithTemplatesFS supplies an override template bundle. Templates missing
// from it fall back to the embedded defaults.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads override templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponents replaces the component registry.
func WithComponents(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithWidgets replaces the widget registry used to pick a component per
// field.
func WithWidgets(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithUISchemas overlays stored UI schema documents onto rendered forms.
func WithUISchemas(store *uischema.Store) Option {
	return func(cfg *config) {
		cfg.uiSchemas = store
	}
}

// WithFetcher lets autocomplete fields resolve labels for prefilled values.
func WithFetcher(fetcher choice.Fetcher) Option {
	return func(cfg *config) {
		cfg.fetcher = fetcher
	}
}

// WithObserver reports prefill fetches.
func WithObserver(observer choice.Observer) Option {
	return func(cfg *config) {
		cfg.observer = observer
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithInlineStyles toggles the embedded stylesheet. Enabled by default; a
// theme stylesheet asset replaces it.
func WithInlineStyles(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

// Renderer writes forms as server-side HTML.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	components   *components.Registry
	widgets      *widgets.Registry
	uiSchemas    *uischema.Store
	fetcher      choice.Fetcher
	observer     choice.Observer
	logger       *slog.Logger
	inlineStyles bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		inlineStyles: true,
		logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engineOpts := []gotemplate.Option{}
		if cfg.templateFS != nil {
			engineOpts = append(engineOpts, gotemplate.WithFS(cfg.templateFS))
		}
		engineOpts = append(engineOpts, gotemplate.WithFS(TemplatesFS()))
		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}

	return &Renderer{
		templates:    templates,
		components:   cfg.components,
		widgets:      cfg.widgets,
		uiSchemas:    cfg.uiSchemas,
		fetcher:      cfg.fetcher,
		observer:     cfg.observer,
		logger:       cfg.logger,
		inlineStyles: cfg.inlineStyles,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render decorates form, renders every field through its component and lays
// the results out with the object composer.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	decorators := []model.Decorator{r.widgets}
	if r.uiSchemas != nil {
		decorators = []model.Decorator{r.uiSchemas, r.widgets}
	}
	prepared, err := render.Prepare(form, decorators...)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	defaults := render.Defaults(r.uiSchemas.Defaults(), opts.Defaults)

	provider, err := rendertemplate.NewProvider(r.templates, rendertemplate.WithTheme(opts.Theme))
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	composer := layout.New(provider)
	formData := opts.FormData(prepared)

	data := components.ComponentData{
		Context:       ctx,
		Template:      r.templates,
		ThemePartials: themePartials(opts.Theme),
		Fetcher:       r.fetcher,
		Observer:      r.observer,
		Logger:        r.logger,
		RenderObject:  composer.Render,
		FormData:      formData,
	}

	used := make(map[string]struct{})
	elements := make([]model.Element, 0, len(prepared.Fields))
	for _, field := range prepared.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		element, component, err := r.renderField(prepared, field, opts, defaults, data)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		if component != "" {
			used[component] = struct{}{}
		}
		elements = append(elements, element)
	}

	formOpts, err := uischema.ResolveOptions(prepared.UI, defaults)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: form %q: %w", prepared.ID, err)
	}
	body, err := composer.Render(model.ObjectProps{
		ID:          render.IDPrefix,
		Title:       firstNonEmpty(formOpts.Title, prepared.Title, prepared.Schema.Title),
		Description: firstNonEmpty(prepared.Description, prepared.Schema.Description),
		Schema:      prepared.Schema,
		UISchema:    prepared.UI,
		Options:     formOpts,
		Elements:    elements,
		Disabled:    prepared.Disabled,
		Readonly:    prepared.Readonly,
		Expandable:  schema.CanExpand(prepared.Schema, formOpts, formData),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: compose form %q: %w", prepared.ID, err)
	}

	r.logger.Debug("rendered form", "form", prepared.ID, "fields", len(elements), "components", len(used))
	return r.document(prepared, body, used, opts.Theme), nil
}

func (r *Renderer) renderField(form model.Form, field model.Field, opts render.RenderOptions, defaults map[string]any, data components.ComponentData) (model.Element, string, error) {
	props, err := render.WidgetProps(form, field, opts, defaults)
	if err != nil {
		return model.Element{}, "", err
	}
	if field.Hidden {
		return model.Element{Name: field.Name, Hidden: true, Content: hiddenInput(props)}, "", nil
	}

	name := field.Widget
	if name == "" {
		name = components.NameText
	}
	descriptor, ok := r.components.Descriptor(name)
	if !ok {
		return model.Element{}, "", fmt.Errorf("component %q not registered for field %q", name, field.Name)
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, props, data); err != nil {
		return model.Element{}, "", fmt.Errorf("render component %q for field %q: %w", name, field.Name, err)
	}
	return model.Element{
		Name:    field.Name,
		Content: buildFieldMarkup(props, descriptor.Name, control.String()),
	}, descriptor.Name, nil
}

func (r *Renderer) document(form model.Form, body string, used map[string]struct{}, cfg *theme.RendererConfig) []byte {
	var builder strings.Builder
	builder.Grow(len(body) + 1024)

	builder.WriteString(`<form class="fw-form" method="post" data-renderer="vanilla"`)
	if form.ID != "" {
		builder.WriteString(` id="`)
		builder.WriteString(html.EscapeString(form.ID))
		builder.WriteString(`"`)
	}
	if cfg != nil && cfg.Theme != "" {
		builder.WriteString(` data-theme="`)
		builder.WriteString(html.EscapeString(cfg.Theme))
		builder.WriteString(`"`)
		if cfg.Variant != "" {
			builder.WriteString(` data-theme-variant="`)
			builder.WriteString(html.EscapeString(cfg.Variant))
			builder.WriteString(`"`)
		}
	}
	if style := cssVarsStyle(cfg); style != "" {
		builder.WriteString(` style="`)
		builder.WriteString(html.EscapeString(style))
		builder.WriteString(`"`)
	}
	builder.WriteString(">\n")

	if href := themeAsset(cfg, "stylesheet"); href != "" {
		builder.WriteString(`<link rel="stylesheet" href="`)
		builder.WriteString(html.EscapeString(href))
		builder.WriteString("\">\n")
	} else if r.inlineStyles {
		if css := defaultStylesheet(); css != "" {
			builder.WriteString("<style>\n")
			builder.WriteString(css)
			builder.WriteString("</style>\n")
		}
	}

	builder.WriteString(body)
	builder.WriteByte('\n')

	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	slices.Sort(names)
	stylesheets, scripts := r.components.Assets(names)
	for _, href := range stylesheets {
		builder.WriteString(`<link rel="stylesheet" href="`)
		builder.WriteString(html.EscapeString(href))
		builder.WriteString("\">\n")
	}
	for _, script := range scripts {
		writeScript(&builder, script)
	}

	builder.WriteString("</form>\n")
	return []byte(builder.String())
}

func writeScript(builder *strings.Builder, script components.Script) {
	builder.WriteString("<script")
	if script.Src != "" {
		builder.WriteString(` src="`)
		builder.WriteString(html.EscapeString(script.Src))
		builder.WriteString(`"`)
	}
	if script.Module {
		builder.WriteString(` type="module"`)
	}
	if script.Defer {
		builder.WriteString(" defer")
	}
	builder.WriteString(">")
	builder.WriteString(script.Inline)
	builder.WriteString("</script>\n")
}

func themePartials(cfg *theme.RendererConfig) map[string]string {
	if cfg == nil {
		return nil
	}
	return cfg.Partials
}

func themeAsset(cfg *theme.RendererConfig, key string) string {
	if cfg == nil || cfg.AssetURL == nil {
		return ""
	}
	return cfg.AssetURL(key)
}

// cssVarsStyle renders theme CSS variables as an inline declaration list in
// key order.
func cssVarsStyle(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		parts = append(parts, name+": "+cfg.CSSVars[key])
	}
	return strings.Join(parts, "; ")
}
