package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/layout"
	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/render"
	"github.com/goliatone/go-formwidgets/pkg/schema"
	"github.com/goliatone/go-formwidgets/pkg/uischema"
	"github.com/goliatone/go-formwidgets/pkg/widgets"
)

const defaultMaxAttempts = 5

// Renderer implements render.Renderer for terminal-driven sessions. Every
// visible field is prompted through the same choice resolvers the HTML
// renderer uses, and the collected values are serialized as the output.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	fetcher           choice.Fetcher
	observer          choice.Observer
	uiSchemas         *uischema.Store
	widgets           *widgets.Registry
	logger            *slog.Logger
	maxAttempts       int
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		widgets:      widgets.NewRegistry(),
		logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
		maxAttempts:  defaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// session carries the per-render inputs shared by every field prompt.
type session struct {
	form     model.Form
	opts     render.RenderOptions
	defaults map[string]any
	state    *State
}

// Render prompts for the primary fields, offers the optional group behind a
// confirmation and returns the serialized answers.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	decorators := []model.Decorator{r.widgets}
	if r.uiSchemas != nil {
		decorators = []model.Decorator{r.uiSchemas, r.widgets}
	}
	prepared, err := render.Prepare(form, decorators...)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	s := &session{
		form:     prepared,
		opts:     opts,
		defaults: render.Defaults(r.uiSchemas.Defaults(), opts.Defaults),
		state:    NewState(opts.FormData(prepared)),
	}

	formOpts, err := uischema.ResolveOptions(prepared.UI, s.defaults)
	if err != nil {
		return nil, fmt.Errorf("tui: form %q: %w", prepared.ID, err)
	}
	fields := make(map[string]model.Field, len(prepared.Fields))
	elements := make([]model.Element, 0, len(prepared.Fields))
	for _, field := range prepared.Fields {
		fields[field.Name] = field
		elements = append(elements, model.Element{Name: field.Name, Hidden: field.Hidden})
	}
	composed := layout.Compose(model.ObjectProps{
		ID:          render.IDPrefix,
		Title:       firstNonEmpty(prepared.Title, prepared.Schema.Title),
		Description: firstNonEmpty(prepared.Description, prepared.Schema.Description),
		Schema:      prepared.Schema,
		Options:     formOpts,
		Elements:    elements,
		Disabled:    prepared.Disabled,
		Readonly:    prepared.Readonly,
		Expandable:  schema.CanExpand(prepared.Schema, formOpts, s.state.Values()),
	})

	if composed.ShowTitle {
		if err := r.info(ctx, composed.Title); err != nil {
			return nil, err
		}
	}
	if composed.ShowDescription {
		if err := r.info(ctx, composed.Description); err != nil {
			return nil, err
		}
	}

	if err := r.promptElements(ctx, s, fields, composed.Primary); err != nil {
		return nil, err
	}
	if composed.ShowOptional && hasVisible(composed.Optional) {
		fill, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Fill in %s?", composed.OptionalTitle),
		})
		if err != nil {
			return nil, err
		}
		if fill {
			if err := r.promptElements(ctx, s, fields, composed.Optional); err != nil {
				return nil, err
			}
		}
	}
	if composed.ShowExpand && !composed.ExpandDisabled {
		if err := r.promptProperties(ctx, s, "", "the form", prepared.Schema, formOpts); err != nil {
			return nil, err
		}
	}

	values := s.state.Values()
	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	r.logger.Debug("collected form", "form", prepared.ID, "values", len(values))
	return r.serialize(values)
}

func (r *Renderer) promptElements(ctx context.Context, s *session, fields map[string]model.Field, elements []model.Element) error {
	for _, element := range elements {
		if element.Hidden {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.promptField(ctx, s, fields[element.Name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, s *session, field model.Field) error {
	opts := s.opts
	opts.Values = s.state.Values()
	props, err := render.WidgetProps(s.form, field, opts, s.defaults)
	if err != nil {
		return fmt.Errorf("tui: field %q: %w", field.Name, err)
	}
	for _, message := range props.RawErrors {
		if err := r.errorf(ctx, "%s: %s", props.DisplayLabel(), message); err != nil {
			return err
		}
	}
	if !props.Interactive() {
		r.logger.Debug("skipping non-interactive field", "field", field.Name)
		return nil
	}

	widget := field.Widget
	if widget == "" {
		widget = widgets.WidgetText
	}
	switch widget {
	case widgets.WidgetSelect:
		err = r.promptSelect(ctx, s, field, props)
	case widgets.WidgetAutocomplete:
		err = r.promptAutocomplete(ctx, s, field, props)
	case widgets.WidgetObject:
		err = r.promptObject(ctx, s, field, props)
	case widgets.WidgetText:
		err = r.promptText(ctx, s, field, props)
	default:
		return fmt.Errorf("tui: widget %q not supported for field %q", widget, field.Name)
	}
	if err != nil && !errors.Is(err, ErrAborted) && !errors.Is(err, ErrTooManyAttempts) {
		return fmt.Errorf("tui: field %q: %w", field.Name, err)
	}
	return err
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) errorf(ctx context.Context, format string, args ...any) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func hasVisible(elements []model.Element) bool {
	for _, element := range elements {
		if !element.Hidden {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", fmt.Sprint(val))
		}
	case nil:
		out.Set(prefix, "")
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}
