package choice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

// InputState is the per-instance state of an autocomplete: the text being
// typed and the suggestions accepted for it.
type InputState struct {
	InputText   string
	Suggestions []option.Option
}

// AutocompleteView is the render-ready description of an autocomplete
// control.
type AutocompleteView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Label     string `json:"label,omitempty"`
	Kind      string `json:"kind,omitempty"`
	InputText string `json:"inputText"`
	// Value is the display text of the committed value.
	Value     string `json:"value"`
	FreeInput bool   `json:"freeInput,omitempty"`
	Multiple  bool   `json:"multiple,omitempty"`
	Required  bool   `json:"required,omitempty"`
	Disabled  bool   `json:"disabled,omitempty"`
	Autofocus bool   `json:"autofocus,omitempty"`
	Invalid   bool   `json:"invalid,omitempty"`
	Items     []Item `json:"items"`
}

// AutocompleteOption configures an Autocomplete.
type AutocompleteOption func(*Autocomplete)

// WithFetcher configures the external suggestion source used when the field
// has no static enum options.
func WithFetcher(fetcher Fetcher) AutocompleteOption {
	return func(a *Autocomplete) {
		a.fetcher = fetcher
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger *slog.Logger) AutocompleteOption {
	return func(a *Autocomplete) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithObserver reports fetch outcomes to observer.
func WithObserver(observer Observer) AutocompleteOption {
	return func(a *Autocomplete) {
		if observer != nil {
			a.observer = observer
		}
	}
}

// WithDebounce delays each fetch by d; keystrokes inside the window replace
// the pending fetch.
func WithDebounce(d time.Duration) AutocompleteOption {
	return func(a *Autocomplete) {
		if d > 0 {
			a.debounce = d
		}
	}
}

// WithOnSuggestions registers a callback fired after suggestions are
// replaced. It runs on the fetch goroutine without the state lock held.
func WithOnSuggestions(fn func([]option.Option)) AutocompleteOption {
	return func(a *Autocomplete) {
		a.onSuggestions = fn
	}
}

// WithContext sets the parent context of every fetch.
func WithContext(ctx context.Context) AutocompleteOption {
	return func(a *Autocomplete) {
		if ctx != nil {
			a.parent = ctx
		}
	}
}

// WithInstanceID overrides the generated instance identifier used in logs.
func WithInstanceID(id string) AutocompleteOption {
	return func(a *Autocomplete) {
		if strings.TrimSpace(id) != "" {
			a.instanceID = id
		}
	}
}

// Autocomplete resolves free-text input against either a static option list
// or suggestions fetched per keystroke. Every keystroke bumps a generation
// counter and a fetch result is applied only while its generation is still
// current, so out-of-order completions never overwrite newer input.
type Autocomplete struct {
	props    model.WidgetProps
	handlers model.Handlers

	fetcher       Fetcher
	logger        *slog.Logger
	observer      Observer
	debounce      time.Duration
	onSuggestions func([]option.Option)
	parent        context.Context
	instanceID    string

	mu         sync.Mutex
	state      InputState
	generation uint64
	cancel     context.CancelFunc
	timer      *time.Timer
	closed     bool

	baseCtx    context.Context
	baseCancel context.CancelFunc
	inflight   sync.WaitGroup
}

// NewAutocomplete binds props and handlers into an autocomplete resolver in
// the idle state.
func NewAutocomplete(props model.WidgetProps, handlers model.Handlers, opts ...AutocompleteOption) *Autocomplete {
	a := &Autocomplete{
		props:    props,
		handlers: handlers,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		observer: nopObserver{},
		parent:   context.Background(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(a)
	}
	if a.instanceID == "" {
		a.instanceID = uuid.NewString()
	}
	a.baseCtx, a.baseCancel = context.WithCancel(a.parent)
	a.logger = a.logger.With("widget", "autocomplete", "id", props.ID, "instance", a.instanceID)
	return a
}

// Props returns the props the resolver was built with.
func (a *Autocomplete) Props() model.WidgetProps {
	return a.props
}

// Kind returns the configured autocomplete type.
func (a *Autocomplete) Kind() string {
	return a.props.Options.AutocompleteType
}

// FreeInput reports whether typed text can be committed as a value. It
// requires an external fetcher since there is no fixed list to check against.
func (a *Autocomplete) FreeInput() bool {
	return a.fetcher != nil && a.Kind() != "" && !a.props.Options.HasEnumOptions()
}

// State returns a copy of the current input state.
func (a *Autocomplete) State() InputState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return InputState{
		InputText:   a.state.InputText,
		Suggestions: cloneOptions(a.state.Suggestions),
	}
}

// Suggestions returns the accepted suggestions.
func (a *Autocomplete) Suggestions() []option.Option {
	return a.State().Suggestions
}

// Displayed returns the options offered to the user: the static enum options
// when configured, nothing while the input is empty, otherwise the accepted
// suggestions.
func (a *Autocomplete) Displayed() []option.Option {
	if a.props.Options.HasEnumOptions() {
		return a.props.Options.EnumOptions
	}
	state := a.State()
	if state.InputText == "" {
		return []option.Option{}
	}
	return state.Suggestions
}

// Input records new input text and, when suggestions come from a fetcher,
// schedules a fetch tagged with a fresh generation. Any pending or in-flight
// fetch for older text is superseded.
func (a *Autocomplete) Input(text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	a.generation++
	generation := a.generation
	a.state.InputText = text
	a.stopPendingLocked()

	if !a.shouldFetch(text) {
		return nil
	}

	ctx, cancel := context.WithCancel(a.baseCtx)
	a.cancel = cancel
	a.inflight.Add(1)
	if a.debounce > 0 {
		a.timer = time.AfterFunc(a.debounce, func() {
			a.run(ctx, cancel, generation, text)
		})
		return nil
	}
	go a.run(ctx, cancel, generation, text)
	return nil
}

func (a *Autocomplete) shouldFetch(text string) bool {
	if a.props.Options.HasEnumOptions() || a.fetcher == nil {
		return false
	}
	return text != ""
}

// stopPendingLocked cancels the in-flight fetch and any debounced fetch that
// has not started. A stopped timer never runs, so its WaitGroup slot is
// released here.
func (a *Autocomplete) stopPendingLocked() {
	if a.timer != nil {
		if a.timer.Stop() {
			a.inflight.Done()
		}
		a.timer = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

func (a *Autocomplete) run(ctx context.Context, cancel context.CancelFunc, generation uint64, query string) {
	defer a.inflight.Done()
	defer cancel()

	kind := a.Kind()
	if ctx.Err() != nil {
		a.observer.FetchDiscarded(kind)
		return
	}

	a.observer.FetchStarted(kind)
	suggestions, err := a.fetch(ctx, kind, query)

	a.mu.Lock()
	if generation != a.generation || a.closed {
		a.mu.Unlock()
		a.logger.Debug("discarding stale suggestions", "generation", generation, "query", query)
		a.observer.FetchDiscarded(kind)
		return
	}
	if err != nil {
		a.mu.Unlock()
		a.logger.Debug("suggestion fetch failed", "generation", generation, "query", query, "error", err)
		a.observer.FetchFailed(kind, err)
		return
	}
	a.state.Suggestions = dedupe(suggestions)
	applied := cloneOptions(a.state.Suggestions)
	notify := a.onSuggestions
	a.mu.Unlock()

	a.observer.FetchApplied(kind, len(applied))
	if notify != nil {
		notify(applied)
	}
}

func (a *Autocomplete) fetch(ctx context.Context, kind, query string) (out []option.Option, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrFetchPanicked, recovered)
		}
	}()
	return a.fetcher.Fetch(ctx, kind, query)
}

// Wait blocks until every scheduled fetch has settled.
func (a *Autocomplete) Wait() {
	a.inflight.Wait()
}

// Reset returns the resolver to the idle state, superseding pending fetches.
func (a *Autocomplete) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.stopPendingLocked()
	a.state = InputState{}
}

// Close cancels outstanding fetches and waits for them to return. Further
// input is rejected with ErrClosed.
func (a *Autocomplete) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		a.stopPendingLocked()
		a.baseCancel()
	}
	a.mu.Unlock()
	a.inflight.Wait()
}

// Select commits a choice. raw may be an index into the displayed options, a
// labeled option, or free text when free input is enabled. Multiple
// selections are resolved element-wise.
func (a *Autocomplete) Select(raw any) any {
	value := a.resolve(raw)
	a.handlers.Change(value)
	return value
}

// Blur commits typed text in free-input mode before reporting the blur.
func (a *Autocomplete) Blur(raw any) any {
	value := a.resolve(raw)
	if a.FreeInput() && a.State().InputText != "" {
		a.handlers.Change(value)
	}
	a.handlers.Blur(a.props.ID, value)
	return value
}

// Focus reports the focus with the resolved value.
func (a *Autocomplete) Focus(raw any) any {
	value := a.resolve(raw)
	a.handlers.Focus(a.props.ID, value)
	return value
}

func (a *Autocomplete) resolve(raw any) any {
	displayed := a.Displayed()
	empty := a.props.Options.EmptyValue

	switch typed := raw.(type) {
	case nil:
		return empty
	case []any:
		out := make([]any, len(typed))
		for idx, entry := range typed {
			out[idx] = a.resolveOne(entry, displayed, empty)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for idx, entry := range typed {
			out[idx] = a.resolveOne(entry, displayed, empty)
		}
		return out
	case []option.Option:
		out := make([]any, len(typed))
		for idx, entry := range typed {
			out[idx] = a.resolveOne(entry, displayed, empty)
		}
		return out
	default:
		return a.resolveOne(raw, displayed, empty)
	}
}

func (a *Autocomplete) resolveOne(raw any, displayed []option.Option, empty any) any {
	if option.IsLabeled(raw) {
		opt := option.Normalize(raw)
		if idx := option.IndexForValue(opt, displayed); idx != option.NoIndex {
			return displayed[idx].Value
		}
		if a.FreeInput() {
			return opt.Value
		}
		return empty
	}
	if text, ok := raw.(string); ok && a.FreeInput() {
		if strings.TrimSpace(text) == "" {
			return empty
		}
		return text
	}
	return option.Resolve(raw, displayed, empty)
}

// Match finds the displayed option a control wrote back as text. The
// rendered display label is tried first, then the bare value and the label.
// It reports NoIndex when nothing matches, and whether the match is disabled.
func (a *Autocomplete) Match(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return option.NoIndex, false
	}
	displayed := a.Displayed()
	found := func(idx int) (int, bool) {
		return idx, option.IsDisabled(displayed[idx].Value, a.props.Options.EnumDisabled)
	}
	for idx, opt := range displayed {
		if option.DisplayLabel(opt) == text {
			return found(idx)
		}
	}
	for idx, opt := range displayed {
		if option.ValueString(opt.Value) == text || strings.EqualFold(opt.Label, text) {
			return found(idx)
		}
	}
	return option.NoIndex, false
}

// View builds the render-ready description of the control.
func (a *Autocomplete) View() AutocompleteView {
	state := a.State()
	view := AutocompleteView{
		ID:        a.props.ID,
		Name:      a.props.ID,
		Label:     a.props.DisplayLabel(),
		Kind:      a.Kind(),
		InputText: state.InputText,
		FreeInput: a.FreeInput(),
		Multiple:  a.props.Multiple,
		Required:  a.props.Required,
		Disabled:  !a.props.Interactive(),
		Autofocus: a.props.Autofocus,
		Invalid:   len(a.props.RawErrors) > 0,
	}

	displayed := a.Displayed()
	current := a.props.Value
	if !isEmptyValue(current, a.props.Multiple) {
		if idx := option.IndexForValue(current, displayed); idx != option.NoIndex && !a.props.Multiple {
			view.Value = option.DisplayLabel(displayed[idx])
		} else if !a.props.Multiple {
			view.Value = option.ValueString(option.Normalize(current).Value)
		}
	}

	selected := option.AsSlice(current)
	if !a.props.Multiple {
		selected = []any{current}
	}
	for idx, opt := range displayed {
		item := Item{
			Index:    option.FormatIndex(idx),
			Label:    option.DisplayLabel(opt),
			Disabled: option.IsDisabled(opt.Value, a.props.Options.EnumDisabled),
		}
		for _, value := range selected {
			if value != nil && option.Equal(opt, value) {
				item.Selected = true
				break
			}
		}
		view.Items = append(view.Items, item)
	}
	return view
}

func dedupe(options []option.Option) []option.Option {
	out := make([]option.Option, 0, len(options))
	for _, candidate := range options {
		if option.IndexForValue(candidate, out) != option.NoIndex {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

func cloneOptions(options []option.Option) []option.Option {
	if options == nil {
		return nil
	}
	return append([]option.Option(nil), options...)
}
