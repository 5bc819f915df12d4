// Package suggest provides suggestion sources for the autocomplete resolver:
// an HTTP JSON source, a redis-backed cache wrapping any source, an
// in-memory list source, and a router dispatching by autocomplete kind.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

// ErrUnknownKind is returned when no source is registered for a kind.
var ErrUnknownKind = errors.New("suggest: unknown autocomplete kind")

// Router dispatches fetches to the source registered for each kind.
type Router struct {
	mu       sync.RWMutex
	sources  map[string]choice.Fetcher
	fallback choice.Fetcher
}

var _ choice.Fetcher = (*Router)(nil)

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{sources: make(map[string]choice.Fetcher)}
}

// Register binds kind to source, replacing any previous binding.
func (r *Router) Register(kind string, source choice.Fetcher) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return errors.New("suggest: kind is required")
	}
	if source == nil {
		return fmt.Errorf("suggest: source for %q is nil", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[kind] = source
	return nil
}

// MustRegister panics when Register fails.
func (r *Router) MustRegister(kind string, source choice.Fetcher) {
	if err := r.Register(kind, source); err != nil {
		panic(err)
	}
}

// SetFallback sets the source used for kinds without a binding.
func (r *Router) SetFallback(source choice.Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = source
}

// Kinds lists the registered kinds in sorted order.
func (r *Router) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources))
	for kind := range r.sources {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}

// Fetch implements choice.Fetcher.
func (r *Router) Fetch(ctx context.Context, kind, query string) ([]option.Option, error) {
	r.mu.RLock()
	source, ok := r.sources[kind]
	if !ok {
		source = r.fallback
	}
	r.mu.RUnlock()
	if source == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return source.Fetch(ctx, kind, query)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
