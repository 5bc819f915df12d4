// Package render defines the renderer contract shared by the HTML and
// terminal front ends plus a name-keyed registry of renderers.
package render

import (
	"context"

	"github.com/goliatone/go-formwidgets/pkg/model"
)

// Renderer converts a form into a byte representation (HTML, terminal
// answers serialized as JSON, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.Form, options RenderOptions) ([]byte, error)
}
