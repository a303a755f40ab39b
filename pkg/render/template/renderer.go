// Package template defines the rendering seam used for preview documents so
// the engine behind it stays swappable.
package template

import "io"

// Renderer is the engine contract preview rendering relies on. It mirrors
// the github.com/goliatone/go-template surface.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}
