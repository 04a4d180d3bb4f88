package interfaces

import (
	"io"
)

// TemplateRenderer abstracts the template engine used to produce pages.
// Render resolves a template by logical name through the active theme,
// RenderTemplate bypasses theme resolution, and RenderString evaluates an
// inline template. When an io.Writer is supplied output is streamed to it
// in addition to being returned.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
