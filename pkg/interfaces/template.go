package interfaces

import (
	"io"
)

// TemplateRenderer abstracts the template engine used to turn token contexts
// into HTML. Render resolves a named template from the configured set,
// RenderString compiles ad-hoc template content, and both write to the
// optional writer instead of returning the document when one is supplied.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
