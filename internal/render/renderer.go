// Package render implements the template renderer on top of pongo2. Page
// templates reference tokens as {{ COMPANY_NAME }} and structured records as
// {{ page.Title }}; unresolved names render as empty strings and are surfaced
// separately as diagnostics by the generator.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-sitekit/internal/util"
)

// Config configures the renderer.
type Config struct {
	// TemplatesDir is the directory page templates are loaded from. Leave
	// empty for renderers that only serve RenderString.
	TemplatesDir string
	// Debug disables the template cache so edits show up without restarts.
	Debug bool
	// Globals are merged under every render context.
	Globals map[string]any
}

// PongoRenderer satisfies interfaces.TemplateRenderer using pongo2.
type PongoRenderer struct {
	mu      sync.RWMutex
	set     *pongo2.TemplateSet
	globals map[string]any
}

// NewRenderer constructs a renderer from cfg.
func NewRenderer(cfg Config) (*PongoRenderer, error) {
	loader, err := pongo2.NewLocalFileSystemLoader(strings.TrimSpace(cfg.TemplatesDir))
	if err != nil {
		return nil, fmt.Errorf("render: open template dir %s: %w", cfg.TemplatesDir, err)
	}

	set := pongo2.NewSet("sitekit", loader)
	set.Debug = cfg.Debug

	return &PongoRenderer{
		set:     set,
		globals: util.CloneAnyMap(cfg.Globals),
	}, nil
}

// Render renders the named template. It is an alias for RenderTemplate.
func (r *PongoRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

// RenderTemplate renders a template file resolved against TemplatesDir.
func (r *PongoRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.set.FromCache(name)
	if err != nil {
		return "", fmt.Errorf("render: load template %q: %w", name, err)
	}
	return r.execute(tpl, data, out...)
}

// RenderString renders inline template content.
func (r *PongoRenderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("render: parse inline template: %w", err)
	}
	return r.execute(tpl, data, out...)
}

// RegisterFilter exposes a custom filter to every template. Registering the
// same name twice replaces the previous filter.
func (r *PongoRenderer) RegisterFilter(name string, fn func(any, any) (any, error)) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("render: filter name required")
	}
	if fn == nil {
		return fmt.Errorf("render: filter %q requires a function", name)
	}

	wrapped := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramValue any
		if param != nil {
			paramValue = param.Interface()
		}
		outValue, err := fn(in.Interface(), paramValue)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(outValue), nil
	}

	if err := pongo2.RegisterFilter(name, wrapped); err != nil {
		if replaceErr := pongo2.ReplaceFilter(name, wrapped); replaceErr != nil {
			return fmt.Errorf("render: register filter %q: %w", name, replaceErr)
		}
	}
	return nil
}

// GlobalContext merges data under every subsequent render.
func (r *PongoRenderer) GlobalContext(data any) error {
	merged := util.CloneAnyMap(data)
	if len(merged) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.globals == nil {
		r.globals = map[string]any{}
	}
	for key, value := range merged {
		r.globals[key] = value
	}
	return nil
}

func (r *PongoRenderer) execute(tpl *pongo2.Template, data any, out ...io.Writer) (string, error) {
	ctx := r.buildContext(data)

	if len(out) > 0 && out[0] != nil {
		if err := tpl.ExecuteWriter(ctx, out[0]); err != nil {
			return "", fmt.Errorf("render: execute: %w", err)
		}
		return "", nil
	}

	rendered, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render: execute: %w", err)
	}
	return rendered, nil
}

func (r *PongoRenderer) buildContext(data any) pongo2.Context {
	ctx := pongo2.Context{}

	r.mu.RLock()
	for key, value := range r.globals {
		ctx[key] = value
	}
	r.mu.RUnlock()

	switch typed := data.(type) {
	case nil:
	case pongo2.Context:
		for key, value := range typed {
			ctx[key] = value
		}
	case map[string]any:
		for key, value := range typed {
			ctx[key] = value
		}
	case map[string]string:
		for key, value := range typed {
			ctx[key] = value
		}
	default:
		ctx["data"] = data
	}

	return ctx
}
