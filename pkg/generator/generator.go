// Package generator exposes the static site generation API for sitekit hosts.
// Use NewService with Config and Dependencies to render the published tree,
// copy assets, and emit sitemaps and feeds.
package generator

import internal "github.com/goliatone/go-sitekit/internal/generator"

type (
	Service          = internal.Service
	Config           = internal.Config
	ThemingConfig    = internal.ThemingConfig
	Dependencies     = internal.Dependencies
	BuildOptions     = internal.BuildOptions
	BuildResult      = internal.BuildResult
	DiffEntry        = internal.DiffEntry
	DiffResult       = internal.DiffResult
	CleanResult      = internal.CleanResult
	SitemapResult    = internal.SitemapResult
	RenderDiagnostic = internal.RenderDiagnostic
	Recorder         = internal.Recorder
)

var ErrServiceDisabled = internal.ErrServiceDisabled

// NewService wires a static site generator with the supplied configuration and
// dependencies.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}
