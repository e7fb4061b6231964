package buildcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sitekit/internal/generator"
)

const (
	buildSiteMessageType    = "sitekit.build.site"
	diffSiteMessageType     = "sitekit.build.diff"
	cleanSiteMessageType    = "sitekit.build.clean"
	buildSitemapMessageType = "sitekit.build.sitemap"
)

// ResultCallback receives generator results. The callback is optional and is
// invoked synchronously from the handler when a result is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a build command execution.
type ResultEnvelope struct {
	Build    *generator.BuildResult
	Diff     *generator.DiffResult
	Clean    *generator.CleanResult
	Sitemap  *generator.SitemapResult
	Metadata map[string]any
}

// BuildSiteCommand executes a generator build using the provided filters.
type BuildSiteCommand struct {
	Locales        []string       `json:"locales,omitempty"`
	Pages          []string       `json:"pages,omitempty"`
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	IncludeDrafts  bool           `json:"include_drafts,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures locale and page filters are well-formed.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	for _, locale := range m.Locales {
		if strings.TrimSpace(locale) == "" {
			errs["locales"] = validation.NewError("sitekit.build.site.locale_invalid", "locales must not contain empty values")
			break
		}
	}
	for _, page := range m.Pages {
		if strings.TrimSpace(page) == "" {
			errs["pages"] = validation.NewError("sitekit.build.site.page_invalid", "pages must not contain empty keys")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DiffSiteCommand reports which outputs would change without writing artifacts.
type DiffSiteCommand struct {
	Locales        []string       `json:"locales,omitempty"`
	Pages          []string       `json:"pages,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (DiffSiteCommand) Type() string { return diffSiteMessageType }

// Validate ensures locale and page filters are well-formed.
func (m DiffSiteCommand) Validate() error {
	errs := validation.Errors{}
	for _, locale := range m.Locales {
		if strings.TrimSpace(locale) == "" {
			errs["locales"] = validation.NewError("sitekit.build.diff.locale_invalid", "locales must not contain empty values")
			break
		}
	}
	for _, page := range m.Pages {
		if strings.TrimSpace(page) == "" {
			errs["pages"] = validation.NewError("sitekit.build.diff.page_invalid", "pages must not contain empty keys")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CleanSiteCommand clears generated artifacts from the output tree.
type CleanSiteCommand struct {
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// BuildSitemapCommand refreshes sitemap.xml without a full rebuild.
type BuildSitemapCommand struct {
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSitemapCommand) Type() string { return buildSitemapMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (BuildSitemapCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return true
	}
	return g.GeneratorEnabled()
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}

func normalizeLocales(locales []string) []string {
	out := make([]string, 0, len(locales))
	for _, locale := range locales {
		trimmed := strings.TrimSpace(locale)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
