// Package sitecheck inspects a project's data documents, templates, and
// cross-references before a build: schema conformance, key and route
// uniqueness, template existence, token coverage, slug shape, and locale
// declarations. Findings are issues in a report, not errors; Run fails only
// on internal faults.
package sitecheck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/templates"
	"github.com/goliatone/go-sitekit/internal/validation"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
	"github.com/goliatone/go-sitekit/site"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeSchema            = "schema"
	CodeDocument          = "document"
	CodeDuplicateKey      = "duplicate-key"
	CodeBaseURL           = "base-url-invalid"
	CodeTemplateMissing   = "template-missing"
	CodeTokenUnresolved   = "token-unresolved"
	CodeSlugInvalid       = "slug-invalid"
	CodeCollectionRoute   = "collection-route"
	CodeLocaleUndeclared  = "locale-undeclared"
	CodeTemplatesUnloaded = "templates-unloaded"
)

// Issue is one finding, addressed by the document or record that produced it.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

// Report collects every finding from one run.
type Report struct {
	RanAt  time.Time `json:"ran_at"`
	Issues []Issue   `json:"issues"`
}

// HasErrors reports whether any issue is an error.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any issue is a warning.
func (r *Report) HasWarnings() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Failed reports whether the run should fail the caller: errors always do,
// warnings only under strict.
func (r *Report) Failed(strict bool) bool {
	return r.HasErrors() || (strict && r.HasWarnings())
}

// Counts returns the number of errors and warnings.
func (r *Report) Counts() (errors, warnings int) {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// Options tunes one run.
type Options struct {
	// Strict makes warnings count as failures via Report.Failed.
	Strict bool
}

// Dependencies wires the collaborators. Data is required; DataFS enables raw
// schema validation; Templates enables template cross-checks.
type Dependencies struct {
	Data      site.Service
	DataFS    fs.FS
	Templates *templates.Store
	Logger    interfaces.Logger
	Now       func() time.Time
}

// Service runs the project checks.
type Service interface {
	Run(ctx context.Context, opts Options) (*Report, error)
}

type service struct {
	deps Dependencies
	now  func() time.Time
}

// NewService validates dependencies and returns a ready checker.
func NewService(deps Dependencies) (Service, error) {
	if deps.Data == nil {
		return nil, errors.New("sitecheck: site data service required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{deps: deps, now: now}, nil
}

// Run executes every check and returns the aggregated report.
func (s *service) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{RanAt: s.now().UTC()}

	s.checkSchemas(report)

	if err := s.deps.Data.Reload(ctx); err != nil {
		report.Issues = append(report.Issues, loadIssues(err)...)
		return report, nil
	}

	siteRecord, err := s.deps.Data.Site(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitecheck: read site record: %w", err)
	}
	pages, err := s.deps.Data.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitecheck: read pages: %w", err)
	}
	offerings, err := s.deps.Data.Offerings(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitecheck: read offerings: %w", err)
	}
	posts, err := s.deps.Data.Posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitecheck: read posts: %w", err)
	}

	s.checkSite(report, siteRecord)
	s.checkOfferings(report, siteRecord, offerings)
	s.checkPages(ctx, report, siteRecord, pages, offerings, posts)

	errCount, warnCount := report.Counts()
	s.deps.Logger.Info("sitecheck: run complete",
		"errors", errCount, "warnings", warnCount, "strict", opts.Strict)
	return report, nil
}

// checkSchemas validates the raw data documents against the embedded JSON
// Schemas. Optional documents may be absent; site-config.json may not.
func (s *service) checkSchemas(report *Report) {
	if s.deps.DataFS == nil {
		return
	}
	for _, document := range []string{
		validation.DocumentSiteConfig,
		validation.DocumentOfferings,
		validation.DocumentPages,
	} {
		raw, err := fs.ReadFile(s.deps.DataFS, document)
		if err != nil {
			if document == validation.DocumentSiteConfig {
				report.add(SeverityError, CodeDocument, document, "site-config.json is required")
			}
			continue
		}
		if err := validation.ValidateDataDocument(document, raw); err != nil {
			issues := validation.Issues(err)
			if len(issues) == 0 {
				report.add(SeverityError, CodeSchema, document, err.Error())
				continue
			}
			for _, issue := range issues {
				path := document
				if location := strings.TrimSpace(issue.Location); location != "" {
					path = document + "#" + strings.TrimPrefix(location, "#")
				}
				report.add(SeverityError, CodeSchema, path, issue.Message)
			}
		}
	}
}

func (s *service) checkSite(report *Report, siteRecord *site.Site) {
	base := strings.TrimSpace(siteRecord.BaseURL)
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		report.add(SeverityError, CodeBaseURL, validation.DocumentSiteConfig,
			fmt.Sprintf("base_url %q must be an absolute URL", siteRecord.BaseURL))
	}
	for locale := range siteRecord.Variants {
		if !siteRecord.HasLocale(locale) {
			report.add(SeverityWarning, CodeLocaleUndeclared, validation.DocumentSiteConfig,
				fmt.Sprintf("variant locale %q is not in the site locale list", locale))
		}
	}
}

func (s *service) checkOfferings(report *Report, siteRecord *site.Site, offerings []*site.Offering) {
	for _, offering := range offerings {
		path := validation.DocumentOfferings + "#" + offering.Key
		if offering.Slug != "" && !site.IsValidSlug(offering.Slug) {
			report.add(SeverityWarning, CodeSlugInvalid, path,
				fmt.Sprintf("slug %q is not normalized", offering.Slug))
		}
		for locale := range offering.Variants {
			if !siteRecord.HasLocale(locale) {
				report.add(SeverityWarning, CodeLocaleUndeclared, path,
					fmt.Sprintf("variant locale %q is not in the site locale list", locale))
			}
		}
	}
}

func (s *service) checkPages(ctx context.Context, report *Report, siteRecord *site.Site, pages []*site.Page, offerings []*site.Offering, posts []*site.Post) {
	store := s.deps.Templates
	if store != nil && !store.Loaded() {
		if err := store.Load(ctx); err != nil {
			report.add(SeverityWarning, CodeTemplatesUnloaded, "templates",
				fmt.Sprintf("template store unavailable: %v", err))
			store = nil
		}
	}

	for _, page := range pages {
		path := validation.DocumentPages + "#" + page.Key

		if page.IsCollection() && !strings.Contains(page.Route, ":slug") {
			report.add(SeverityError, CodeCollectionRoute, path,
				fmt.Sprintf("collection page route %q must contain a :slug segment", page.Route))
		}
		for locale := range page.Variants {
			if !siteRecord.HasLocale(locale) {
				report.add(SeverityWarning, CodeLocaleUndeclared, path,
					fmt.Sprintf("variant locale %q is not in the site locale list", locale))
			}
		}

		if store == nil {
			continue
		}
		tpl, ok := store.Get(page.Template)
		if !ok {
			report.add(SeverityError, CodeTemplateMissing, path,
				fmt.Sprintf("template %q not found under the templates directory", page.Template))
			continue
		}
		known := knownTokens(siteRecord, page, offerings, posts)
		for _, token := range tpl.Tokens {
			if _, ok := known[token]; !ok {
				report.add(SeverityWarning, CodeTokenUnresolved, path,
					fmt.Sprintf("template %s references token %s which no context layer provides", page.Template, token))
			}
		}
	}
}

// knownTokens builds the set of uppercase token names the generator would
// place in the render context for this page, across every locale.
func knownTokens(siteRecord *site.Site, page *site.Page, offerings []*site.Offering, posts []*site.Post) map[string]struct{} {
	known := map[string]struct{}{
		"SITE_NAME": {}, "SITE_TAGLINE": {}, "SITE_DESCRIPTION": {},
		"BASE_URL": {}, "LOCALE": {}, "YEAR": {},
		"PAGE_TITLE": {}, "PAGE_DESCRIPTION": {}, "PAGE_ROUTE": {}, "PAGE_URL": {},
	}
	addAll := func(tokens map[string]string) {
		for name := range tokens {
			known[name] = struct{}{}
		}
	}

	addAll(siteRecord.Tokens)
	for _, variant := range siteRecord.Variants {
		addAll(variant.Tokens)
	}
	addAll(page.Tokens)
	for _, variant := range page.Variants {
		addAll(variant.Tokens)
	}

	switch page.Collection {
	case site.CollectionOfferings:
		for _, offering := range offerings {
			addAll(offering.Tokens)
			for _, variant := range offering.Variants {
				addAll(variant.Tokens)
			}
		}
	case site.CollectionPosts:
		known["POST_DATE"] = struct{}{}
		_ = posts
	}
	return known
}

// loadIssues converts a data load failure into report issues. Structured load
// errors keep their document context; anything else becomes one error entry.
func loadIssues(err error) []Issue {
	var issues []Issue
	add := func(code, path, message string) {
		issues = append(issues, Issue{Severity: SeverityError, Code: code, Path: path, Message: message})
	}

	var dup *site.DuplicateKeyError
	var dupRoute *site.DuplicateRouteError
	var doc *site.DocumentError
	switch {
	case errors.As(err, &dup):
		add(CodeDuplicateKey, dup.Document, dup.Error())
	case errors.As(err, &dupRoute):
		add(CodeDuplicateKey, validation.DocumentPages, dupRoute.Error())
	case errors.As(err, &doc):
		add(CodeDocument, doc.Document, doc.Error())
	default:
		add(CodeDocument, "", err.Error())
	}
	return issues
}

func (r *Report) add(severity Severity, code, path, message string) {
	r.Issues = append(r.Issues, Issue{Severity: severity, Code: code, Path: path, Message: message})
}

// Sorted returns the issues ordered by path then code, for stable output.
func (r *Report) Sorted() []Issue {
	sorted := append([]Issue(nil), r.Issues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Code < sorted[j].Code
	})
	return sorted
}
