package generator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitekit/site"
)

// SiteMetadata is the site-wide context handed to templates and feed/sitemap
// builders. It is a stable projection of site.Site so templates never touch
// the raw configuration record.
type SiteMetadata struct {
	Name          string
	LegalName     string
	BaseURL       string
	Tagline       string
	Description   string
	AnalyticsID   string
	DefaultLocale string
	Locales       []string
	Contact       site.Contact
	Social        []site.SocialLink
}

// PageView is the per-document shape exposed to templates as "page".
type PageView struct {
	Key         string
	Route       string
	URL         string
	Title       string
	Description string
	Keywords    []string
	Locale      string
}

// OfferingView is the shape exposed for each service record.
type OfferingView struct {
	Key         string
	Slug        string
	Route       string
	URL         string
	Title       string
	Summary     string
	Description string
	Icon        string
	Order       int
}

// PostView is the shape exposed for each article. Body holds rendered HTML;
// templates must pipe it through the safe filter.
type PostView struct {
	Slug      string
	Route     string
	URL       string
	Title     string
	Summary   string
	Author    string
	Tags      []string
	Body      string
	Published time.Time
	Updated   time.Time
}

// ThemeContext exposes the resolved theme to templates as "theme".
type ThemeContext struct {
	Name     string
	Variant  string
	Tokens   map[string]string
	CSSVars  map[string]string
	AssetURL func(string) string
}

func buildThemeContext(selection *gotheme.Selection, cssPrefix string) ThemeContext {
	empty := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		AssetURL: func(string) string { return "" },
	}
	if selection == nil {
		return empty
	}

	return ThemeContext{
		Name:    selection.Theme,
		Variant: selection.Variant,
		Tokens:  selection.Tokens(),
		CSSVars: selection.CSSVariables(cssPrefix),
		AssetURL: func(key string) string {
			url, _ := selection.Asset(key)
			return url
		},
	}
}

func themeFingerprint(selection *gotheme.Selection) string {
	if selection == nil {
		return ""
	}
	return hashSources(map[string]string{
		"theme":   selection.Theme,
		"variant": selection.Variant,
		"tokens":  hashStrings(selection.Tokens()),
		"assets":  strings.Join(collectThemeAssets(selection), ","),
	})
}

// TemplateHelpers exposes locale-aware URL helpers to templates.
type TemplateHelpers struct {
	locale        LocaleSpec
	defaultLocale string
	baseURL       string
}

func (h TemplateHelpers) Locale() string { return h.locale.Code }

func (h TemplateHelpers) IsLocale(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), h.locale.Code)
}

func (h TemplateHelpers) IsDefaultLocale() bool { return h.locale.IsDefault }

func (h TemplateHelpers) BaseURL() string { return baseURLWithFallback(h.baseURL) }

// WithBaseURL resolves a route to an absolute URL honouring the current
// locale prefix.
func (h TemplateHelpers) WithBaseURL(route string) string {
	return documentURL(h.baseURL, route, h.locale, h.defaultLocale)
}

// LocalePrefix is "" for the default locale and "/<code>" otherwise.
func (h TemplateHelpers) LocalePrefix() string {
	if h.locale.IsDefault {
		return ""
	}
	return "/" + h.locale.Code
}

// RenderedDocument is a rendered page ready to persist.
type RenderedDocument struct {
	Key         string
	Locale      string
	Route       string
	Output      string
	Content     string
	ContentType string
	Checksum    string
	Metadata    DocumentMetadata
}

// RenderDiagnostic reports a non-fatal rendering observation, typically
// tokens a template references that no data layer supplied.
type RenderDiagnostic struct {
	Key           string
	Locale        string
	Template      string
	MissingTokens []string
	Err           string
}

type renderOutcome struct {
	doc        *RenderedDocument
	diagnostic *RenderDiagnostic
	err        error
}

func siteMetadata(record *site.Site) SiteMetadata {
	return SiteMetadata{
		Name:          record.Name,
		LegalName:     record.LegalName,
		BaseURL:       record.BaseURL,
		Tagline:       record.Tagline,
		Description:   record.Description,
		AnalyticsID:   record.AnalyticsID,
		DefaultLocale: record.DefaultLocale,
		Locales:       append([]string(nil), record.Locales...),
		Contact:       record.Contact,
		Social:        append([]site.SocialLink(nil), record.Social...),
	}
}

// templateData assembles the render context for one document. Tokens go in
// first under their literal names so {{COMPANY_NAME}} style lookups resolve,
// then the structured views layer on top under reserved lowercase keys.
func templateData(buildCtx *BuildContext, doc *Document) map[string]any {
	data := make(map[string]any, len(doc.Tokens)+12)
	for key, value := range doc.Tokens {
		data[key] = value
	}

	meta := siteMetadata(buildCtx.Site)
	helpers := TemplateHelpers{
		locale:        doc.Locale,
		defaultLocale: buildCtx.DefaultLocale,
		baseURL:       buildCtx.Site.BaseURL,
	}

	data["site"] = meta
	data["page"] = PageView{
		Key:         doc.Page.Key,
		Route:       doc.Route,
		URL:         documentURL(buildCtx.Site.BaseURL, doc.Route, doc.Locale, buildCtx.DefaultLocale),
		Title:       doc.Title,
		Description: doc.Description,
		Keywords:    doc.Keywords,
		Locale:      doc.Locale.Code,
	}
	data["locale"] = doc.Locale.Code
	data["locales"] = buildCtx.Locales
	data["helpers"] = helpers
	data["theme"] = buildCtx.themeContext
	data["offerings"] = offeringViews(buildCtx, doc.Locale)
	data["posts"] = postViews(buildCtx, doc.Locale)
	data["build"] = map[string]any{
		"generated_at": buildCtx.GeneratedAt,
		"year":         buildCtx.GeneratedAt.Year(),
	}

	if doc.Offering != nil {
		data["offering"] = offeringView(buildCtx, doc.Offering, doc.Locale)
	}
	if doc.Post != nil {
		data["post"] = postView(buildCtx, doc.Post, doc.Locale)
	}
	return data
}

func offeringViews(buildCtx *BuildContext, locale LocaleSpec) []OfferingView {
	views := make([]OfferingView, 0, len(buildCtx.Offerings))
	for _, offering := range buildCtx.Offerings {
		views = append(views, offeringView(buildCtx, offering, locale))
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Order != views[j].Order {
			return views[i].Order < views[j].Order
		}
		return views[i].Title < views[j].Title
	})
	return views
}

func offeringView(buildCtx *BuildContext, offering *site.Offering, locale LocaleSpec) OfferingView {
	title := offering.Title
	summary := offering.Summary
	description := offering.Description
	if variant := offering.VariantFor(locale.Code); variant != nil {
		if variant.Title != "" {
			title = variant.Title
		}
		if variant.Summary != "" {
			summary = variant.Summary
		}
		if variant.Description != "" {
			description = variant.Description
		}
	}

	route := joinRoute(buildCtx.collectionRoute(site.CollectionOfferings), offering.Slug)
	return OfferingView{
		Key:         offering.Key,
		Slug:        offering.Slug,
		Route:       route,
		URL:         documentURL(buildCtx.Site.BaseURL, route, locale, buildCtx.DefaultLocale),
		Title:       title,
		Summary:     summary,
		Description: description,
		Icon:        offering.Icon,
		Order:       offering.Order,
	}
}

func postViews(buildCtx *BuildContext, locale LocaleSpec) []PostView {
	views := make([]PostView, 0, len(buildCtx.Posts))
	for _, post := range buildCtx.Posts {
		views = append(views, postView(buildCtx, post, locale))
	}
	return views
}

func postView(buildCtx *BuildContext, post *site.Post, locale LocaleSpec) PostView {
	route := joinRoute(buildCtx.collectionRoute(site.CollectionPosts), post.Slug)
	view := PostView{
		Slug:    post.Slug,
		Route:   route,
		URL:     documentURL(buildCtx.Site.BaseURL, route, locale, buildCtx.DefaultLocale),
		Title:   post.Title,
		Summary: post.Summary,
		Author:  post.Author,
		Tags:    append([]string(nil), post.Tags...),
		Body:    post.BodyHTML,
	}
	if post.PublishedAt != nil {
		view.Published = post.PublishedAt.UTC()
	}
	if post.UpdatedAt != nil {
		view.Updated = post.UpdatedAt.UTC()
	}
	return view
}

func (s *service) renderDocument(buildCtx *BuildContext, doc *Document) (*RenderedDocument, *RenderDiagnostic, error) {
	data := templateData(buildCtx, doc)

	content, err := s.deps.Renderer.RenderTemplate(doc.Template, data)
	if err != nil {
		return nil, &RenderDiagnostic{
			Key:      doc.Key,
			Locale:   doc.Locale.Code,
			Template: doc.Template,
			Err:      err.Error(),
		}, fmt.Errorf("generator: render %s: %w", doc.Key, err)
	}

	rendered := &RenderedDocument{
		Key:         doc.Key,
		Locale:      doc.Locale.Code,
		Route:       doc.Route,
		Output:      buildOutputPath(doc.Route, doc.Locale, buildCtx.DefaultLocale),
		Content:     content,
		ContentType: "text/html; charset=utf-8",
		Checksum:    computeHashFromString(content),
		Metadata:    doc.Metadata,
	}

	if missing := s.missingTokens(doc, data); len(missing) > 0 {
		return rendered, &RenderDiagnostic{
			Key:           doc.Key,
			Locale:        doc.Locale.Code,
			Template:      doc.Template,
			MissingTokens: missing,
		}, nil
	}
	return rendered, nil, nil
}

// missingTokens reports template tokens that resolved to nothing for this
// document. The render itself succeeds (unknown tokens output empty strings)
// so the gap surfaces as a diagnostic instead of a hard failure.
func (s *service) missingTokens(doc *Document, data map[string]any) []string {
	if s.deps.Templates == nil {
		return nil
	}
	tpl, ok := s.deps.Templates.Get(doc.Template)
	if !ok {
		return nil
	}

	var missing []string
	for _, token := range tpl.Tokens {
		if _, found := data[token]; found {
			continue
		}
		missing = append(missing, token)
	}
	return missing
}

func (s *service) renderConcurrently(ctx context.Context, buildCtx *BuildContext, docs []*Document) ([]*RenderedDocument, []RenderDiagnostic, error) {
	if len(docs) == 0 {
		return nil, nil, nil
	}

	workers := effectiveWorkerCount(s.cfg.Workers, len(docs))
	jobs := make(chan *Document)

	var (
		mu          sync.Mutex
		rendered    []*RenderedDocument
		diagnostics []RenderDiagnostic
		errs        []error
	)

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		if outcome.doc != nil {
			rendered = append(rendered, outcome.doc)
		}
		if outcome.diagnostic != nil {
			diagnostics = append(diagnostics, *outcome.diagnostic)
		}
		if outcome.err != nil {
			errs = append(errs, outcome.err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for doc := range jobs {
				if err := ctx.Err(); err != nil {
					collect(renderOutcome{err: err})
					return
				}
				page, diagnostic, err := s.renderDocument(buildCtx, doc)
				collect(renderOutcome{doc: page, diagnostic: diagnostic, err: err})
			}
		}()
	}

	for _, doc := range docs {
		jobs <- doc
	}
	close(jobs)
	wg.Wait()

	if len(errs) > 0 {
		return nil, diagnostics, errors.Join(errs...)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		return rendered[i].Key < rendered[j].Key
	})
	sort.SliceStable(diagnostics, func(i, j int) bool {
		return diagnostics[i].Key < diagnostics[j].Key
	})
	return rendered, diagnostics, nil
}

func effectiveWorkerCount(configured, pending int) int {
	if pending <= 0 {
		return 1
	}
	workers := configured
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > pending {
		workers = pending
	}
	return workers
}
