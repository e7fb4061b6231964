package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitekit/internal/util"
	"github.com/goliatone/go-sitekit/site"
)

// LocaleSpec identifies one locale of the build run.
type LocaleSpec struct {
	Code      string
	IsDefault bool
}

// Document is one output unit of a build: a page resolved against a locale
// and, for collection pages, against a single offering or post record.
type Document struct {
	Page     *site.Page
	Locale   LocaleSpec
	Offering *site.Offering
	Post     *site.Post

	Key         string
	Route       string
	Template    string
	Title       string
	Description string
	Keywords    []string
	Tokens      map[string]string
	Metadata    DocumentMetadata
}

// DocumentMetadata carries the change-detection inputs for a document.
type DocumentMetadata struct {
	Hash         string
	LastModified time.Time
}

// BuildContext aggregates everything a build run needs: the site record, the
// resolved locale set, and the expanded document list.
type BuildContext struct {
	Site          *site.Site
	Locales       []LocaleSpec
	DefaultLocale string
	Documents     []*Document
	Offerings     []*site.Offering
	Posts         []*site.Post
	GeneratedAt   time.Time
	Options       BuildOptions

	TemplateFingerprint string
	DataFingerprint     string

	// Theme is the resolved selection, nil when the site configures none.
	Theme *gotheme.Selection

	themePath        string
	themeContext     ThemeContext
	themeFingerprint string

	// collectionRoutes maps a collection name to the route of the page that
	// hosts its records, so listings can link to detail documents even when a
	// build is filtered down to other pages.
	collectionRoutes map[string]string
}

func (c *BuildContext) collectionRoute(collection string) string {
	if route, ok := c.collectionRoutes[collection]; ok {
		return route
	}
	return "/" + strings.Trim(collection, "/")
}

// dataFingerprinter is implemented by site services that can report a content
// fingerprint for the loaded dataset.
type dataFingerprinter interface {
	Fingerprint() string
}

func (s *service) buildContext(ctx context.Context, opts BuildOptions) (*BuildContext, error) {
	siteRecord, err := s.deps.Site.Site(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: load site: %w", err)
	}

	pages, err := s.deps.Site.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: load pages: %w", err)
	}
	offerings, err := s.deps.Site.Offerings(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: load offerings: %w", err)
	}
	posts, err := s.deps.Site.Posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: load posts: %w", err)
	}

	locales, err := resolveLocales(siteRecord, opts.Locales)
	if err != nil {
		return nil, err
	}

	selected, err := selectPages(pages, opts.Pages)
	if err != nil {
		return nil, err
	}

	published := make([]*site.Post, 0, len(posts))
	for _, post := range posts {
		if post.Draft && !opts.IncludeDrafts {
			continue
		}
		published = append(published, post)
	}

	buildCtx := &BuildContext{
		Site:             siteRecord,
		Locales:          locales,
		DefaultLocale:    siteRecord.DefaultLocale,
		Offerings:        offerings,
		Posts:            published,
		GeneratedAt:      s.now().UTC(),
		Options:          opts,
		collectionRoutes: map[string]string{},
	}
	for _, page := range pages {
		if page.Collection == site.CollectionNone {
			continue
		}
		if _, ok := buildCtx.collectionRoutes[page.Collection]; !ok {
			buildCtx.collectionRoutes[page.Collection] = page.Route
		}
	}

	selection, themePath, err := s.themes.Selection(siteRecord.Theme)
	if err != nil {
		return nil, fmt.Errorf("generator: resolve theme: %w", err)
	}
	buildCtx.Theme = selection
	buildCtx.themePath = themePath
	buildCtx.themeContext = buildThemeContext(selection, s.cfg.Theming.CSSVariablePrefix)
	buildCtx.themeFingerprint = themeFingerprint(selection)

	if s.deps.Templates != nil {
		buildCtx.TemplateFingerprint = s.deps.Templates.Fingerprint()
	}
	if fp, ok := s.deps.Site.(dataFingerprinter); ok {
		buildCtx.DataFingerprint = fp.Fingerprint()
	}

	for _, locale := range locales {
		for _, page := range selected {
			if page.Draft && !opts.IncludeDrafts {
				continue
			}
			docs, err := s.expandPage(buildCtx, page, locale)
			if err != nil {
				return nil, err
			}
			buildCtx.Documents = append(buildCtx.Documents, docs...)
		}
	}

	sort.SliceStable(buildCtx.Documents, func(i, j int) bool {
		return buildCtx.Documents[i].Key < buildCtx.Documents[j].Key
	})
	return buildCtx, nil
}

func resolveLocales(siteRecord *site.Site, requested []string) ([]LocaleSpec, error) {
	available := siteRecord.Locales
	if len(available) == 0 {
		available = []string{siteRecord.DefaultLocale}
	}

	include := map[string]bool{}
	for _, code := range requested {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if !siteRecord.HasLocale(code) {
			return nil, fmt.Errorf("generator: locale %q: %w", code, site.ErrLocaleUnknown)
		}
		include[code] = true
	}

	var locales []LocaleSpec
	for _, code := range available {
		normalized := strings.ToLower(strings.TrimSpace(code))
		if normalized == "" {
			continue
		}
		if len(include) > 0 && !include[normalized] {
			continue
		}
		locales = append(locales, LocaleSpec{
			Code:      normalized,
			IsDefault: strings.EqualFold(normalized, siteRecord.DefaultLocale),
		})
	}
	return locales, nil
}

func selectPages(pages []*site.Page, keys []string) ([]*site.Page, error) {
	if len(keys) == 0 {
		return pages, nil
	}

	byKey := make(map[string]*site.Page, len(pages))
	for _, page := range pages {
		byKey[strings.ToLower(page.Key)] = page
	}

	var selected []*site.Page
	seen := map[string]bool{}
	for _, key := range keys {
		normalized := strings.ToLower(strings.TrimSpace(key))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		page, ok := byKey[normalized]
		if !ok {
			return nil, &site.NotFoundError{Resource: "page", Key: key}
		}
		selected = append(selected, page)
	}
	return selected, nil
}

func (s *service) expandPage(buildCtx *BuildContext, page *site.Page, locale LocaleSpec) ([]*Document, error) {
	switch page.Collection {
	case site.CollectionNone:
		doc := s.newDocument(buildCtx, page, locale, nil, nil)
		return []*Document{doc}, nil
	case site.CollectionOfferings:
		docs := make([]*Document, 0, len(buildCtx.Offerings))
		for _, offering := range buildCtx.Offerings {
			docs = append(docs, s.newDocument(buildCtx, page, locale, offering, nil))
		}
		return docs, nil
	case site.CollectionPosts:
		docs := make([]*Document, 0, len(buildCtx.Posts))
		for _, post := range buildCtx.Posts {
			docs = append(docs, s.newDocument(buildCtx, page, locale, nil, post))
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("generator: page %s: collection %q: %w", page.Key, page.Collection, site.ErrCollectionUnknown)
	}
}

func (s *service) newDocument(buildCtx *BuildContext, page *site.Page, locale LocaleSpec, offering *site.Offering, post *site.Post) *Document {
	doc := &Document{
		Page:     page,
		Locale:   locale,
		Offering: offering,
		Post:     post,
		Route:    page.Route,
		Template: page.Template,
	}

	pageVariant := page.VariantFor(locale.Code)
	doc.Title = page.Title
	doc.Description = page.Description
	doc.Keywords = page.Keywords
	if pageVariant != nil {
		doc.Title = util.FirstNonEmpty(pageVariant.Title, doc.Title)
		doc.Description = util.FirstNonEmpty(pageVariant.Description, doc.Description)
		if len(pageVariant.Keywords) > 0 {
			doc.Keywords = pageVariant.Keywords
		}
	}

	switch {
	case offering != nil:
		doc.Route = joinRoute(page.Route, offering.Slug)
		variant := offering.VariantFor(locale.Code)
		title := offering.Title
		summary := offering.Summary
		if variant != nil {
			title = util.FirstNonEmpty(variant.Title, title)
			summary = util.FirstNonEmpty(variant.Summary, summary)
		}
		doc.Title = util.FirstNonEmpty(title, doc.Title)
		doc.Description = util.FirstNonEmpty(summary, doc.Description)
	case post != nil:
		doc.Route = joinRoute(page.Route, post.Slug)
		doc.Title = util.FirstNonEmpty(post.Title, doc.Title)
		doc.Description = util.FirstNonEmpty(post.Summary, doc.Description)
		if len(post.Tags) > 0 {
			doc.Keywords = post.Tags
		}
	}

	doc.Key = documentKey(page.Key, recordSlug(offering, post), locale.Code)
	doc.Tokens = s.documentTokens(buildCtx, page, locale, offering, post, doc)
	doc.Metadata = DocumentMetadata{
		Hash:         documentHash(buildCtx, doc),
		LastModified: documentModifiedAt(buildCtx, page, post),
	}
	return doc
}

// documentTokens layers token maps from broadest to narrowest scope: site,
// site locale variant, page, page locale variant, record, record locale
// variant. Later layers win. Derived tokens are applied last so templates can
// always rely on them.
func (s *service) documentTokens(buildCtx *BuildContext, page *site.Page, locale LocaleSpec, offering *site.Offering, post *site.Post, doc *Document) map[string]string {
	siteRecord := buildCtx.Site

	layers := []map[string]string{siteRecord.Tokens}
	if variant, ok := siteRecord.Variants[locale.Code]; ok {
		layers = append(layers, variant.Tokens)
	}
	layers = append(layers, page.Tokens)
	if variant := page.VariantFor(locale.Code); variant != nil {
		layers = append(layers, variant.Tokens)
	}
	if offering != nil {
		layers = append(layers, offering.Tokens)
		if variant := offering.VariantFor(locale.Code); variant != nil {
			layers = append(layers, variant.Tokens)
		}
	}

	tokens := util.MergeStringMaps(nil, layers...)

	tagline := siteRecord.Tagline
	description := siteRecord.Description
	if variant, ok := siteRecord.Variants[locale.Code]; ok {
		tagline = util.FirstNonEmpty(variant.Tagline, tagline)
		description = util.FirstNonEmpty(variant.Description, description)
	}

	tokens["SITE_NAME"] = siteRecord.Name
	tokens["SITE_TAGLINE"] = tagline
	tokens["SITE_DESCRIPTION"] = description
	tokens["BASE_URL"] = baseURLWithFallback(siteRecord.BaseURL)
	tokens["LOCALE"] = locale.Code
	tokens["PAGE_TITLE"] = doc.Title
	tokens["PAGE_DESCRIPTION"] = doc.Description
	tokens["PAGE_ROUTE"] = doc.Route
	tokens["PAGE_URL"] = documentURL(siteRecord.BaseURL, doc.Route, locale, buildCtx.DefaultLocale)
	tokens["YEAR"] = strconv.Itoa(buildCtx.GeneratedAt.Year())
	if post != nil && post.PublishedAt != nil {
		tokens["POST_DATE"] = post.PublishedAt.UTC().Format("2006-01-02")
	}
	return tokens
}

func documentKey(pageKey, slug, locale string) string {
	parts := []string{strings.TrimSpace(pageKey)}
	if slug = strings.TrimSpace(slug); slug != "" {
		parts = append(parts, slug)
	}
	parts = append(parts, strings.TrimSpace(locale))
	return strings.ToLower(strings.Join(parts, "::"))
}

func recordSlug(offering *site.Offering, post *site.Post) string {
	switch {
	case offering != nil:
		return offering.Slug
	case post != nil:
		return post.Slug
	default:
		return ""
	}
}

// documentHash fingerprints every input a rendered document depends on.
// Incremental builds skip a document when the hash and output location both
// match the previous manifest entry. The template fingerprint covers the
// whole template set because any template can pull in shared partials.
func documentHash(buildCtx *BuildContext, doc *Document) string {
	sources := map[string]string{
		"route":       doc.Route,
		"locale":      doc.Locale.Code,
		"template":    doc.Template,
		"templates":   buildCtx.TemplateFingerprint,
		"title":       doc.Title,
		"description": doc.Description,
		"keywords":    strings.Join(doc.Keywords, ","),
		"tokens":      hashStrings(doc.Tokens),
		"base_url":    buildCtx.Site.BaseURL,
		"theme":       buildCtx.themeFingerprint,
	}
	if doc.Offering != nil {
		sources["offering"] = offeringChecksum(doc.Offering)
	}
	if doc.Post != nil {
		sources["post"] = postChecksum(doc.Post)
	}
	return hashSources(sources)
}

func documentModifiedAt(buildCtx *BuildContext, page *site.Page, post *site.Post) time.Time {
	if post != nil {
		if post.UpdatedAt != nil {
			return post.UpdatedAt.UTC()
		}
		if post.PublishedAt != nil {
			return post.PublishedAt.UTC()
		}
	}
	if page.UpdatedAt != nil {
		return page.UpdatedAt.UTC()
	}
	return buildCtx.GeneratedAt
}

func offeringChecksum(offering *site.Offering) string {
	fields := []string{
		offering.Key,
		offering.Slug,
		offering.Title,
		offering.Summary,
		offering.Description,
		offering.Icon,
		strconv.Itoa(offering.Order),
	}
	for locale, variant := range offering.Variants {
		fields = append(fields, locale, variant.Title, variant.Summary, variant.Description, hashStrings(variant.Tokens))
	}
	sort.Strings(fields)
	return computeHashFromString(strings.Join(fields, "\x00"))
}

func postChecksum(post *site.Post) string {
	return computeHashFromString(strings.Join([]string{
		post.Slug,
		post.Title,
		post.Summary,
		post.Author,
		strings.Join(post.Tags, ","),
		post.BodyHTML,
	}, "\x00"))
}

func joinRoute(prefix, slug string) string {
	prefix = util.NormalizeRoute(prefix)
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" {
		return prefix
	}
	if prefix == "/" {
		return "/" + slug
	}
	return prefix + "/" + slug
}

// hashStrings produces a stable digest of a string map: keys are sorted and
// key/value pairs separated by NUL bytes so neighbouring entries cannot
// collide.
func hashStrings(values map[string]string) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte{0})
		hasher.Write([]byte(values[key]))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// hashSources digests a set of named inputs the same way hashStrings does,
// keeping the names in the digest so reordering inputs never goes unnoticed.
func hashSources(sources map[string]string) string {
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte{0})
		hasher.Write([]byte(sources[key]))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func computeHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(payload string) string {
	return computeHash([]byte(payload))
}
