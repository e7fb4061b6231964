package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitekit/internal/adapters/fsstore"
	"github.com/goliatone/go-sitekit/internal/templates"
	"github.com/goliatone/go-sitekit/site"
)

type stubSiteService struct {
	mu          sync.Mutex
	site        *site.Site
	pages       []*site.Page
	offerings   []*site.Offering
	posts       []*site.Post
	fingerprint string
}

func (s *stubSiteService) Load(context.Context) error   { return nil }
func (s *stubSiteService) Reload(context.Context) error { return nil }

func (s *stubSiteService) Site(context.Context) (*site.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.site, nil
}

func (s *stubSiteService) Pages(context.Context) ([]*site.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*site.Page(nil), s.pages...), nil
}

func (s *stubSiteService) Page(_ context.Context, key string) (*site.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, page := range s.pages {
		if strings.EqualFold(page.Key, key) {
			return page, nil
		}
	}
	return nil, &site.NotFoundError{Resource: "page", Key: key}
}

func (s *stubSiteService) Offerings(context.Context) ([]*site.Offering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*site.Offering(nil), s.offerings...), nil
}

func (s *stubSiteService) Offering(_ context.Context, key string) (*site.Offering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, offering := range s.offerings {
		if strings.EqualFold(offering.Key, key) || strings.EqualFold(offering.Slug, key) {
			return offering, nil
		}
	}
	return nil, &site.NotFoundError{Resource: "offering", Key: key}
}

func (s *stubSiteService) Posts(context.Context) ([]*site.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*site.Post(nil), s.posts...), nil
}

func (s *stubSiteService) Post(_ context.Context, slug string) (*site.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, post := range s.posts {
		if strings.EqualFold(post.Slug, slug) {
			return post, nil
		}
	}
	return nil, &site.NotFoundError{Resource: "post", Key: slug}
}

func (s *stubSiteService) Fingerprint() string { return s.fingerprint }

func (s *stubSiteService) update(fn func(*stubSiteService)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

type stubRenderer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (r *stubRenderer) RenderTemplate(name string, data any, _ ...io.Writer) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()

	if err := r.fail[name]; err != nil {
		return "", err
	}

	ctx, _ := data.(map[string]any)
	page, _ := ctx["page"].(PageView)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<!doctype html><title>%s</title>", page.Title)
	fmt.Fprintf(&sb, "<link rel=%q href=%q>", "canonical", page.URL)
	if email, ok := ctx["CONTACT_EMAIL"].(string); ok {
		fmt.Fprintf(&sb, "<p>%s</p>", email)
	}
	if hero, ok := ctx["HERO_TITLE"].(string); ok {
		fmt.Fprintf(&sb, "<h1>%s</h1>", hero)
	}
	return sb.String(), nil
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r *stubRenderer) RenderString(content string, _ any, _ ...io.Writer) (string, error) {
	return content, nil
}

func (r *stubRenderer) RegisterFilter(string, func(any, any) (any, error)) error { return nil }

func (r *stubRenderer) GlobalContext(any) error { return nil }

func (r *stubRenderer) templateCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func timePtr(t time.Time) *time.Time { return &t }

func fixtureSite() *site.Site {
	return &site.Site{
		Name:          "Talent Partners",
		BaseURL:       "https://talentpartners.example",
		Tagline:       "People first recruiting",
		Description:   "Recruitment and HR services",
		DefaultLocale: "en",
		Locales:       []string{"en", "es"},
		Robots:        site.RobotsPolicy{Disallow: []string{"/drafts"}},
		Tokens: map[string]string{
			"COMPANY_NAME":  "Talent Partners",
			"CONTACT_EMAIL": "hello@talentpartners.example",
		},
		Variants: map[string]site.SiteVariant{
			"es": {
				Tagline: "Las personas primero",
				Tokens:  map[string]string{"CONTACT_EMAIL": "hola@talentpartners.example"},
			},
		},
	}
}

func fixturePages() []*site.Page {
	priority := 0.5
	return []*site.Page{
		{Key: "home", Route: "/", Template: "home.html", Title: "Home",
			Tokens: map[string]string{"HERO_TITLE": "Find your next role"},
			Variants: map[string]site.PageVariant{
				"es": {Title: "Inicio", Tokens: map[string]string{"HERO_TITLE": "Encuentra tu proximo empleo"}},
			}},
		{Key: "about", Route: "/about", Template: "page.html", Title: "About us",
			Sitemap: &site.SitemapHints{ChangeFreq: "monthly", Priority: &priority}},
		{Key: "services", Route: "/services", Template: "services.html", Title: "Services"},
		{Key: "service-detail", Route: "/services", Template: "service-detail.html", Title: "Service",
			Collection: site.CollectionOfferings},
		{Key: "blog", Route: "/blog", Template: "blog.html", Title: "Blog"},
		{Key: "post", Route: "/blog", Template: "post.html", Title: "Post",
			Collection: site.CollectionPosts},
	}
}

func fixtureOfferings() []*site.Offering {
	return []*site.Offering{
		{Key: "recruiting", Slug: "recruiting", Title: "Recruiting", Summary: "Permanent placement", Order: 2,
			Variants: map[string]site.OfferingVariant{"es": {Title: "Reclutamiento"}}},
		{Key: "payroll", Slug: "payroll", Title: "Payroll", Summary: "Payroll management", Order: 1},
	}
}

func fixturePosts() []*site.Post {
	return []*site.Post{
		{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("trends")), Slug: "hiring-trends-2025", Title: "Hiring trends 2025",
			Summary: "What changed this year", BodyHTML: "<p>Trends</p>",
			PublishedAt: timePtr(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))},
		{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("welcome")), Slug: "welcome", Title: "Welcome",
			Summary: "First post", BodyHTML: "<p>Hello</p>",
			PublishedAt: timePtr(time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))},
		{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("draft")), Slug: "draft-notes", Title: "Draft notes",
			Draft: true},
	}
}

func fixtureTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"home.html":           {Data: []byte("<h1>{{HERO_TITLE}}</h1><p>{{COMPANY_NAME}}</p>")},
		"page.html":           {Data: []byte("<p>{{COMPANY_NAME}}</p><p>{{CONTACT_EMAIL}}</p>")},
		"services.html":       {Data: []byte("<p>{{COMPANY_NAME}}</p>")},
		"service-detail.html": {Data: []byte("<p>{{COMPANY_NAME}}</p>")},
		"blog.html":           {Data: []byte("<p>{{COMPANY_NAME}}</p>")},
		"post.html":           {Data: []byte("<p>{{COMPANY_NAME}}</p>")},
	}
}

func newFixtureService(t *testing.T) *stubSiteService {
	t.Helper()
	return &stubSiteService{
		site:        fixtureSite(),
		pages:       fixturePages(),
		offerings:   fixtureOfferings(),
		posts:       fixturePosts(),
		fingerprint: "fixture-v1",
	}
}

func newTestGenerator(t *testing.T, siteSvc *stubSiteService, mutate func(*Config, *Dependencies)) (Service, string, *stubRenderer) {
	t.Helper()

	root := t.TempDir()
	store := templates.NewStore(fixtureTemplatesFS())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load templates: %v", err)
	}

	renderer := &stubRenderer{}
	cfg := Config{Workers: 2}
	deps := Dependencies{
		Site:      siteSvc,
		Templates: store,
		Renderer:  renderer,
		Storage:   fsstore.New(root, ""),
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}

	svc, err := NewService(cfg, deps)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, root, renderer
}

func readOutput(t *testing.T, root, rel string) string {
	t.Helper()
	payload, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(payload)
}

func outputExists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

func TestBuildRendersAllLocalesAndCollections(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, nil)

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// 6 pages expand to 8 documents per locale: 4 plain, 2 offerings, 2
	// published posts.
	if result.PagesRendered != 16 {
		t.Fatalf("expected 16 rendered documents, got %d", result.PagesRendered)
	}
	if result.PagesSkipped != 0 {
		t.Fatalf("expected no skips on first build, got %d", result.PagesSkipped)
	}
	if got := strings.Join(result.Locales, ","); got != "en,es" {
		t.Fatalf("unexpected locales %q", got)
	}

	for _, rel := range []string{
		"index.html",
		"about/index.html",
		"services/index.html",
		"services/recruiting/index.html",
		"services/payroll/index.html",
		"blog/index.html",
		"blog/hiring-trends-2025/index.html",
		"blog/welcome/index.html",
		"es/index.html",
		"es/about/index.html",
		"es/services/recruiting/index.html",
		"es/blog/welcome/index.html",
		"sitemap.xml",
		"robots.txt",
		"feed.xml",
		"feed.atom.xml",
		"feeds/en.rss.xml",
		"feeds/es.atom.xml",
		manifestFileName,
	} {
		if !outputExists(root, rel) {
			t.Errorf("expected output %s", rel)
		}
	}

	if outputExists(root, "blog/draft-notes/index.html") {
		t.Error("draft post must not render")
	}
	if outputExists(root, "en/index.html") {
		t.Error("default locale must not nest under a locale prefix")
	}

	home := readOutput(t, root, "index.html")
	if !strings.Contains(home, "Find your next role") {
		t.Errorf("home output missing hero token: %s", home)
	}
	esHome := readOutput(t, root, "es/index.html")
	if !strings.Contains(esHome, "Encuentra tu proximo empleo") {
		t.Errorf("es home missing localized hero token: %s", esHome)
	}
	if !strings.Contains(esHome, "hola@talentpartners.example") {
		t.Errorf("es home missing site variant token: %s", esHome)
	}

	esDetail := readOutput(t, root, "es/services/recruiting/index.html")
	if !strings.Contains(esDetail, "Reclutamiento") {
		t.Errorf("es offering detail should use variant title: %s", esDetail)
	}
}

func TestBuildWritesManifest(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, nil)

	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	var manifest buildManifest
	if err := json.Unmarshal([]byte(readOutput(t, root, manifestFileName)), &manifest); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}

	if manifest.Version != manifestVersion {
		t.Fatalf("unexpected manifest version %d", manifest.Version)
	}
	if manifest.DataFingerprint != "fixture-v1" {
		t.Fatalf("unexpected data fingerprint %q", manifest.DataFingerprint)
	}
	if manifest.TemplateFingerprint == "" {
		t.Fatal("expected template fingerprint")
	}
	if len(manifest.Pages) != 16 {
		t.Fatalf("expected 16 manifest pages, got %d", len(manifest.Pages))
	}

	entry, ok := manifest.Pages["service-detail::recruiting::es"]
	if !ok {
		t.Fatalf("missing collection document entry, have %v", manifestKeys(manifest.Pages))
	}
	if entry.Output != "es/services/recruiting/index.html" {
		t.Fatalf("unexpected output path %q", entry.Output)
	}
	if entry.Hash == "" || entry.Checksum == "" {
		t.Fatal("manifest entry missing hash or checksum")
	}
}

func manifestKeys(pages map[string]manifestPage) []string {
	keys := make([]string, 0, len(pages))
	for key := range pages {
		keys = append(keys, key)
	}
	return keys
}

func TestBuildIncrementalSkipsUnchanged(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, _, renderer := newTestGenerator(t, siteSvc, nil)
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	firstCalls := len(renderer.templateCalls())

	second, err := svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.PagesRendered != 0 {
		t.Fatalf("expected no re-renders, got %d", second.PagesRendered)
	}
	if second.PagesSkipped != 16 {
		t.Fatalf("expected 16 skips, got %d", second.PagesSkipped)
	}
	if calls := len(renderer.templateCalls()); calls != firstCalls {
		t.Fatalf("renderer called %d times on unchanged build", calls-firstCalls)
	}

	siteSvc.update(func(s *stubSiteService) {
		for _, page := range s.pages {
			if page.Key == "about" {
				page.Title = "About Talent Partners"
			}
		}
	})

	third, err := svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("third build: %v", err)
	}
	if third.PagesRendered != 2 {
		t.Fatalf("expected 2 re-renders after title change, got %d", third.PagesRendered)
	}
	if third.PagesSkipped != 14 {
		t.Fatalf("expected 14 skips, got %d", third.PagesSkipped)
	}
}

func TestBuildForceRendersEverything(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, _, _ := newTestGenerator(t, siteSvc, nil)
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	result, err := svc.Build(ctx, BuildOptions{Force: true})
	if err != nil {
		t.Fatalf("forced build: %v", err)
	}
	if result.PagesRendered != 16 || result.PagesSkipped != 0 {
		t.Fatalf("forced build should rerender all: rendered=%d skipped=%d",
			result.PagesRendered, result.PagesSkipped)
	}
}

func TestBuildRemovesOrphanedOutputs(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, nil)
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if !outputExists(root, "about/index.html") {
		t.Fatal("about page missing after first build")
	}

	siteSvc.update(func(s *stubSiteService) {
		pages := s.pages[:0]
		for _, page := range s.pages {
			if page.Key != "about" {
				pages = append(pages, page)
			}
		}
		s.pages = pages
	})

	result, err := svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if result.OrphansRemoved != 2 {
		t.Fatalf("expected 2 orphans removed (en+es), got %d", result.OrphansRemoved)
	}
	if outputExists(root, "about/index.html") || outputExists(root, "es/about/index.html") {
		t.Fatal("orphaned outputs still on disk")
	}
}

func TestBuildLocaleFilterKeepsOtherManifestEntries(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, nil)
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("full build: %v", err)
	}

	result, err := svc.Build(ctx, BuildOptions{Locales: []string{"es"}, Force: true})
	if err != nil {
		t.Fatalf("filtered build: %v", err)
	}
	if result.PagesRendered != 8 {
		t.Fatalf("expected 8 es documents, got %d", result.PagesRendered)
	}

	var manifest buildManifest
	if err := json.Unmarshal([]byte(readOutput(t, root, manifestFileName)), &manifest); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if _, ok := manifest.Pages["home::en"]; !ok {
		t.Fatal("filtered build dropped en entries from manifest")
	}
	if outputExists(root, "index.html") != true {
		t.Fatal("filtered build must not remove en outputs")
	}
}

func TestBuildPageFilter(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, nil)

	result, err := svc.Build(context.Background(), BuildOptions{Pages: []string{"about"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesRendered != 2 {
		t.Fatalf("expected about in 2 locales, got %d", result.PagesRendered)
	}
	if outputExists(root, "services/index.html") {
		t.Fatal("page filter rendered out-of-scope page")
	}

	if _, err := svc.Build(context.Background(), BuildOptions{Pages: []string{"nope"}}); err == nil {
		t.Fatal("expected unknown page key to fail")
	} else {
		var notFound *site.NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	}
}

func TestBuildUnknownLocaleFails(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, _, _ := newTestGenerator(t, siteSvc, nil)

	_, err := svc.Build(context.Background(), BuildOptions{Locales: []string{"fr"}})
	if !errors.Is(err, site.ErrLocaleUnknown) {
		t.Fatalf("expected ErrLocaleUnknown, got %v", err)
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, nil)

	result, err := svc.Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !result.DryRun {
		t.Fatal("result should mark dry run")
	}
	if result.PagesRendered != 16 {
		t.Fatalf("dry run should still render, got %d", result.PagesRendered)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run wrote %d entries", len(entries))
	}
}

func TestBuildIncludeDrafts(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, nil)

	if _, err := svc.Build(context.Background(), BuildOptions{IncludeDrafts: true}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !outputExists(root, "blog/draft-notes/index.html") {
		t.Fatal("expected draft post rendered when drafts included")
	}

	sitemap := readOutput(t, root, "sitemap.xml")
	if strings.Contains(sitemap, "draft-notes") {
		t.Error("drafts must stay out of the sitemap")
	}
	feed := readOutput(t, root, "feed.xml")
	if strings.Contains(feed, "Draft notes") {
		t.Error("drafts must stay out of feeds")
	}
}

func TestBuildReportsMissingTokens(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, _, _ := newTestGenerator(t, siteSvc, func(_ *Config, deps *Dependencies) {
		store := templates.NewStore(fstest.MapFS{
			"home.html":           {Data: []byte("{{HERO_TITLE}} {{UNSET_PROMO_CODE}}")},
			"page.html":           {Data: []byte("{{COMPANY_NAME}}")},
			"services.html":       {Data: []byte("x")},
			"service-detail.html": {Data: []byte("x")},
			"blog.html":           {Data: []byte("x")},
			"post.html":           {Data: []byte("x")},
		})
		if err := store.Load(context.Background()); err != nil {
			panic(err)
		}
		deps.Templates = store
	})

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	found := false
	for _, diagnostic := range result.Diagnostics {
		if strings.HasPrefix(diagnostic.Key, "home::") {
			for _, token := range diagnostic.MissingTokens {
				if token == "UNSET_PROMO_CODE" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected missing token diagnostic, got %+v", result.Diagnostics)
	}
}

func TestBuildRenderFailureAborts(t *testing.T) {
	siteSvc := newFixtureService(t)
	renderErr := errors.New("template exploded")
	svc, root, _ := newTestGenerator(t, siteSvc, func(_ *Config, deps *Dependencies) {
		deps.Renderer = &stubRenderer{fail: map[string]error{"page.html": renderErr}}
	})

	_, err := svc.Build(context.Background(), BuildOptions{})
	if err == nil || !strings.Contains(err.Error(), "template exploded") {
		t.Fatalf("expected render failure, got %v", err)
	}
	if outputExists(root, manifestFileName) {
		t.Fatal("failed build must not write a manifest")
	}
}

func TestDiffLifecycle(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, _, _ := newTestGenerator(t, siteSvc, nil)
	ctx := context.Background()

	diff, err := svc.Diff(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(diff.Added) != 16 || diff.Unchanged != 0 {
		t.Fatalf("fresh diff should add everything: %+v", diff)
	}

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	diff, err = svc.Diff(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("Diff after build: %v", err)
	}
	if !diff.InSync() {
		t.Fatalf("expected in-sync diff, got %+v", diff)
	}
	if diff.Unchanged != 16 {
		t.Fatalf("expected 16 unchanged, got %d", diff.Unchanged)
	}

	siteSvc.update(func(s *stubSiteService) {
		for _, page := range s.pages {
			if page.Key == "home" {
				page.Title = "Homepage"
			}
		}
		pages := s.pages[:0]
		for _, page := range s.pages {
			if page.Key != "blog" {
				pages = append(pages, page)
			}
		}
		s.pages = pages
	})

	diff, err = svc.Diff(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("Diff after edits: %v", err)
	}
	if len(diff.Changed) != 2 {
		t.Fatalf("expected 2 changed documents, got %+v", diff.Changed)
	}
	if len(diff.Removed) != 2 {
		t.Fatalf("expected 2 removed documents, got %+v", diff.Removed)
	}
	if diff.InSync() {
		t.Fatal("diff should not report in sync")
	}
}

func TestCleanRemovesEverything(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, nil)
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	result, err := svc.Clean(ctx)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if result.FilesRemoved == 0 {
		t.Fatal("expected files removed")
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("clean left %d entries behind", len(entries))
	}
}

func TestBuildSitemapStandalone(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, nil)

	result, err := svc.BuildSitemap(context.Background())
	if err != nil {
		t.Fatalf("BuildSitemap: %v", err)
	}
	if result.Entries != 16 {
		t.Fatalf("expected 16 sitemap entries, got %d", result.Entries)
	}
	if result.Path != sitemapFileName {
		t.Fatalf("unexpected sitemap path %q", result.Path)
	}

	sitemap := readOutput(t, root, "sitemap.xml")
	if !strings.Contains(sitemap, "<loc>https://talentpartners.example/about/</loc>") {
		t.Errorf("sitemap missing about entry: %s", sitemap)
	}
	if !strings.Contains(sitemap, "<changefreq>monthly</changefreq>") {
		t.Error("sitemap missing changefreq hint")
	}
	if !strings.Contains(sitemap, "<priority>0.5</priority>") {
		t.Error("sitemap missing priority hint")
	}

	robots := readOutput(t, root, "robots.txt")
	if !strings.Contains(robots, "Disallow: /drafts") {
		t.Errorf("robots missing disallow line: %s", robots)
	}
	if !strings.Contains(robots, "Sitemap: https://talentpartners.example/sitemap.xml") {
		t.Errorf("robots missing sitemap line: %s", robots)
	}
}

func TestDisabledServiceRejectsAllOperations(t *testing.T) {
	svc := NewDisabledService()
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("Build: %v", err)
	}
	if _, err := svc.Diff(ctx, BuildOptions{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("Diff: %v", err)
	}
	if _, err := svc.Clean(ctx); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := svc.BuildSitemap(ctx); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("BuildSitemap: %v", err)
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(Config{}, Dependencies{Renderer: &stubRenderer{}})
	if err == nil {
		t.Fatal("expected missing site service error")
	}
	_, err = NewService(Config{}, Dependencies{Site: &stubSiteService{site: fixtureSite()}})
	if err == nil {
		t.Fatal("expected missing renderer error")
	}
}
