package sitecheck

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-sitekit/internal/sitedata"
	"github.com/goliatone/go-sitekit/internal/templates"
)

const validSiteConfig = `{
	"name": "Acme Recruiting",
	"base_url": "https://www.acme-recruiting.example/",
	"default_locale": "en",
	"locales": ["en", "es"],
	"tokens": {"COMPANY_NAME": "Acme Recruiting"}
}`

const validOfferings = `[
	{"key": "permanent-placement", "title": "Permanent Placement", "order": 1}
]`

const validPages = `[
	{"key": "home", "route": "/", "template": "index.html", "title": "Home"},
	{"key": "services", "route": "/services/:slug", "template": "service.html",
	 "title": "Services", "collection": "services"}
]`

func checkerFixture(t *testing.T, dataFiles, templateFiles map[string]string) Service {
	t.Helper()

	data := fstest.MapFS{}
	defaults := map[string]string{
		"site-config.json": validSiteConfig,
		"services.json":    validOfferings,
		"pages.json":       validPages,
	}
	for name, body := range defaults {
		data[name] = &fstest.MapFile{Data: []byte(body)}
	}
	for name, body := range dataFiles {
		if body == "" {
			delete(data, name)
			continue
		}
		data[name] = &fstest.MapFile{Data: []byte(body)}
	}

	tpls := fstest.MapFS{}
	templateDefaults := map[string]string{
		"index.html":   "<html><title>{{ PAGE_TITLE }}</title>{{ COMPANY_NAME }}</html>",
		"service.html": "<html>{{ PAGE_TITLE }}</html>",
	}
	for name, body := range templateDefaults {
		tpls[name] = &fstest.MapFile{Data: []byte(body)}
	}
	for name, body := range templateFiles {
		if body == "" {
			delete(tpls, name)
			continue
		}
		tpls[name] = &fstest.MapFile{Data: []byte(body)}
	}

	svc, err := NewService(Dependencies{
		Data:      sitedata.NewService(sitedata.Options{DataFS: data}),
		DataFS:    data,
		Templates: templates.NewStore(tpls),
		Now:       func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func issuesByCode(report *Report, code string) []Issue {
	var out []Issue
	for _, issue := range report.Issues {
		if issue.Code == code {
			out = append(out, issue)
		}
	}
	return out
}

func TestRunCleanProjectHasNoIssues(t *testing.T) {
	svc := checkerFixture(t, nil, nil)

	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected clean report, got %+v", report.Issues)
	}
	if report.Failed(true) {
		t.Fatal("clean report must not fail, even strict")
	}
	if !report.RanAt.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected injected clock, got %v", report.RanAt)
	}
}

func TestRunFlagsMissingTemplate(t *testing.T) {
	svc := checkerFixture(t, nil, map[string]string{"service.html": ""})

	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	issues := issuesByCode(report, CodeTemplateMissing)
	if len(issues) != 1 {
		t.Fatalf("expected one missing-template issue, got %+v", report.Issues)
	}
	if issues[0].Severity != SeverityError || issues[0].Path != "pages.json#services" {
		t.Fatalf("unexpected issue %+v", issues[0])
	}
	if !report.HasErrors() {
		t.Fatal("missing template is an error")
	}
}

func TestRunWarnsOnUnresolvedToken(t *testing.T) {
	svc := checkerFixture(t, nil, map[string]string{
		"index.html": "<html>{{ PAGE_TITLE }} {{ MYSTERY_TOKEN }}</html>",
	})

	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	issues := issuesByCode(report, CodeTokenUnresolved)
	if len(issues) != 1 {
		t.Fatalf("expected one unresolved-token warning, got %+v", report.Issues)
	}
	if issues[0].Severity != SeverityWarning {
		t.Fatalf("unresolved tokens are warnings, got %+v", issues[0])
	}
	if report.Failed(false) {
		t.Fatal("warnings alone must not fail a non-strict run")
	}
	if !report.Failed(true) {
		t.Fatal("strict runs fail on warnings")
	}
}

func TestRunTokenResolvedBySiteTokens(t *testing.T) {
	svc := checkerFixture(t, nil, map[string]string{
		"index.html": "<html>{{ COMPANY_NAME }}</html>",
	})

	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if issues := issuesByCode(report, CodeTokenUnresolved); len(issues) != 0 {
		t.Fatalf("site tokens must satisfy template references: %+v", issues)
	}
}

func TestRunFlagsCollectionRouteWithoutSlug(t *testing.T) {
	svc := checkerFixture(t, map[string]string{
		"pages.json": `[
			{"key": "services", "route": "/services", "template": "service.html",
			 "title": "Services", "collection": "services"}
		]`,
	}, nil)

	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	issues := issuesByCode(report, CodeCollectionRoute)
	if len(issues) != 1 || issues[0].Severity != SeverityError {
		t.Fatalf("expected collection-route error, got %+v", report.Issues)
	}
}

func TestRunWarnsOnUndeclaredVariantLocale(t *testing.T) {
	svc := checkerFixture(t, map[string]string{
		"pages.json": `[
			{"key": "home", "route": "/", "template": "index.html", "title": "Home",
			 "variants": {"fr": {"title": "Accueil"}}}
		]`,
	}, nil)

	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	issues := issuesByCode(report, CodeLocaleUndeclared)
	if len(issues) != 1 || issues[0].Severity != SeverityWarning {
		t.Fatalf("expected locale warning, got %+v", report.Issues)
	}
}

func TestRunReportsDuplicateKeysFromLoader(t *testing.T) {
	svc := checkerFixture(t, map[string]string{
		"pages.json": `[
			{"key": "home", "route": "/", "template": "index.html", "title": "Home"},
			{"key": "home", "route": "/two", "template": "index.html", "title": "Two"}
		]`,
	}, nil)

	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	issues := issuesByCode(report, CodeDuplicateKey)
	if len(issues) != 1 || issues[0].Path != "pages.json" {
		t.Fatalf("expected duplicate-key error, got %+v", report.Issues)
	}
}

func TestRunReportsSchemaViolations(t *testing.T) {
	svc := checkerFixture(t, map[string]string{
		"services.json": `[{"title": "No key here"}]`,
	}, nil)

	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if issues := issuesByCode(report, CodeSchema); len(issues) == 0 {
		t.Fatalf("expected schema issues, got %+v", report.Issues)
	}
	if !report.HasErrors() {
		t.Fatal("schema violations are errors")
	}
}

func TestRunFlagsInvalidBaseURL(t *testing.T) {
	// Passes the schema's https? prefix check but cannot be parsed.
	svc := checkerFixture(t, map[string]string{
		"site-config.json": `{"name": "Acme", "base_url": "https://bad host.example"}`,
	}, nil)

	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if issues := issuesByCode(report, CodeBaseURL); len(issues) != 1 {
		t.Fatalf("expected base-url issue, got %+v", report.Issues)
	}
}

func TestRunMissingSiteConfigIsError(t *testing.T) {
	svc := checkerFixture(t, map[string]string{"site-config.json": ""}, nil)

	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.HasErrors() {
		t.Fatalf("missing site-config.json must error: %+v", report.Issues)
	}
}
